package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type s3Storage struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

func NewS3() (Storage, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Storage{
		client:     s3.New(sess),
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

func (s *s3Storage) Save(name string, data []byte) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	key := fmt.Sprintf("receipts/%d-%s", time.Now().UnixNano(), sanitizeName(name))

	uploadOutput, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}

	return uploadOutput.Location, nil
}

func (s *s3Storage) Read(handle string) ([]byte, error) {
	key, err := keyFromHandle(handle)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *s3Storage) Delete(handle string) error {
	key, err := keyFromHandle(handle)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return err
}

// PresignUrl returns a temporary download link for a stored receipt image.
func (s *s3Storage) PresignUrl(handle string) (string, error) {
	key, err := keyFromHandle(handle)
	if err != nil {
		return "", err
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return req.Presign(15 * time.Minute)
}

// keyFromHandle accepts either a bare key or a full object URL as produced by
// the uploader.
func keyFromHandle(handle string) (string, error) {
	key := handle
	if parts := strings.Split(handle, ".com/"); len(parts) > 1 {
		key = parts[1]
	}

	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("failed to decode S3 key: %w", err)
	}
	return decoded, nil
}

func newSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return sess, nil
}
