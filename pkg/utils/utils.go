package utils

import (
	"crypto/rand"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadMultipartFile(file multipart.File) ([]byte, error)
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 5 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ValidateImageFile accepts an upload when either the declared content type
// or the file extension looks like a supported image. Scanner apps and
// browsers disagree on which of the two they get right.
func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxFileSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	validContentType := strings.HasPrefix(contentType, "image/")
	validExtension := allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))]

	if !validContentType && !validExtension {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

func (u *utils) ReadMultipartFile(file multipart.File) ([]byte, error) {
	return io.ReadAll(file)
}
