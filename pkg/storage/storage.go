package storage

import (
	"errors"
	"os"
)

var ErrNotFound = errors.New("stored file not found")

// Storage is the transient-file collaborator for uploaded receipts: write
// received bytes and get a handle back, read bytes by handle, delete by
// handle. Handles are opaque to callers; the local driver returns relative
// paths under its uploads directory, the S3 driver returns object URLs.
type Storage interface {
	Save(name string, data []byte) (handle string, err error)
	Read(handle string) ([]byte, error)
	Delete(handle string) error
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// New selects a driver from STORAGE_DRIVER. The default is the local uploads
// directory.
func New() (Storage, error) {
	switch os.Getenv("STORAGE_DRIVER") {
	case DriverS3:
		return NewS3()
	case DriverLocal, "":
		return NewLocal(os.Getenv("STORAGE_UPLOAD_DIR"))
	default:
		return nil, errors.New("unknown STORAGE_DRIVER")
	}
}
