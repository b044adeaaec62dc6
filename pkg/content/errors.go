package content

import "errors"

var (
	ErrInvalidConfig       = errors.New("invalid storage configuration")
	ErrInvalidRef          = errors.New("invalid content reference")
	ErrNotFound            = errors.New("content not found")
	ErrFailedToLoadConfig  = errors.New("failed to load AWS config")
	ErrOperationTimeout    = errors.New("storage operation timed out")
	ErrOperationCanceled   = errors.New("storage operation canceled")
	ErrAccessDenied        = errors.New("storage access denied")
	ErrServiceUnavailable  = errors.New("storage service unavailable")
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrFailedToCreateDir   = errors.New("failed to create storage directory")
	ErrFailedToWriteObject = errors.New("failed to write object")
)
