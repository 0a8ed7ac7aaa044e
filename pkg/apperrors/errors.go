package apperrors

import "errors"

var (
	ErrNoData            = errors.New("no data to analyze")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidRule       = errors.New("invalid validation rule")
	ErrFileTooLarge      = errors.New("file exceeds upload limit")
	ErrInvalidKeyPolicy  = errors.New("invalid key policy")
	ErrInvalidInput      = errors.New("invalid input")
)
