package model

import "errors"

// Sentinel kinds for input validation. Callers classify with errors.Is.
var (
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidAccuracy = errors.New("invalid accuracy")
)
