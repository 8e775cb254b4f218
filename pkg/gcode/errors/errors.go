package errors

import "errors"

var (
	// Option errors ⚙️
	ErrInvalidOption   = errors.New("❌ invalid option")
	ErrUnknownDialect  = errors.New("❌ unknown slicer dialect")
	ErrUnknownMode     = errors.New("❌ unknown mode")
	ErrUnknownPass     = errors.New("❌ unknown pass")
	ErrConflictingMode = errors.New("❌ mutually exclusive options")

	// Document errors 📄
	ErrEmptyDocument = errors.New("❌ empty document")
	ErrLineTooLong   = errors.New("❌ line exceeds buffer limit")
)
