package docx

import "errors"

// Sentinel errors for document operations.
var (
	// ErrUnknownStyleRole indicates a block referenced a role that was never
	// registered on the document. This is a wiring bug, not a user error.
	ErrUnknownStyleRole = errors.New("unknown style role")

	// ErrMalformedTemplate indicates template bytes are not a usable .docx package.
	ErrMalformedTemplate = errors.New("malformed template")

	// ErrTemplateTooLarge indicates template bytes exceed MaxTemplateSize.
	ErrTemplateTooLarge = errors.New("template exceeds maximum size")

	// ErrEmptyTable indicates a table block without rows or cells.
	ErrEmptyTable = errors.New("table must have at least one cell")
)
