package md2docx

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by *ConversionError through errors.Is.
var (
	ErrEmptyInput              = errors.New("markdown input is empty")
	ErrExternalToolUnavailable = errors.New("external converter unavailable")
	ErrExternalToolFailed      = errors.New("external converter failed")
	ErrMalformedTemplate       = errors.New("malformed template")
	ErrUnexpectedTransform     = errors.New("unexpected transform error")
)

// Configuration and runner errors.
var (
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrCommandNotFound  = errors.New("command not found")
)

// ErrorKind classifies a conversion failure.
type ErrorKind int

// Failure kinds.
const (
	KindUnexpectedTransform ErrorKind = iota
	KindEmptyInput
	KindExternalToolUnavailable
	KindExternalToolFailed
	KindMalformedTemplate
)

// String returns the kind name used in logs and API responses.
func (k ErrorKind) String() string {
	switch k {
	case KindEmptyInput:
		return "EmptyInput"
	case KindExternalToolUnavailable:
		return "ExternalToolUnavailable"
	case KindExternalToolFailed:
		return "ExternalToolFailed"
	case KindMalformedTemplate:
		return "MalformedTemplate"
	}
	return "UnexpectedTransformError"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindEmptyInput:
		return ErrEmptyInput
	case KindExternalToolUnavailable:
		return ErrExternalToolUnavailable
	case KindExternalToolFailed:
		return ErrExternalToolFailed
	case KindMalformedTemplate:
		return ErrMalformedTemplate
	}
	return ErrUnexpectedTransform
}

// ConversionError is the error returned by Converter.Convert.
// errors.Is matches both the sentinel of Kind and the wrapped cause.
type ConversionError struct {
	Kind       ErrorKind
	Strategy   Strategy
	Hint       string // remediation, formatted as "\n  hint: ..."
	Diagnostic string // captured external tool output, verbatim
	Err        error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
}

// Unwrap returns the kind sentinel and the cause.
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the kind of err, or KindUnexpectedTransform when err is not
// a *ConversionError.
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnexpectedTransform
}

// HintOf returns the hint carried by err, if any.
func HintOf(err error) string {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Hint
	}
	return ""
}

func newError(kind ErrorKind, err error, hint string) *ConversionError {
	return &ConversionError{Kind: kind, Err: err, Hint: hint}
}
