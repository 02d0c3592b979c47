package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryResume  Category = "resume"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// QwikError is a structured error with a stable code, a fix suggestion, and
// a documentation link.
type QwikError struct {
	// Code is a unique error identifier (e.g., "E010").
	Code string

	// Category is the error type (runtime, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *QwikError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QwikError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *QwikError) WithSuggestion(s string) *QwikError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *QwikError) WithDetail(d string) *QwikError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *QwikError) Wrap(err error) *QwikError {
	e.Wrapped = err
	return e
}

// New creates a QwikError from a registered error code.
func New(code string) *QwikError {
	template, ok := registry[code]
	if !ok {
		return &QwikError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &QwikError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new QwikError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *QwikError {
	return &QwikError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a QwikError.
func FromError(err error, code string) *QwikError {
	if err == nil {
		return nil
	}
	if qe, ok := err.(*QwikError); ok {
		return qe
	}
	return New(code).Wrap(err)
}
