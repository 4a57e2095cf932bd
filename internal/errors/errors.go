package errors

import (
	"errors"
	"fmt"
)

// Error codes for the per-unit failure taxonomy. Every code maps to one
// terminal outcome reason surfaced in the status ledger.
const (
	CodeDateParse         = "DATE_PARSE"
	CodeNotFound          = "NOT_FOUND"
	CodeTransport         = "TRANSPORT"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeArchive           = "ARCHIVE"
	CodeParseWrite        = "PARSE_WRITE"
	CodeLedgerCollision   = "LEDGER_COLLISION"
)

// PipelineError represents a classified per-unit failure. Message is the
// human-readable reason recorded in the ledger; Err, when set, is the
// underlying cause.
type PipelineError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Reason returns the message to record in the status ledger.
func (e *PipelineError) Reason() string {
	return e.Message
}

// New creates a PipelineError with the given code and message
func New(code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

// Wrap creates a PipelineError wrapping an underlying cause
func Wrap(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// DateParse reports a filename whose date tail cannot be parsed.
func DateParse(name string) *PipelineError {
	return New(CodeDateParse, fmt.Sprintf("cannot parse date from filename: %s", name))
}

// NotFound reports that the remote source has no data for the date.
func NotFound() *PipelineError {
	return New(CodeNotFound, "No data available (404)")
}

// Transport reports a connection-level or non-2xx, non-404 HTTP failure.
func Transport(message string, err error) *PipelineError {
	return Wrap(CodeTransport, message, err)
}

// MalformedResponse reports a response that is neither a recognized archive
// nor a parseable pointer payload.
func MalformedResponse(message string) *PipelineError {
	return New(CodeMalformedResponse, message)
}

// Archive reports a corrupt or unreadable archive.
func Archive(err error) *PipelineError {
	return Wrap(CodeArchive, "Invalid zip file", err)
}

// ParseWrite reports a tabular parse or columnar write failure.
func ParseWrite(err error) *PipelineError {
	return Wrap(CodeParseWrite, err.Error(), err)
}

// LedgerCollision reports a pre-existing ledger output path.
func LedgerCollision(path string) *PipelineError {
	return New(CodeLedgerCollision, fmt.Sprintf("status report file already exists: %s", path))
}

// CodeOf returns the taxonomy code of err, or "" when err is not a
// PipelineError.
func CodeOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// ReasonOf returns the ledger reason for err. Unclassified errors fall back
// to their plain message.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Reason()
	}
	return err.Error()
}

// IsNotFound reports whether err carries the not-found code
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
