package knowcore

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT       = "conflict"
	EINTERNAL       = "internal"
	EINVALID        = "invalid"
	ENOTFOUND       = "not_found"
	ENOTIMPLEMENTED = "not_implemented"
	EUNAVAILABLE    = "unavailable"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("knowcore error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Stage names a step of the ingest pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageRead      Stage = "read"
	StageRoute     Stage = "route"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageAssets    Stage = "assets"
	StageWrite     Stage = "write"
)

// PipelineError reports a failure that aborted ingestion of one RawDoc.
// It carries enough context for a caller to retry or skip the document.
type PipelineError struct {
	RawDocID string
	Stage    Stage
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("rawdoc %s: %s: %v", e.RawDocID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
