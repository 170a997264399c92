package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// ErrDecodeFailure marks a document that could not be decoded at all
	// (corrupted, encrypted, not a PDF). No state is mutated when it occurs.
	ErrDecodeFailure = errors.New("document decode failure")
	// ErrDecoderUnavailable means the decoding backend itself is missing.
	ErrDecoderUnavailable = errors.New("document decoder unavailable")
)

// User-visible messages for the two document outcomes a caller must keep apart.
const (
	MsgDecodeFailure     = "could not process file, check it is not corrupted or protected"
	MsgNoExtractableText = "no text found, file may be a scanned image"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the text a user should see for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecodeFailure):
		return MsgDecodeFailure
	case errors.Is(err, ErrDecoderUnavailable):
		return "document decoder is not installed: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "quotation or supplier not found"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return "invalid input: " + err.Error()
	default:
		return "unexpected error: " + err.Error()
	}
}

// ToStatus maps err onto a gRPC status error for RPC-facing callers.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrDecodeFailure):
		return status.Error(codes.InvalidArgument, MsgDecodeFailure)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ErrDecoderUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return InternalError(err.Error())
	}
}

// ExitCode maps err to a process exit status for the CLIs.
func ExitCode(err error) int {
	switch status.Code(ToStatus(err)) {
	case codes.OK:
		return 0
	case codes.InvalidArgument:
		return 2
	case codes.NotFound:
		return 3
	case codes.Unavailable:
		return 4
	default:
		return 1
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}
