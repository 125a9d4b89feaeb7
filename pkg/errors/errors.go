package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrNotFound            = NewNotFoundError("resource", "resource not found")
	ErrAlreadyExists       = NewAlreadyExistsError("resource", "resource already exists")
	ErrInvalidArgument     = NewValidationError("", "invalid argument")
	ErrInternal            = NewInternalError("internal server error", nil)
	ErrUnauthorized        = NewUnauthenticatedError("unauthorized")
	ErrPermissionDenied    = NewPermissionDeniedError("permission denied")
	ErrInsufficientBalance = NewFailedPreconditionError("insufficient_balance", "insufficient wallet balance")
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *AlreadyExistsError) GRPCStatus() *status.Status {
	return status.New(codes.AlreadyExists, e.Error())
}

// UnauthenticatedError is returned when credentials are missing or wrong.
type UnauthenticatedError struct {
	Message string
}

// NewUnauthenticatedError creates a new unauthenticated error
func NewUnauthenticatedError(message string) *UnauthenticatedError {
	return &UnauthenticatedError{Message: message}
}

// Error implements the error interface
func (e *UnauthenticatedError) Error() string {
	return e.Message
}

// GRPCStatus returns the gRPC status for this error
func (e *UnauthenticatedError) GRPCStatus() *status.Status {
	return status.New(codes.Unauthenticated, e.Message)
}

// PermissionDeniedError is returned when the caller is known but not allowed.
type PermissionDeniedError struct {
	Message string
}

// NewPermissionDeniedError creates a new permission denied error
func NewPermissionDeniedError(message string) *PermissionDeniedError {
	return &PermissionDeniedError{Message: message}
}

// Error implements the error interface
func (e *PermissionDeniedError) Error() string {
	return e.Message
}

// GRPCStatus returns the gRPC status for this error
func (e *PermissionDeniedError) GRPCStatus() *status.Status {
	return status.New(codes.PermissionDenied, e.Message)
}

// FailedPreconditionError is returned when the request is well formed but the
// current state does not allow it (e.g. wallet balance too low).
type FailedPreconditionError struct {
	Reason  string
	Message string
}

// NewFailedPreconditionError creates a new failed precondition error
func NewFailedPreconditionError(reason, message string) *FailedPreconditionError {
	return &FailedPreconditionError{Reason: reason, Message: message}
}

// Error implements the error interface
func (e *FailedPreconditionError) Error() string {
	return e.Message
}

// Is reports whether target is a precondition error with the same reason.
func (e *FailedPreconditionError) Is(target error) bool {
	t, ok := target.(*FailedPreconditionError)
	return ok && t.Reason == e.Reason
}

// GRPCStatus returns the gRPC status for this error
func (e *FailedPreconditionError) GRPCStatus() *status.Status {
	return status.New(codes.FailedPrecondition, e.Message)
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// Code extracts the gRPC code carried by err. Errors without a status are
// reported as codes.Unknown.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var s GRPCStatuser
	if stderrors.As(err, &s) {
		return s.GRPCStatus().Code()
	}
	return codes.Unknown
}

// HTTPStatus maps err to the HTTP status the REST API responds with.
func HTTPStatus(err error) int {
	code := Code(err)
	if code == codes.Unknown {
		return http.StatusInternalServerError
	}
	return runtime.HTTPStatusFromCode(code)
}

// Slug returns the short machine-readable error code used in JSON responses.
func Slug(err error) string {
	switch Code(err) {
	case codes.InvalidArgument:
		return "validation_error"
	case codes.NotFound:
		return "not_found"
	case codes.AlreadyExists:
		return "already_exists"
	case codes.Unauthenticated:
		return "unauthorized"
	case codes.PermissionDenied:
		return "forbidden"
	case codes.FailedPrecondition:
		var fp *FailedPreconditionError
		if stderrors.As(err, &fp) && fp.Reason != "" {
			return fp.Reason
		}
		return "failed_precondition"
	case codes.ResourceExhausted:
		return "rate_limit_exceeded"
	default:
		return "internal_error"
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}
