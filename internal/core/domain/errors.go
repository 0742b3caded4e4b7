package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable tag carried by every Error.
type ErrorCode string

const (
	CodeDirectoryCreationFailed ErrorCode = "DIRECTORY_CREATION_FAILED"
	CodeLockAcquisitionFailed   ErrorCode = "LOCK_ACQUISITION_FAILED"
	CodeLockTimeout             ErrorCode = "LOCK_TIMEOUT"
	CodeInvalidJSON             ErrorCode = "INVALID_JSON"
	CodeReadFailed              ErrorCode = "READ_FAILED"
	CodeWriteFailed             ErrorCode = "WRITE_FAILED"
	CodeNotFound                ErrorCode = "NOT_FOUND"
	CodeValidation              ErrorCode = "VALIDATION_ERROR"
)

// Entity names used to tell not-found errors apart.
const (
	EntityItem  = "item"
	EntityList  = "list"
	EntityEntry = "entry"
)

// Error is the tagged error returned by the storage and repository layers.
// A plain Error with a storage code is a StorageError; NOT_FOUND and
// VALIDATION_ERROR are its two specialised kinds.
type Error struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`
	Message string    `json:"message"`
	Entity  string    `json:"-"`
	Details any       `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on Code, and on Entity when the target names one, so
// errors.Is(err, ErrNotFound) holds for any missing entity while
// errors.Is(err, ErrEntryNotFound) only holds for a missing list entry.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

// HTTPStatus returns the status the action layer should answer with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

var (
	ErrNotFound      = &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: "not found"}
	ErrItemNotFound  = &Error{Code: CodeNotFound, Status: http.StatusNotFound, Entity: EntityItem, Message: "item not found"}
	ErrListNotFound  = &Error{Code: CodeNotFound, Status: http.StatusNotFound, Entity: EntityList, Message: "list not found"}
	ErrEntryNotFound = &Error{Code: CodeNotFound, Status: http.StatusNotFound, Entity: EntityEntry, Message: "item not found in list"}
	ErrValidation    = &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: "validation error"}

	ErrLockTimeout = &Error{Code: CodeLockTimeout, Status: http.StatusInternalServerError, Message: "lock timeout"}
	ErrInvalidJSON = &Error{Code: CodeInvalidJSON, Status: http.StatusInternalServerError, Message: "invalid json"}
)

// NewStorageError builds a StorageError with the given code around cause.
func NewStorageError(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Status:  http.StatusInternalServerError,
		Message: msg,
		cause:   cause,
	}
}

// NotFoundf builds a NotFoundError for the given entity kind.
func NotFoundf(entity, format string, args ...any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Entity:  entity,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewValidationError builds a ValidationError carrying field details.
func NewValidationError(msg string, details any) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: msg,
		Details: details,
	}
}

// WrapValidation reclassifies cause as a ValidationError.
func WrapValidation(msg string, cause error) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: msg,
		cause:   cause,
	}
}

// AsError extracts the tagged error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
