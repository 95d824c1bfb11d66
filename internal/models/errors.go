package models

import (
	"errors"
	"fmt"
)

// Error codes shared by the store, repositories and session manager.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountBanned      = "ACCOUNT_BANNED"
	CodeDuplicateUser      = "DUPLICATE_USER"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodeEmptyPost          = "EMPTY_POST"
	CodeEmptyComment       = "EMPTY_COMMENT"
	CodeEmptyMessage       = "EMPTY_MESSAGE"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeParseError         = "PARSE_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError carrying the same code, so callers
// can match any instance against the exported sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is matching.
var (
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "Invalid credentials"}
	ErrAccountBanned      = &AppError{Code: CodeAccountBanned, Message: "This account has been banned."}
	ErrDuplicateUser      = &AppError{Code: CodeDuplicateUser, Message: "User already exists"}
	ErrIncorrectPassword  = &AppError{Code: CodeIncorrectPassword, Message: "The current password you entered is incorrect."}
	ErrEmptyPost          = &AppError{Code: CodeEmptyPost, Message: "Please add a caption or media to your post."}
	ErrEmptyComment       = &AppError{Code: CodeEmptyComment, Message: "Comment cannot be empty"}
	ErrEmptyMessage       = &AppError{Code: CodeEmptyMessage, Message: "Message cannot be empty"}
	ErrQuotaExceeded      = &AppError{Code: CodeQuotaExceeded, Message: "Storage quota exceeded"}
	ErrParseError         = &AppError{Code: CodeParseError, Message: "Stored data is corrupt"}
	ErrNotFound           = &AppError{Code: CodeNotFound, Message: "Not found"}
	ErrVersionConflict    = &AppError{Code: CodeVersionConflict, Message: "Data was modified by another writer"}
	ErrValidation         = &AppError{Code: CodeValidation, Message: "Validation failed"}
	ErrUnauthorized       = &AppError{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrInternal           = &AppError{Code: CodeInternal, Message: "Internal error"}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal error",
		Err:     err,
	}
}

// NewParseError reports a collection whose stored content is not valid JSON.
func NewParseError(collection string, err error) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: fmt.Sprintf("collection %q is corrupt", collection),
		Err:     err,
	}
}

// NewQuotaExceededError reports that the storage medium is out of capacity.
func NewQuotaExceededError(collection string, err error) *AppError {
	return &AppError{
		Code:    CodeQuotaExceeded,
		Message: fmt.Sprintf("storage quota exceeded writing %q", collection),
		Err:     err,
	}
}

// NewVersionConflictError reports a lost-update race on a collection.
func NewVersionConflictError(collection string) *AppError {
	return &AppError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("collection %q was modified concurrently", collection),
	}
}

// Messages shown at the caller boundary.
const (
	QuotaExceededMessage  = "Storage is full. Delete some old posts or media to free space."
	GenericFailureMessage = "Something went wrong. Please try again."
)

// userFacing lists the codes whose message is meant for the end user as is.
var userFacing = map[string]bool{
	CodeInvalidCredentials: true,
	CodeAccountBanned:      true,
	CodeDuplicateUser:      true,
	CodeIncorrectPassword:  true,
	CodeEmptyPost:          true,
	CodeEmptyComment:       true,
	CodeEmptyMessage:       true,
	CodeValidation:         true,
	CodeNotFound:           true,
	CodeUnauthorized:       true,
}

// UserMessage maps err to the text a caller should surface to the end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return GenericFailureMessage
	}
	if appErr.Code == CodeQuotaExceeded {
		return QuotaExceededMessage
	}
	if userFacing[appErr.Code] {
		return appErr.Message
	}
	return GenericFailureMessage
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
