package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code used for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type services hand back to transports.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by code so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

func newSentinel(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrUserNotFound      = newSentinel(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrChatNotFound      = newSentinel(KindNotFound, "CHAT_NOT_FOUND", "chat not found")
	ErrCommunityNotFound = newSentinel(KindNotFound, "COMMUNITY_NOT_FOUND", "community not found")
	ErrCategoryNotFound  = newSentinel(KindNotFound, "CATEGORY_NOT_FOUND", "category not found")
	ErrPostNotFound      = newSentinel(KindNotFound, "POST_NOT_FOUND", "post not found")
	ErrCommentNotFound   = newSentinel(KindNotFound, "COMMENT_NOT_FOUND", "comment not found")

	ErrAlreadyMember      = newSentinel(KindConflict, "ALREADY_MEMBER", "user is already a member")
	ErrNotAMember         = newSentinel(KindConflict, "NOT_A_MEMBER", "user is not a member")
	ErrCreatorCannotLeave = newSentinel(KindConflict, "CREATOR_CANNOT_LEAVE", "community creator cannot leave")
	ErrInvalidOperation   = newSentinel(KindConflict, "INVALID_OPERATION", "operation not allowed on the community creator")
	ErrAlreadyModerator   = newSentinel(KindConflict, "ALREADY_MODERATOR", "user is already a moderator")
	ErrNotAModerator      = newSentinel(KindConflict, "NOT_A_MODERATOR", "user is not a moderator")
	ErrEmailTaken         = newSentinel(KindConflict, "EMAIL_TAKEN", "email already registered")

	ErrInvalidCredentials = newSentinel(KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
)

// InvalidInput builds a validation error that names the failed precondition.
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Code: "INVALID_INPUT", Message: message}
}

// Forbidden builds an authorization error with a specific message.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

// Conflict builds a state-invariant error with a specific code.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Unauthorized builds a credential error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: message, Err: err}
}

// From converts any error into an *Error, defaulting to Internal.
func From(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(fallback, err)
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
