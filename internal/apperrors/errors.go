package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindGateway
)

// Error is the application error carried from handlers and services to the
// response layer, which maps Kind to an HTTP status.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a per-field error. Fields maps field name to a
// user-correctable message.
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

func NotFound(resource string) *Error {
	return Newf(KindNotFound, "%s not found", resource)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Unauthorized(message string) *Error {
	return New(KindAuth, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Gateway(message string, err error) *Error {
	return Wrap(KindGateway, message, err)
}

// FromBinding converts a gin binding failure into a field-level validation
// error so clients see which fields failed rather than a parser message.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors

	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = bindingMessage(fe)
		}
		return Validation(fields)
	}

	return Wrap(KindValidation, "Invalid request body", err)
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Classify maps database errors to the taxonomy: record-not-found becomes
// NotFound and a Postgres unique violation becomes Conflict.
func Classify(err error, resource string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return Conflict(resource + " already exists")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict(resource + " already exists")
	}

	return Wrap(KindInternal, "Internal server error", err)
}
