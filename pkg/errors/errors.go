// Package errors defines the typed errors the API renders in its envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error carries a stable code, an HTTP status and a client-safe message.
// Fields lists per-field problems for validation failures.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an error with no cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error around cause.
func Wrap(cause error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: cause}
}

var (
	ErrNotFound      = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict      = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation    = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConfiguration = New("CONFIGURATION_ERROR", http.StatusConflict, "cycle calendar is not correctly configured")
	ErrInternal      = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss     = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError returns the *Error in err's chain, or an INTERNAL_ERROR wrapping err.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies base, replacing the message when one is given.
func Clone(base *Error, message string) *Error {
	if base == nil {
		return nil
	}
	out := *base
	if message != "" {
		out.Message = message
	}
	if base.Fields != nil {
		out.Fields = make(map[string]string, len(base.Fields))
		for k, v := range base.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}

// HasCode reports whether err's chain holds an *Error with the same code as target.
func HasCode(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var typed *Error
	return errors.As(err, &typed) && typed.Code == target.Code
}

// Validation builds a VALIDATION_ERROR. Struct validation failures from
// go-playground/validator are listed per field.
func Validation(cause error, message string) *Error {
	if message == "" {
		message = ErrValidation.Message
	}
	out := Wrap(cause, ErrValidation.Code, ErrValidation.Status, message)

	var fieldErrs validator.ValidationErrors
	if errors.As(cause, &fieldErrs) && len(fieldErrs) > 0 {
		out.Fields = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			out.Fields[fieldName(fe)] = describeRule(fe)
		}
	}
	return out
}

// FieldNames lists the fields of a validation error in sorted order.
func (e *Error) FieldNames() []string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return toSnake(name)
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid", "uuid4":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	case "datetime":
		return "must match " + fe.Param()
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

// toSnake turns a Go field name such as SubjectID into subject_id.
func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
