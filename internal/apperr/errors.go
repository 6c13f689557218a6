// Package apperr defines the error taxonomy shared by repositories and
// services. Every error here is per-request and recoverable; callers map
// them to whatever response surface they own.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup by id or email misses.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on a unique-constraint race, e.g. two
	// concurrent registrations with the same email.
	ErrConflict = errors.New("already exists")

	// ErrExpiredToken is returned when a password-reset token is presented
	// after its window has elapsed.
	ErrExpiredToken = errors.New("token expired")

	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = errors.New("cannot follow self")
)

// Validation carries field-level validation failures. It is a value the
// caller can re-render into a form, not a fatal condition.
type Validation struct {
	Fields map[string][]string
}

func NewValidation() *Validation {
	return &Validation{Fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (v *Validation) Add(field, msg string) {
	v.Fields[field] = append(v.Fields[field], msg)
}

// Empty reports whether no failures have been recorded.
func (v *Validation) Empty() bool { return len(v.Fields) == 0 }

// ErrOrNil returns v as an error, or nil when no failures were recorded.
func (v *Validation) ErrOrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *Validation) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err is a field-level validation failure and
// returns it when so.
func IsValidation(err error) (*Validation, bool) {
	var v *Validation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
