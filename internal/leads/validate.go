package leads

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMissingField    = errors.New("required field missing")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidRole     = errors.New("role must be lead or agent")
)

// ValidationError reports which lead field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the required contact fields and normalizes the category in place.
func (l *Lead) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	l.Phone = strings.TrimSpace(l.Phone)

	required := []struct {
		field string
		value string
	}{
		{"name", l.Name},
		{"email", l.Email},
		{"phone", l.Phone},
		{"category", string(l.Category)},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Err: ErrMissingField}
		}
	}

	if !emailPattern.MatchString(l.Email) {
		return &ValidationError{Field: "email", Err: ErrInvalidEmail}
	}

	c, err := ParseCategory(string(l.Category))
	if err != nil {
		return &ValidationError{Field: "category", Err: err}
	}
	l.Category = c
	return nil
}
