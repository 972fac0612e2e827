package common

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

// ValidationError reports field-level problems with user input.
// It matches ErrValidation via errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty reports whether no problems were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e when it carries problems and nil otherwise, so callers can
// write `return v.OrNil()` without producing a typed nil error.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s is a bare address like "user@example.com".
// Display names ("Ann <ann@x.com>") are rejected, and the domain must
// contain a dot.
func ValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// ValidateSignUp checks the shape of a registration request. email must
// already be normalized.
func ValidateSignUp(name, email, password string) error {
	v := &ValidationError{}

	if strings.TrimSpace(name) == "" {
		v.Add("name", "name is required")
	}
	if email == "" {
		v.Add("email", "email is required")
	} else if !ValidEmail(email) {
		v.Add("email", "invalid email")
	}
	validatePassword(v, password)

	return v.OrNil()
}

// ValidateSignIn only checks presence. A malformed address is left to fail
// as an unknown account, so it is reported like any other bad credential.
func ValidateSignIn(email, password string) error {
	v := &ValidationError{}
	if email == "" {
		v.Add("email", "email is required")
	}
	if password == "" {
		v.Add("password", "password is required")
	}
	return v.OrNil()
}

func validatePassword(v *ValidationError, password string) {
	switch {
	case password == "":
		v.Add("password", "password is required")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		v.Add("password", "password must be at least 6 characters")
	case len(password) > MaxPasswordBytes:
		v.Add("password", "password must be at most 72 bytes")
	}
}

// ValidateTaskTitle checks a task title after trimming.
func ValidateTaskTitle(title string) error {
	v := &ValidationError{}
	t := strings.TrimSpace(title)
	switch {
	case t == "":
		v.Add("title", "title is required")
	case utf8.RuneCountInString(t) > MaxTaskTitleLength:
		v.Add("title", "title must be at most 200 characters")
	}
	return v.OrNil()
}
