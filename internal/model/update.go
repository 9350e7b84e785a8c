package model

import (
	"errors"
	"regexp"
	"time"
)

// Field validation errors.
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidBirthday = errors.New("invalid birthday")
	ErrUnknownField    = errors.New("unknown field")
)

var emailRegex = regexp.MustCompile(`^\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b$`)

// FieldUpdate is a change to exactly one user field.
// Implementations are closed to this package.
type FieldUpdate interface {
	// Field names the updated field for logs and metrics.
	Field() string
	// Validate checks the new value.
	Validate() error
	isFieldUpdate()
}

// NameUpdate replaces the user's first name.
type NameUpdate struct{ Value string }

// SurnameUpdate replaces the user's surname.
type SurnameUpdate struct{ Value string }

// EmailUpdate replaces the user's email.
type EmailUpdate struct{ Value string }

// PasswordUpdate replaces the user's password.
// Hash is filled in by the service before the update reaches storage.
type PasswordUpdate struct {
	Plaintext string
	Hash      string
}

// BirthdayUpdate replaces the user's birthday.
type BirthdayUpdate struct{ Value string }

func (NameUpdate) Field() string     { return "name" }
func (SurnameUpdate) Field() string  { return "surname" }
func (EmailUpdate) Field() string    { return "email" }
func (PasswordUpdate) Field() string { return "password" }
func (BirthdayUpdate) Field() string { return "birthday" }

func (NameUpdate) Validate() error    { return nil }
func (SurnameUpdate) Validate() error { return nil }

func (u EmailUpdate) Validate() error {
	if !ValidEmail(u.Value) {
		return ErrInvalidEmail
	}
	return nil
}

func (PasswordUpdate) Validate() error { return nil }

func (u BirthdayUpdate) Validate() error {
	if _, err := time.Parse(BirthdayLayout, u.Value); err != nil {
		return ErrInvalidBirthday
	}
	return nil
}

func (NameUpdate) isFieldUpdate()     {}
func (SurnameUpdate) isFieldUpdate()  {}
func (EmailUpdate) isFieldUpdate()    {}
func (PasswordUpdate) isFieldUpdate() {}
func (BirthdayUpdate) isFieldUpdate() {}

// ValidEmail reports whether s fully matches the accepted email pattern.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// NewFieldUpdate builds the update for a named field.
// Returns ErrUnknownField for anything but the five editable fields.
func NewFieldUpdate(field, value string) (FieldUpdate, error) {
	switch field {
	case "name":
		return NameUpdate{Value: value}, nil
	case "surname":
		return SurnameUpdate{Value: value}, nil
	case "email":
		return EmailUpdate{Value: value}, nil
	case "password":
		return PasswordUpdate{Plaintext: value}, nil
	case "birthday":
		return BirthdayUpdate{Value: value}, nil
	}
	return nil, ErrUnknownField
}
