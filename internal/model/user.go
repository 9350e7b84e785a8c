// Package model defines domain entities for the application.
package model

import (
	"fmt"
	"time"
)

// BirthdayLayout is the storage and wire format of a birthday.
const BirthdayLayout = "2006-01-02"

// User types.
const (
	UserTypeMember    = "member"
	UserTypeLibrarian = "librarian"
)

// User represents a library account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Birthday     string    `json:"birthday"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Age returns the user's age in whole years on the given day.
// The stored birthday must be in BirthdayLayout.
func (u *User) Age(today time.Time) (int, error) {
	bd, err := time.Parse(BirthdayLayout, u.Birthday)
	if err != nil {
		return 0, fmt.Errorf("parse birthday %q: %w", u.Birthday, err)
	}
	return AgeOn(bd, today), nil
}

// AgeOn computes the number of completed years between birth and today.
// A year is subtracted when today's month/day precedes the birth month/day.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
