package session

import (
	"fmt"
	"strings"
)

// PasswordMatch classifies the password against its confirmation.
type PasswordMatch int

const (
	Match PasswordMatch = iota
	// PartialMatch means the confirmation typed so far is a prefix of the
	// password. It is advisory only.
	PartialMatch
	Mismatch
)

func (p PasswordMatch) String() string {
	switch p {
	case Match:
		return "match"
	case PartialMatch:
		return "partial"
	case Mismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("PasswordMatch(%d)", int(p))
	}
}

// ClassifyPassword compares a password with its confirmation.
func ClassifyPassword(password, confirmation string) PasswordMatch {
	if password == confirmation {
		return Match
	}
	if strings.HasPrefix(password, confirmation) {
		return PartialMatch
	}
	return Mismatch
}

// ValidationError reports one failed validation rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
