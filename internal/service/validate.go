package service

import (
	"regexp"
)

// local@domain with at least one dot in the domain part.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// validator accumulates field failures; every applicable failure is
// reported, joined into one message, not just the first.
type validator struct {
	failures []string
}

func (v *validator) fail(message string) {
	v.failures = append(v.failures, message)
}

func (v *validator) requireField(value, message string) bool {
	if value == "" {
		v.fail(message)
		return false
	}
	return true
}

func (v *validator) requireEmail(email string) {
	if v.requireField(email, "Email is required") && !isValidEmail(email) {
		v.fail("Please enter a valid email address")
	}
}

func (v *validator) ok() bool {
	return len(v.failures) == 0
}
