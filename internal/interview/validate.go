package interview

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrAlreadyAnswered = errors.New("question already answered")

	ErrInvalidName  = errors.New("please provide your full name (first and last name)")
	ErrInvalidEmail = errors.New("enter a valid email address")
	ErrInvalidPhone = errors.New("enter a valid 10-digit phone number")
)

type Field string

const (
	FieldNone  Field = ""
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Prompt returns the question asked to collect the field.
func (f Field) Prompt() string {
	switch f {
	case FieldName:
		return "Hello! Let's start with your full name."
	case FieldEmail:
		return "Thanks! What's your email address?"
	case FieldPhone:
		return "Great! And your phone number?"
	default:
		return ""
	}
}

// Validate checks a trimmed value for the field.
func (f Field) Validate(value string) error {
	switch f {
	case FieldName:
		return ValidateName(value)
	case FieldEmail:
		return ValidateEmail(value)
	case FieldPhone:
		return ValidatePhone(value)
	default:
		return errors.New("no field to validate")
	}
}

// Set returns a copy of the profile with the field assigned.
func (f Field) Set(p CandidateProfile, value string) CandidateProfile {
	switch f {
	case FieldName:
		p.Name = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	}
	return p
}

func ValidateName(name string) error {
	if len(strings.Fields(name)) < 2 {
		return ErrInvalidName
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}
	return nil
}

// RoundHalfUp rounds x to the nearest integer with halves rounded up.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
