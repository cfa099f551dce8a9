package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateMaxLen validates the assembled-length budget.
// Any positive value is accepted; a budget shorter than a single fragment
// is legal and simply yields an empty assembly.
func ValidateMaxLen(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidBudget, "max length must be positive, got %d", n)
	}
	return nil
}

// ValidateCount validates a non-negative iteration or restart count.
// The name is used verbatim in the error message.
func ValidateCount(name string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %d", name, n)
	}
	return nil
}

// ValidateSchedule validates an annealing temperature schedule.
//
// Validation rules:
//   - initial and floor temperatures must be finite and positive
//   - the cooling factor must lie in (0, 1]
//   - the floor must not exceed the initial temperature
func ValidateSchedule(initial, cooling, floor float64) error {
	if !(initial > 0) || math.IsInf(initial, 0) {
		return New(ErrCodeInvalidInput, "initial temperature must be positive and finite, got %v", initial)
	}
	if !(floor > 0) || math.IsInf(floor, 0) {
		return New(ErrCodeInvalidInput, "minimum temperature must be positive and finite, got %v", floor)
	}
	if !(cooling > 0 && cooling <= 1) {
		return New(ErrCodeInvalidInput, "cooling factor must be in (0, 1], got %v", cooling)
	}
	if floor > initial {
		return New(ErrCodeInvalidInput, "minimum temperature %v exceeds initial temperature %v", floor, initial)
	}
	return nil
}

// ValidateFragment validates a single fragment token.
// Fragments are opaque strings but must not carry whitespace or control
// characters, since those cannot survive the line-oriented input format.
func ValidateFragment(index int, s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "fragment %d is empty", index)
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "fragment %d contains whitespace or control characters", index)
		}
	}
	return nil
}

// ValidateURL validates a service URL against a set of allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
