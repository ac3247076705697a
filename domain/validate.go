package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const maxTitleLen = 50

// ValidateDeadline rejects deadlines that fall before today. The same rule
// applies to tasks and subtasks on create and update.
func ValidateDeadline(deadline Date) error {
	if deadline.IsZero() {
		return NewValidationError("deadline", "deadline is required")
	}
	if deadline.Before(Today()) {
		return NewValidationError("deadline", "deadline cannot be before today")
	}
	return nil
}

// ValidateTitle enforces presence and the 50 character cap shared by task and
// subtask titles and category names.
func ValidateTitle(field, value string) error {
	if value == "" {
		return NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > maxTitleLen {
		return NewValidationError(field, fmt.Sprintf("%s cannot exceed %d characters", field, maxTitleLen))
	}
	return nil
}

// PasswordRule checks one property of a candidate password and returns a
// human readable message when the property does not hold.
type PasswordRule func(password string) error

// MinLengthRule rejects passwords shorter than n runes.
func MinLengthRule(n int) PasswordRule {
	return func(password string) error {
		if utf8.RuneCountInString(password) < n {
			return fmt.Errorf("password must be at least %d characters", n)
		}
		return nil
	}
}

// NotNumericRule rejects passwords made of digits only.
func NotNumericRule() PasswordRule {
	return func(password string) error {
		for _, r := range password {
			if !unicode.IsDigit(r) {
				return nil
			}
		}
		return fmt.Errorf("password cannot be entirely numeric")
	}
}

// DefaultPasswordRules is the rule set applied at registration.
var DefaultPasswordRules = []PasswordRule{
	MinLengthRule(8),
	NotNumericRule(),
}

// ValidatePassword runs the candidate through every rule and collects the
// failures into one field-keyed error.
func ValidatePassword(password string, rules []PasswordRule) error {
	var verr *ValidationError
	for _, rule := range rules {
		if err := rule(password); err != nil {
			if verr == nil {
				verr = &ValidationError{}
			}
			verr.Add("password", err.Error())
		}
	}
	if verr != nil {
		return verr
	}
	return nil
}
