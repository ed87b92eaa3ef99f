package user

import (
	"fmt"
	"regexp"
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	}
	if !hasLetter.MatchString(pw) {
		return fmt.Errorf("%w: must include at least one letter", ErrWeakPassword)
	}
	if !hasNumber.MatchString(pw) {
		return fmt.Errorf("%w: must include at least one number", ErrWeakPassword)
	}
	return nil
}
