package credential

import (
	"strings"
	"unicode"
)

const minPasswordLength = 10

// ValidatePassword checks the password policy and returns the first
// violated rule as a human-readable message, or "" if the password is
// acceptable. The email is used to reject passwords containing the
// account's local-part.
func ValidatePassword(password, email string) string {
	if len(password) < minPasswordLength {
		return "password must be at least 10 characters"
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return "password must not contain whitespace"
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !lower {
		return "password must contain a lowercase letter"
	}
	if !upper {
		return "password must contain an uppercase letter"
	}
	if !digit {
		return "password must contain a digit"
	}
	if !symbol {
		return "password must contain a symbol"
	}
	if local := EmailLocalPart(email); len(local) >= 3 &&
		strings.Contains(strings.ToLower(password), local) {
		return "password must not contain your email address"
	}
	return ""
}
