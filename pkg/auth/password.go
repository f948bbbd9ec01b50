package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used by HashPassword. Tests lower it.
var HashCost = 12

const MinPasswordLength = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(hash), err
}

// CheckPasswordHash reports whether password matches a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var passwordRules = []struct {
	describe string
	match    func(rune) bool
}{
	{"at least 1 uppercase letter", unicode.IsUpper},
	{"at least 1 lowercase letter", unicode.IsLower},
	{"at least 1 digit", unicode.IsDigit},
	{"at least 1 special character", func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }},
}

// ValidatePasswordStrength lists every rule the password breaks.
func ValidatePasswordStrength(password string) error {
	var missing []string
	if len([]rune(password)) < MinPasswordLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", MinPasswordLength))
	}
	for _, rule := range passwordRules {
		if !strings.ContainsFunc(password, rule.match) {
			missing = append(missing, rule.describe)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(missing, ", "))
	}
	return nil
}
