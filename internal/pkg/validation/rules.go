package validation

import (
	"regexp"
)

// Account credential rules
var (
	// Usernames: lowercase letters, digits, dots, underscores and hyphens
	UsernamePattern = `^[a-z0-9._\-]{3,64}$`

	PasswordMinLength = 8
	PasswordMaxLength = 128
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

// ValidUsername reports whether username matches the account naming rules.
func ValidUsername(username string) bool {
	return CompiledPatterns.Username.MatchString(username)
}

// ValidPassword reports whether password satisfies the length rules.
func ValidPassword(password string) bool {
	return len(password) >= PasswordMinLength && len(password) <= PasswordMaxLength
}
