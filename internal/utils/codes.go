package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/tsubakurame/team-todo-api/internal/constants"
)

// GenerateToken returns a single-use random token for sign-in links and
// invitations.
func GenerateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NormalizeCode uppercases a user-typed sign-in code and strips everything
// that is not alphanumeric, so "a1B-2c3" and "A1B2C3" compare equal.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// CodeFromToken derives the short sign-in code from a token prefix.
func CodeFromToken(token string) string {
	code := NormalizeCode(token)
	if len(code) > constants.SignInCodeLength {
		code = code[:constants.SignInCodeLength]
	}
	return code
}
