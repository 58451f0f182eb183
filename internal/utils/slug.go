package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/tsubakurame/team-todo-api/internal/constants"
)

var slugRegexp = regexp.MustCompile(constants.SlugPattern)

// NormalizeSlug lowercases and trims a user-supplied slug. Uniqueness is
// enforced on the stored lowercase value, so lookups never need a
// case-insensitive scan.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidSlug reports whether a normalized slug matches the allowed pattern.
func ValidSlug(slug string) bool {
	return slugRegexp.MatchString(slug)
}

// GenerateSlug builds a fallback slug for an organization that has none yet.
func GenerateSlug(orgID uint64) (string, error) {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("org-%d-%s", orgID, hex.EncodeToString(bytes)), nil
}
