package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey trims and NFC-normalises a state key so that visually identical
// keys address the same entry. Empty keys are rejected with ErrInvalidKey.
func NormalizeKey(key string) (string, error) {
	k := norm.NFC.String(strings.TrimSpace(key))
	if k == "" {
		return "", ErrInvalidKey
	}
	return k, nil
}
