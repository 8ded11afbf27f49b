package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const OrderCodeLength = 10

// NewOrderCode returns a short upper-case alphanumeric code taken from
// crypto/rand.
func NewOrderCode() (string, error) {
	for {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code := base64.RawURLEncoding.EncodeToString(buf)
		code = strings.NewReplacer("-", "", "_", "").Replace(code)
		if len(code) > OrderCodeLength {
			code = code[:OrderCodeLength]
		}
		if code != "" {
			return strings.ToUpper(code), nil
		}
	}
}
