package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet excludes characters that are easy to confuse when a code is
// read aloud or retyped from an email (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// codeGroupLen is the number of characters per hyphen-separated group.
const codeGroupLen = 5

// GenerateActivationCode produces a cryptographically random activation
// code of the form "XXXXX-XXXXX": two groups of five characters drawn from
// an unambiguous alphabet (~49 bits of entropy).
//
// The caller owns the only copy of the plaintext; everything downstream
// stores a one-way hash.
func GenerateActivationCode() (string, error) {
	// reduce-and-reject keeps the draw uniform: a plain modulo over 256
	// byte values would favor the first 256%len(codeAlphabet) characters
	limit := 256 - 256%len(codeAlphabet)

	var b strings.Builder
	b.Grow(codeGroupLen*2 + 1)

	buf := make([]byte, codeGroupLen*4)
	written := 0
	for written < codeGroupLen*2 {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("error reading random bytes for activation code: %w", err)
		}
		for _, r := range buf {
			if int(r) >= limit {
				continue
			}
			if written == codeGroupLen {
				b.WriteByte('-')
			}
			b.WriteByte(codeAlphabet[int(r)%len(codeAlphabet)])
			written++
			if written == codeGroupLen*2 {
				break
			}
		}
	}

	return b.String(), nil
}

// NormalizeActivationCode canonicalises operator input before hashing or
// comparison: uppercased, surrounding whitespace removed, group separator
// optional.
func NormalizeActivationCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.ReplaceAll(code, "-", "")
}
