package auth

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	tempPasswordFragmentLen = 8
	base36Alphabet          = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// TempUsername derives the portal login name issued at approval:
// lowercase(first).lowercase(last), internal whitespace collapsed out.
// Two applicants with the same name get the same username; the identity
// email stays the conflict key.
func TempUsername(firstName, lastName string) string {
	return squash(firstName) + "." + squash(lastName)
}

// TempPassword generates the one-time password issued at approval: two
// 8-character base36 fragments, 16 characters total.
func TempPassword() (string, error) {
	a, err := base36Fragment(tempPasswordFragmentLen)
	if err != nil {
		return "", err
	}
	b, err := base36Fragment(tempPasswordFragmentLen)
	if err != nil {
		return "", err
	}
	return a + b, nil
}

func base36Fragment(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(out), nil
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
