// Package randstring generates random identifiers and substitutes entropy
// into templates, e.g. for seeding test documents.
package randstring

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("length must be greater than 0")
	ErrEmptyAlphabet = errors.New("alphabet must not be empty")
)

// Alphabet matches the character set of store-generated document IDs.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a securely generated random string of the given length using
// the default [Alphabet].
func New(n int) (string, error) {
	return NewWithAlphabet(n, Alphabet)
}

// NewWithAlphabet returns a securely generated random string using the
// provided alphabet.
func NewWithAlphabet(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", ErrInvalidLength
	}

	if len(alphabet) == 0 {
		return "", ErrEmptyAlphabet
	}

	var b strings.Builder

	b.Grow(n)

	for range n {
		c, err := pick(alphabet)
		if err != nil {
			return "", err
		}

		b.WriteByte(c)
	}

	return b.String(), nil
}

// Substitute replaces every occurrence of placeholder in the template with
// a random character from the default [Alphabet].
func Substitute(template string, placeholder rune) (string, error) {
	var b strings.Builder

	b.Grow(len(template))

	for _, r := range template {
		if r != placeholder {
			b.WriteRune(r)
			continue
		}

		c, err := pick(Alphabet)
		if err != nil {
			return "", err
		}

		b.WriteByte(c)
	}

	return b.String(), nil
}

func pick(alphabet string) (byte, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}

	return alphabet[i.Int64()], nil
}
