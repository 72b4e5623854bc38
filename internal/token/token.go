// Package token generates confirmation tokens for pending subscriptions.
package token

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Length is the number of characters in a confirmation token. 25 characters
// over a 62-symbol alphabet gives roughly 10^44 combinations, which puts
// brute-force search out of reach.
const Length = 25

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces unguessable confirmation tokens from a random source.
type Generator struct {
	source io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{source: rand.Reader}
}

// NewGeneratorWithSource returns a Generator reading entropy from the given
// source. Tests inject a deterministic reader here.
func NewGeneratorWithSource(source io.Reader) *Generator {
	return &Generator{source: source}
}

// Generate returns a new confirmation token. Tokens are not tracked for
// uniqueness; the collision probability at this length is negligible.
// A failing entropy source is unrecoverable and panics.
func (g *Generator) Generate() string {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(g.source, max)
		if err != nil {
			panic(fmt.Sprintf("token: reading random source: %v", err))
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

// Valid reports whether s has the shape of a generated token: exactly Length
// characters, all from the token alphabet. Used to reject malformed
// confirmation parameters before touching the database.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
