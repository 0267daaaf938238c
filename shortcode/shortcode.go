// Package shortcode generates the compact aliases assigned to bookmarks.
// A generator from NewBase62 is safe for concurrent use; one from
// NewBase62FromReader is only as safe as the reader it wraps.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// Alphabet is the 62-symbol set codes are drawn from: digits, then
	// lowercase, then uppercase ASCII letters.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Length is the size of every code handed out to bookmarks.
	Length = 3

	// rejectAbove is the largest multiple of len(Alphabet) that fits in a byte.
	// Bytes at or above it are discarded so every symbol is equally likely.
	rejectAbove = 256 - (256 % len(Alphabet))
)

// Generator produces random codes of the requested length.
type Generator interface {
	Generate(length int) (string, error)
}

type base62Generator struct {
	rand io.Reader
}

// NewBase62 returns a generator backed by crypto/rand.
func NewBase62() Generator {
	return &base62Generator{rand: rand.Reader}
}

// NewBase62FromReader returns a generator that draws entropy from r. Callers
// sharing it across goroutines must supply a reader safe for concurrent use.
func NewBase62FromReader(r io.Reader) Generator {
	return &base62Generator{rand: r}
}

// Generate draws length symbols uniformly from Alphabet.
func (g *base62Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+1)
	for len(out) < length {
		n, err := io.ReadFull(g.rand, buf)
		if err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf[:n] {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// Valid reports whether code has the bookmark code length and only uses Alphabet symbols.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !isAlphabetByte(code[i]) {
			return false
		}
	}
	return true
}

func isAlphabetByte(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	default:
		return false
	}
}
