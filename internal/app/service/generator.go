// Package service contains the short-id generator, input validation,
// record rendering and the record service composing them.
package service

import "crypto/rand"

// shortIDAlphabet has exactly 64 URL-safe characters so a random byte maps
// to a character without modulo bias.
const shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

// ShortIDLength is the length of every public short identifier.
const ShortIDLength = 8

// IDGenerator produces short ids. It does not guarantee uniqueness against
// the store; the caller retries on storage conflicts.
type IDGenerator interface {
	Generate() (string, error)
}

// ShortIDGenerator draws fixed-length tokens from crypto/rand.
type ShortIDGenerator struct {
	length int
}

func NewShortIDGenerator(length int) *ShortIDGenerator {
	if length <= 0 {
		length = ShortIDLength
	}
	return &ShortIDGenerator{length: length}
}

func (g *ShortIDGenerator) Generate() (string, error) {
	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = shortIDAlphabet[int(b)&63]
	}

	return string(buf), nil
}
