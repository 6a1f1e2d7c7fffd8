package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// codeAlphabet is lowercase letters plus digits. Six characters over this
// alphabet give 36^6 (~2.2 billion) possible codes.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength is the short-code length used when none is configured
const DefaultCodeLength = 6

// CodeGenerator produces fixed-length random short codes over [a-z0-9].
// Codes are not guaranteed globally unique; uniqueness is enforced by the
// caller against the link store.
type CodeGenerator struct {
	length int
}

// NewCodeGenerator creates a generator for codes of the given length
func NewCodeGenerator(length int) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeGenerator{length: length}
}

// Generate returns a new random short code
func (g *CodeGenerator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(g.length)

	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// Length returns the configured code length
func (g *CodeGenerator) Length() int {
	return g.length
}
