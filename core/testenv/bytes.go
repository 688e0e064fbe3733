package testenv

import (
	"encoding/hex"
	"math/rand"
	"strings"
	"unicode"
)

// BytesFromHex decodes a hexadecimal string, and panics on error.
// Digits may be written in either case; separators such as spaces, colons, and pipes are ignored.
func BytesFromHex(input string) []byte {
	digits := strings.Map(func(ch rune) rune {
		if unicode.Is(unicode.ASCII_Hex_Digit, ch) {
			return ch
		}
		return -1
	}, input)
	b, e := hex.DecodeString(digits)
	if e != nil {
		panic(e)
	}
	return b
}

// RandBytes fills p with non-crypto-safe random bytes.
func RandBytes(p []byte) {
	for i := range p {
		p[i] = byte(rand.Uint32())
	}
}
