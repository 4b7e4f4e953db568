package service

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// codeAlphabet omits ambiguous characters (0/O, 1/I/L) so codes survive
// being read aloud or typed at a point of sale.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeRandomLength = 8

// GenerateCode builds a tenant-prefixed discount code, e.g. "MAR-7KQ2XWPH".
// The random part spans 31^8 (~850 billion) values per tenant, so collisions
// are negligible; the store's unique index is the actual guarantee.
func GenerateCode(slug string) string {
	var b strings.Builder
	b.Grow(codeRandomLength + 4)

	prefix := codePrefix(slug)
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('-')
	}

	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeRandomLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			panic(err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}

func codePrefix(slug string) string {
	var prefix []byte
	for i := 0; i < len(slug) && len(prefix) < 3; i++ {
		c := slug[i]
		switch {
		case c >= 'a' && c <= 'z':
			prefix = append(prefix, c-'a'+'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			prefix = append(prefix, c)
		}
	}
	return string(prefix)
}
