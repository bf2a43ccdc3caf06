package usecase

import (
	"crypto/rand"
	"io"
	"strings"
)

// codeAlphabet is the uppercase alphanumeric wire alphabet for voucher
// codes (36 symbols). Codes must round-trip through it unchanged.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateVoucherCode creates a random human-presentable voucher code of the
// form PREFIX-XXXX-XXXX-XXXX-XXXX (segment count and length configurable).
// Randomness comes from crypto/rand to make brute-force guessing harder;
// uniqueness is the caller's job via a check-generate-retry loop against
// the store.
func generateVoucherCode(prefix string, segments, segmentLen int) (string, error) {
	buffer := make([]byte, segments*segmentLen)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = codeAlphabet[int(buffer[i])%len(codeAlphabet)]
	}

	var b strings.Builder
	b.WriteString(prefix)
	for i := 0; i < segments; i++ {
		b.WriteByte('-')
		b.Write(buffer[i*segmentLen : (i+1)*segmentLen])
	}
	return b.String(), nil
}
