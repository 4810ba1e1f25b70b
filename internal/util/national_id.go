package util

import (
	"strings"

	"github.com/zpmep/hmacutil"
)

// NormalizeNationalID strips separators so "1234 5678-..." and "12345678..." digest alike.
func NormalizeNationalID(nationalID string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "")
	return replacer.Replace(strings.TrimSpace(nationalID))
}

// HashNationalID returns the keyed digest stored on orders instead of the raw number.
func HashNationalID(secret, nationalID string) string {
	return hmacutil.HexStringEncode(hmacutil.SHA256, secret, NormalizeNationalID(nationalID))
}
