package util

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
)

// orderCodeAlphabet has no 0, 1, I or O.
const orderCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const orderCodeLength = 10

func GenerateRandomSlug(name string) string {
	baseSlug := slug.Make(name)
	shortID := shortuuid.New()[:8]

	if baseSlug == "" {
		return shortID
	}

	return fmt.Sprintf("%s-%s", baseSlug, shortID)
}

// GenerateOrderCode returns a code such as "ORD-7KQ2M9XWRT".
func GenerateOrderCode() string {
	return "ORD-" + shortuuid.NewWithAlphabet(orderCodeAlphabet)[:orderCodeLength]
}

// GenerateSixDigitCode returns a random code between 100000 and 999999.
func GenerateSixDigitCode() (string, error) {
	minInt := big.NewInt(100000)
	diff := big.NewInt(900000)

	n, err := rand.Int(rand.Reader, diff)
	if err != nil {
		return "", err
	}

	n.Add(n, minInt)
	return n.String(), nil
}
