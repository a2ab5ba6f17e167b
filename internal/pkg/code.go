package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func RandDigits(n int) (string, error) {
	return randFrom("0123456789", n)
}

// RandPassword is used for provisioned accounts; users are expected to change it.
func RandPassword(n int) (string, error) {
	return randFrom(passwordAlphabet, n)
}

func randFrom(alphabet string, n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[x.Int64()])
	}
	return b.String(), nil
}

// NewID returns an opaque identifier for new documents.
func NewID() string {
	return uuid.NewString()
}
