package bookings

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 8

// GenerateTicketCode builds a code like "ONL-7KQ2M9XB": channel prefix plus
// eight random uppercase alphanumerics from crypto/rand. Uniqueness is
// enforced by the database; callers retry on collision.
func GenerateTicketCode(channel Channel) (string, error) {
	randomPart := make([]byte, codeLength)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		randomPart[i] = codeAlphabet[num.Int64()]
	}
	return fmt.Sprintf("%s-%s", channel.CodePrefix(), string(randomPart)), nil
}
