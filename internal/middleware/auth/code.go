package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
)

const (
	// ConfirmationCodeLength matches the users.confirmation_code column.
	ConfirmationCodeLength = 10

	// no 0/O, 1/l/I
	codeAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NewConfirmationCode returns a random code drawn from an unambiguous alphabet.
func NewConfirmationCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, ConfirmationCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// CodesMatch compares a supplied code with the stored one in constant time.
// Empty values on either side never match.
func CodesMatch(stored, supplied string) bool {
	if stored == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
