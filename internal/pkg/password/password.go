// Package password derives and verifies salted password hashes.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen    = 32
	iterations = 10000
	keyLen     = 64
)

// Hash generates a random salt and derives a PBKDF2-HMAC-SHA512 key from
// plaintext. Both values are hex encoded.
func Hash(plaintext string) (salt, hash string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return salt, derive(plaintext, salt), nil
}

// Verify recomputes the hash for plaintext and compares it in constant time.
// Rows without a salt that hold a bcrypt hash are checked with bcrypt.
func Verify(plaintext, hash, salt string) bool {
	if salt == "" {
		if isBcrypt(hash) {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
		}
		return false
	}
	computed := derive(plaintext, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

func derive(plaintext, salt string) string {
	key := pbkdf2.Key([]byte(plaintext), []byte(salt), iterations, keyLen, sha512.New)
	return hex.EncodeToString(key)
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
