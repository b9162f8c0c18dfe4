package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 4096
	keyBytes   = 32
)

// HashPassword returns a "salt$digest" record with both parts hex encoded.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltBytes)

	_, err := rand.Read(salt)

	if err != nil {
		return "", err
	}

	digest := pbkdf2.Key([]byte(plain), salt, iterations, keyBytes, sha256.New)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest), nil
}

// VerifyPassword checks plain against a stored record. Malformed records
// fail closed. The comparison is constant-time.
func VerifyPassword(plain, record string) bool {
	if record == "" || !strings.Contains(record, "$") {
		return false
	}

	saltHex, digestHex, _ := strings.Cut(record, "$")

	salt, err := hex.DecodeString(saltHex)

	if err != nil {
		return false
	}

	stored, err := hex.DecodeString(digestHex)

	if err != nil || len(stored) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(plain), salt, iterations, len(stored), sha256.New)

	return subtle.ConstantTimeCompare(computed, stored) == 1
}
