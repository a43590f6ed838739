package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing these invalidates stored hashes.
const (
	saltLength  = 16
	argonTime   = 1
	argonMemory = 64 * 1024
	argonLanes  = 4
	keyLength   = 32
)

// HashPassword derives an argon2id key from the password with a fresh random
// salt. Hash and salt are returned base64-encoded for storage.
func HashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltLength)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}
	key := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonLanes, keyLength)
	return base64.RawStdEncoding.EncodeToString(key),
		base64.RawStdEncoding.EncodeToString(rawSalt),
		nil
}

// VerifyPassword reports whether password matches the stored hash and salt.
func VerifyPassword(password, hash, salt string) bool {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonLanes, keyLength)
	return subtle.ConstantTimeCompare(got, want) == 1
}
