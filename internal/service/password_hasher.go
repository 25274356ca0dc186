package service

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies stored passwords.
type PasswordHasher interface {
	Hash(password []byte) ([]byte, error)
	Compare(hash, password []byte) error
}

// BcryptHasher PasswordHasher backed by bcrypt
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, h.Cost)
}

func (h BcryptHasher) Compare(hash, password []byte) error {
	return bcrypt.CompareHashAndPassword(hash, password)
}

var legacyHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// isLegacyHash reports whether a stored hash is an unsalted MD5 hex digest
// written before the bcrypt migration.
func isLegacyHash(stored string) bool {
	return legacyHashPattern.MatchString(stored)
}

func compareLegacyHash(stored, password string) bool {
	sum := md5.Sum([]byte(password))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(stored))) == 1
}
