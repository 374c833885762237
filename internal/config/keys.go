package config

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes. Each yields an independent key from the same APP_SECRET.
const (
	PurposeWordSalt   = "wordgame/word-salt"
	PurposeShareToken = "wordgame/share-token"
)

// DeriveKey expands the configured secret into a 32-byte key for purpose.
func (c Config) DeriveKey(purpose string) []byte {
	r := hkdf.New(sha256.New, []byte(c.Secret), nil, []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 can produce up to 8160 bytes; 32 never fails.
		panic(err)
	}
	return key
}
