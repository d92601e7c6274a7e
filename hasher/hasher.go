// Package hasher computes the content digests identifying stored media.
package hasher

import (
	"encoding/hex"
	"io"

	"github.com/code19m/errx"
	"golang.org/x/crypto/blake2b"
)

// Hash returns the hex BLAKE2b-256 digest of everything read from r.
func Hash(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", errx.Wrap(err)
	}
	if _, err = io.Copy(h, r); err != nil {
		return "", errx.Wrap(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes is Hash for content already in memory.
func HashBytes(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
