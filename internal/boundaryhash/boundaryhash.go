// Package boundaryhash implements the selective-disclosure boundary
// reference value (spec.md §4.7, §6.3) and the LEI/GLN check-digit
// routines it depends on indirectly through validation.
package boundaryhash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	omtsferrors "github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// SaltSize is the decoded byte length of a FileSalt.
const SaltSize = 32

// DecodeSalt decodes a 64-character lowercase-hex FileSalt into 32 raw
// bytes.
func DecodeSalt(salt omtsf.FileSalt) ([SaltSize]byte, error) {
	var out [SaltSize]byte
	raw, err := hex.DecodeString(string(salt))
	if err != nil {
		return out, omtsferrors.InvalidSalt(err, "file salt is not valid hex")
	}
	if len(raw) != SaltSize {
		return out, omtsferrors.InvalidSalt(nil, "file salt must decode to 32 bytes")
	}
	copy(out[:], raw)
	return out, nil
}

// GenerateFileSalt draws 32 CSPRNG bytes and hex-encodes them into a fresh
// FileSalt, used by merge (§4.5 step 9) to mint a new salt for merged
// output.
func GenerateFileSalt() (omtsf.FileSalt, error) {
	var buf [SaltSize]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", omtsferrors.Csprng(err, "failed to generate file salt")
	}
	return omtsf.FileSalt(hex.EncodeToString(buf[:])), nil
}

// BoundaryRefValue computes the opaque boundary reference value for a
// node's public canonical identifiers and the file's decoded salt
// (spec.md §4.7):
//
//   - empty ids: 32 fresh CSPRNG bytes, hex-encoded.
//   - non-empty ids: sort canonical identifier strings by UTF-8 byte
//     order, join with '\n', append the 32 raw salt bytes, SHA-256,
//     lower-hex-encode.
//
// Go strings compare byte-wise already, so sort.Strings is UTF-8
// byte-order correct without further normalization.
func BoundaryRefValue(canonicalIds []string, salt [SaltSize]byte) (string, error) {
	if len(canonicalIds) == 0 {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", omtsferrors.Csprng(err, "failed to generate boundary reference token")
		}
		return hex.EncodeToString(buf[:]), nil
	}

	sorted := make([]string, len(canonicalIds))
	copy(sorted, canonicalIds)
	sort.Strings(sorted)

	joined := strings.Join(sorted, "\n")

	h := sha256.New()
	h.Write([]byte(joined))
	h.Write(salt[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}
