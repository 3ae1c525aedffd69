// Package legacyhash classifies and verifies password hashes produced by
// several generations of an upstream LMS. The stored string is the only
// reliable signal for which algorithm was used; the LMS never recorded it
// per row and a single table may mix formats after migrations.
//
// This package only verifies externally produced hashes. It never mints
// hashes of its own.
package legacyhash

import (
	"crypto/md5"  // #nosec G501 - legacy hash verification only
	"crypto/sha1" // #nosec G505 - legacy hash verification only
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/GehirnInc/crypt/md5_crypt"
	"golang.org/x/crypto/bcrypt"
)

// Encoding identifies which historical hash format a stored value uses.
type Encoding string

const (
	EncodingBcrypt    Encoding = "bcrypt"     // $2y$ / $2a$ modular crypt
	EncodingMd5Crypt  Encoding = "md5-crypt"  // $1$<salt>$<digest>
	EncodingPlainMd5  Encoding = "md5"        // bare 32-char hex digest
	EncodingSaltedMd5 Encoding = "salted-md5" // <md5-hex>:<salt>
	EncodingSha1      Encoding = "sha1"       // bare 40-char hex digest
	EncodingUnknown   Encoding = "unknown"
)

// Classify inspects a stored hash string and reports its encoding. The rules
// are ordered and the first match wins; some legacy formats are
// length-ambiguous subsets of others.
func Classify(hash string) Encoding {
	switch {
	case strings.HasPrefix(hash, "$2y$") || strings.HasPrefix(hash, "$2a$"):
		return EncodingBcrypt
	case strings.HasPrefix(hash, "$1$"):
		return EncodingMd5Crypt
	case isHex(hash, 32):
		return EncodingPlainMd5
	}
	if digest, salt, ok := strings.Cut(hash, ":"); ok && isHex(digest, 32) && salt != "" {
		return EncodingSaltedMd5
	}
	if isHex(hash, 40) {
		return EncodingSha1
	}
	return EncodingUnknown
}

// Verify reports whether password matches the stored hash, dispatching on
// the hash's encoding. Empty inputs and unrecognised or malformed hashes
// always report false; errors from the underlying primitives never escape.
func Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}

	switch Classify(hash) {
	case EncodingBcrypt:
		// Constant time, handles its own embedded salt and cost. PHP emits
		// $2y$; the Go implementation keeps the minor version verbatim and
		// computes the identical algorithm.
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case EncodingMd5Crypt:
		// Re-renders $1$<salt>$<digest> with the stored salt and compares
		// the full strings, prefix included.
		return md5_crypt.New().Verify(hash, []byte(password)) == nil
	case EncodingPlainMd5:
		return equalHex(md5Hex(password), hash)
	case EncodingSaltedMd5:
		digest, salt, _ := strings.Cut(hash, ":")
		return equalHex(md5Hex(password+salt), digest)
	case EncodingSha1:
		return equalHex(sha1Hex(password), hash)
	default:
		return false
	}
}

// Prefix returns the leading characters of a stored hash, safe for operator
// diagnostics. Never log more of a hash than this.
func Prefix(hash string) string {
	const n = 10
	if len(hash) <= n {
		return hash
	}
	return hash[:n]
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// equalHex compares a computed lowercase hex digest against a stored one,
// case-insensitively on the hex text. Legacy systems compared the string
// representations, never decoded bytes, so we do the same.
func equalHex(computed, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(stored))) == 1
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
