package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// TagSeparator joins a payload and its integrity tag.
const TagSeparator = "::"

// Tag computes hex(sha256(data || salt)). It detects accidental or naive
// tampering only; anyone holding the salt can forge it.
func Tag(data, salt string) string {
	sum := sha256.Sum256([]byte(data + salt))
	return hex.EncodeToString(sum[:])
}

// Seal appends the integrity tag to data.
func Seal(data, salt string) string {
	return data + TagSeparator + Tag(data, salt)
}

// Open splits blob on the last separator and verifies the tag.
// When the separator is missing or the tag does not match, the blob is
// returned unchanged together with false.
func Open(blob, salt string) (string, bool) {
	i := strings.LastIndex(blob, TagSeparator)
	if i < 0 {
		return blob, false
	}

	data, tag := blob[:i], blob[i+len(TagSeparator):]
	expected := Tag(data, salt)
	if subtle.ConstantTimeCompare([]byte(tag), []byte(expected)) != 1 {
		return blob, false
	}
	return data, true
}
