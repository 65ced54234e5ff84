package cryptox

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"unicode/utf8"
)

var ErrInvalidKey = errors.New("invalid transform key")

// KeySize is the number of random bytes behind a hex transform key.
const KeySize = 32

func decodeKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func xorBytes(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// Transform XORs text with the key bytes and base64 encodes the result.
// It is deterministic for a fixed key and is not confidentiality grade.
func Transform(text, hexKey string) (string, error) {
	key, err := decodeKey(hexKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(xorBytes([]byte(text), key)), nil
}

// Reverse undoes Transform. The second return value is false when text is not
// a transformed value for this key (bad base64 or a non UTF-8 result).
func Reverse(text, hexKey string) (string, bool) {
	key, err := decodeKey(hexKey)
	if err != nil {
		return text, false
	}

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return text, false
	}

	plain := xorBytes(raw, key)
	if !utf8.Valid(plain) {
		return text, false
	}
	return string(plain), true
}
