package crypto

import "encoding/base64"

// Base64 encoding for wire values.
//
// The capsa wire format uses URL-safe base64 without padding (RFC 4648 §5)
// for every byte-valued field: keys, nonces, ciphertexts, hashes, and
// signatures.

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64. Padded input is also accepted, per
// §4.1.
func FromBase64URL(s string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
