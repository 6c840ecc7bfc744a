package crypto

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
)

// Sign produces a raw RSA-PKCS1v1.5-SHA256 signature (512 bytes for a
// 4096-bit key) over signingString, using the RS256 [jwt.SigningMethod]
// directly rather than its higher-level claims API - there is no JWT
// payload here, only the detached "protected.payload" string defined by
// the canonicalizer.
func Sign(signingString string, priv *rsa.PrivateKey) ([]byte, error) {
	return jwt.SigningMethodRS256.Sign(signingString, priv)
}

// Verify checks a raw RSA-PKCS1v1.5-SHA256 signature over signingString.
// It returns [ErrSignatureInvalid] on any mismatch.
func Verify(signingString string, sig []byte, pub *rsa.PublicKey) error {
	if err := jwt.SigningMethodRS256.Verify(signingString, sig, pub); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}
