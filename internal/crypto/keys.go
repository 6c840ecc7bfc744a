package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

// The four PEM block types this module accepts or produces, per §6 of the
// spec.
const (
	blockPublicKey  = "PUBLIC KEY"     // SPKI
	blockRSAPublic  = "RSA PUBLIC KEY" // PKCS#1
	blockPrivateKey = "PRIVATE KEY"    // PKCS#8
	blockRSAPrivate = "RSA PRIVATE KEY"
)

// GenerateKeyPair generates a fresh RSA key pair with the given modulus
// size in bits. sizeBits must be at least [MinRSAModulusBits]; callers that
// need a smaller key for non-capsa purposes should use crypto/rsa directly.
func GenerateKeyPair(sizeBits int) (*rsa.PrivateKey, error) {
	if sizeBits < MinRSAModulusBits {
		return nil, ErrKeyTooSmall
	}
	return rsa.GenerateKey(rand.Reader, sizeBits)
}

// EncodePublicKeyPEM renders pub as an SPKI PEM block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	block := &pem.Block{Type: blockPublicKey, Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// EncodePrivateKeyPEM renders priv as a PKCS#8 PEM block.
func EncodePrivateKeyPEM(priv *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("marshal private key: %w", err)
	}
	block := &pem.Block{Type: blockPrivateKey, Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// ParsePublicKeyPEM accepts both SPKI ("BEGIN PUBLIC KEY") and PKCS#1
// ("BEGIN RSA PUBLIC KEY") encodings.
func ParsePublicKeyPEM(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, ErrMalformedKey
	}

	switch block.Type {
	case blockRSAPublic:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return pub, nil
	default:
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrUnsupportedKeyType
		}
		return pub, nil
	}
}

// ParsePrivateKeyPEM accepts both PKCS#8 ("BEGIN PRIVATE KEY") and PKCS#1
// ("BEGIN RSA PRIVATE KEY") encodings.
func ParsePrivateKeyPEM(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, ErrMalformedKey
	}

	switch block.Type {
	case blockRSAPrivate:
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return priv, nil
	default:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrUnsupportedKeyType
		}
		return priv, nil
	}
}

// Fingerprint renders the lowercase-hex SHA-256 digest of pub's DER
// SubjectPublicKeyInfo encoding. This is the sole stable name of a key
// across the system (§4.2).
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

// ValidateKeySize reports whether pub's modulus meets [MinRSAModulusBits].
func ValidateKeySize(pub *rsa.PublicKey) bool {
	return pub.N.BitLen() >= MinRSAModulusBits
}
