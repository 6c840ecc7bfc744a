package capsa

import (
	"github.com/capsara/capsa-go/internal/crypto"
	"github.com/capsara/capsa-go/internal/model"
)

// Wire-shape types (§3, §6) are re-exported from internal/model so the
// public API and the collaborator interfaces in internal/collab share one
// definition with no import cycle. Serializing these to the network's JSON
// framing is out of scope for this module (§1) - callers own that encoding.
type (
	PartyKey      = model.PartyKey
	FileRecord    = model.FileRecord
	KeychainEntry = model.KeychainEntry
	Keychain      = model.Keychain
	Signature     = model.Signature
	AccessControl = model.AccessControl
	Metadata      = model.Metadata
	Status        = model.Status
	Capsa         = model.Capsa
	FilePayload   = model.FilePayload
	BuiltCapsa    = model.BuiltCapsa
)

const (
	StatusActive  = model.StatusActive
	StatusExpired = model.StatusExpired
	StatusDeleted = model.StatusDeleted
)

// GenerateKeypair generates a fresh RSA key pair and returns its SPKI
// public PEM, PKCS#8 private PEM, and fingerprint (§6). sizeBits must be at
// least 4096 bits; pass 0 to use the default.
func GenerateKeypair(sizeBits int) (publicPEM, privatePEM, fingerprint string, err error) {
	if sizeBits == 0 {
		sizeBits = crypto.MinRSAModulusBits
	}
	priv, err := crypto.GenerateKeyPair(sizeBits)
	if err != nil {
		return "", "", "", wrapCryptoError(err)
	}
	pubPEM, err := crypto.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return "", "", "", err
	}
	privPEM, err := crypto.EncodePrivateKeyPEM(priv)
	if err != nil {
		return "", "", "", err
	}
	fp, err := crypto.Fingerprint(&priv.PublicKey)
	if err != nil {
		return "", "", "", err
	}
	return pubPEM, privPEM, fp, nil
}

// Fingerprint returns the lowercase-hex SHA-256 fingerprint of a PEM-encoded
// public key (§4.2).
func Fingerprint(publicKeyPEM string) (string, error) {
	pub, err := crypto.ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return "", wrapCryptoError(err)
	}
	return crypto.Fingerprint(pub)
}
