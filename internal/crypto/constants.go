package crypto

const (
	// AESKeySize is the size of a content key (AES-256) in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// MinRSAModulusBits is the minimum accepted RSA modulus size.
	MinRSAModulusBits = 4096
	// WrappedKeySize is the size of an RSA-4096-OAEP ciphertext in bytes.
	WrappedKeySize = MinRSAModulusBits / 8
	// SignatureSize is the size of an RSA-4096 PKCS1v1.5 signature in bytes.
	SignatureSize = MinRSAModulusBits / 8

	// FingerprintHexLen is the length of a hex-rendered SHA-256 fingerprint.
	FingerprintHexLen = 64
)

// JWSHeader is the fixed, whitespace-free protected header used for every
// capsa signature. Interop depends on this exact byte sequence.
const JWSHeader = `{"alg":"RS256","typ":"JWT"}`

// AlgorithmRSAOAEP is the keychain algorithm identifier produced by this
// implementation's builder.
const AlgorithmRSAOAEP = "RSA-OAEP-SHA256"
