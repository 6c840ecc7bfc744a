// Package crypto provides the cryptographic primitives used to build and
// open a capsa envelope. It implements authenticated encryption, RSA key
// wrapping, detached RS256 signatures, and key fingerprinting using only
// standard, vetted algorithms.
//
// # Algorithm Suite
//
//   - AES-256-GCM: authenticated encryption for every field and file.
//   - RSA-OAEP-SHA256 (4096-bit modulus): wraps the per-capsa content key
//     for each recipient.
//   - RSA-PKCS1v1.5-SHA256 (RS256): signs the canonical representation of
//     a capsa.
//   - SHA-256: file hashing and key fingerprinting.
//
// # Critical Security Notes
//
// Signature verification MUST happen before any field or file is decrypted.
// AES-GCM nonces MUST be unique for every encryption performed under the same
// content key; see newNonceDrawer in the root capsa package (builder.go) for
// the allocation scheme that guarantees this across a whole capsa.
//
// # Key Management
//
// Use [GenerateKeyPair] to create a new RSA-4096 key pair. [Fingerprint]
// derives a stable, public identity for a key from the SHA-256 hash of its
// DER-encoded SubjectPublicKeyInfo.
//
// Secret keys and content keys must never be logged. Callers that receive a
// [SecretBuffer] must call Clear, directly or through a deferred
// ClearDeferred, so the underlying bytes are wiped; a buffer that merely
// goes out of scope is not wiped.
package crypto
