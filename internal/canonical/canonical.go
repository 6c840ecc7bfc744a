// Package canonical implements the one piece of this module that must be
// byte-identical across every implementation of the capsa format: the
// deterministic serialization of a capsa's signable fields, and the
// detached RS256 signature built over it.
package canonical

import (
	"crypto/rsa"
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/capsara/capsa-go/internal/crypto"
)

// FileFields carries the three per-file values that participate in the
// canonical string, in capsa file order.
type FileFields struct {
	Hash       string
	IV         string
	FilenameIV string
}

// Input is everything the canonicalizer needs to build C(P). Optional
// trailing IVs (StructuredIV, SubjectIV, BodyIV) are omitted from the
// canonical string when empty.
type Input struct {
	PackageID    string
	Algorithm    string
	TotalSize    uint64
	Files        []FileFields
	StructuredIV string
	SubjectIV    string
	BodyIV       string
}

// version is the fixed canonical format version literal.
const version = "1.0.0"

const sep = "|"

// BuildString renders the canonical string C(P) per §4.3: package id,
// version, total size, algorithm, then - only if there is at least one
// file - every file's hash, then every file's content IV, then every
// file's filename IV, all in insertion order (never sorted), followed by
// any present optional trailing IVs in the fixed order
// structured/subject/body.
func BuildString(in Input) string {
	parts := make([]string, 0, 4+3*len(in.Files)+3)
	parts = append(parts,
		in.PackageID,
		version,
		strconv.FormatUint(in.TotalSize, 10),
		in.Algorithm,
	)

	if len(in.Files) > 0 {
		for _, f := range in.Files {
			parts = append(parts, f.Hash)
		}
		for _, f := range in.Files {
			parts = append(parts, f.IV)
		}
		for _, f := range in.Files {
			parts = append(parts, f.FilenameIV)
		}
	}

	for _, iv := range []string{in.StructuredIV, in.SubjectIV, in.BodyIV} {
		if iv != "" {
			parts = append(parts, iv)
		}
	}

	return strings.Join(parts, sep)
}

// JWS is the detached-signature triple embedded in a capsa record.
type JWS struct {
	Protected string
	Payload   string
	Signature string
}

// Sign builds the canonical string for in, wraps it in the fixed JWS
// protected header, and signs protected+"."+payload with priv. The
// returned JWS carries all three base64url-encoded components ready for
// the wire.
func Sign(in Input, priv *rsa.PrivateKey) (JWS, error) {
	protected := crypto.ToBase64URL([]byte(crypto.JWSHeader))
	payload := crypto.ToBase64URL([]byte(BuildString(in)))

	sig, err := crypto.Sign(protected+"."+payload, priv)
	if err != nil {
		return JWS{}, err
	}

	return JWS{
		Protected: protected,
		Payload:   payload,
		Signature: crypto.ToBase64URL(sig),
	}, nil
}

// Verify reconstructs the expected payload from in, constant-time-compares
// it against the carried jws.Payload, then verifies the RS256 signature
// over jws.Protected+"."+jws.Payload with pub.
//
// A payload mismatch is just as much a verification failure as a bad RSA
// signature: both mean the record does not say what it was signed to say.
func Verify(in Input, jws JWS, pub *rsa.PublicKey) error {
	expectedPayload := crypto.ToBase64URL([]byte(BuildString(in)))

	if subtle.ConstantTimeCompare([]byte(expectedPayload), []byte(jws.Payload)) != 1 {
		return crypto.ErrSignatureInvalid
	}

	sig, err := crypto.FromBase64URL(jws.Signature)
	if err != nil {
		return crypto.ErrSignatureInvalid
	}
	if len(sig) != crypto.SignatureSize {
		return crypto.ErrSignatureInvalid
	}

	return crypto.Verify(jws.Protected+"."+jws.Payload, sig, pub)
}
