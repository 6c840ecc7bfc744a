package capsa

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"

	"github.com/capsara/capsa-go/internal/canonical"
	"github.com/capsara/capsa-go/internal/crypto"
	"github.com/capsara/capsa-go/internal/model"
)

type decryptConfig struct {
	skipVerify       bool
	partyID          string
	creatorPublicPEM string
}

// DecryptOption tunes a single [VerifyAndUnwrap] call.
type DecryptOption func(*decryptConfig)

// WithPartyID tells the decryptor which keychain entry to select. Omit it
// only for single-recipient capsas, where the first keychain entry is used
// (§4.5 step 2).
func WithPartyID(partyID string) DecryptOption {
	return func(c *decryptConfig) { c.partyID = partyID }
}

// WithExpectedCreatorKey supplies the creator's public key PEM that the
// capsa's signature must verify against.
func WithExpectedCreatorKey(pem string) DecryptOption {
	return func(c *decryptConfig) { c.creatorPublicPEM = pem }
}

// WithSkipVerify disables signature verification. Valid only when no
// expected creator key is supplied either; combined with
// [WithExpectedCreatorKey] it makes [VerifyAndUnwrap] fail with a
// [KindValidation] error. The caller must have established trust in the
// capsa out of band (§4.5 step 1).
func WithSkipVerify() DecryptOption {
	return func(c *decryptConfig) { c.skipVerify = true }
}

// DecryptedCapsa exposes a capsa's decrypted fields and its unwrapped
// content key. The key lives behind a [crypto.SecretBuffer] and is wiped on
// [DecryptedCapsa.Clear] or scope exit via [DecryptedCapsa.ClearDeferred].
type DecryptedCapsa struct {
	Capsa      Capsa
	Subject    *string
	Body       *string
	Structured json.RawMessage

	contentKey *crypto.SecretBuffer
}

// ContentKey returns the raw 32-byte content key, or a [KindUseAfterClear]
// error if Clear has already run.
func (d *DecryptedCapsa) ContentKey() ([]byte, error) {
	key, err := d.contentKey.Bytes()
	if err != nil {
		return nil, newError(KindUseAfterClear, "content key already cleared", err)
	}
	return key, nil
}

// Clear zeroizes the content key. Idempotent.
func (d *DecryptedCapsa) Clear() { d.contentKey.Clear() }

// ClearDeferred returns a function suitable for
// `defer decrypted.ClearDeferred()()`.
func (d *DecryptedCapsa) ClearDeferred() func() { return d.Clear }

// DecryptFile decrypts the ciphertext for one of this capsa's file
// records using the already-unwrapped content key.
func (d *DecryptedCapsa) DecryptFile(rec FileRecord, ciphertext []byte) ([]byte, error) {
	key, err := d.ContentKey()
	if err != nil {
		return nil, err
	}
	iv, err := crypto.FromBase64URL(rec.IV)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrAuthFailed)
	}
	tag, err := crypto.FromBase64URL(rec.AuthTag)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrAuthFailed)
	}
	return DecryptFile(ciphertext, key, iv, tag, rec.Compressed)
}

// DecryptFilename decrypts one of this capsa's file records' encrypted
// filename using the already-unwrapped content key.
func (d *DecryptedCapsa) DecryptFilename(rec FileRecord) (string, error) {
	key, err := d.ContentKey()
	if err != nil {
		return "", err
	}
	iv, err := crypto.FromBase64URL(rec.FilenameIV)
	if err != nil {
		return "", wrapCryptoError(crypto.ErrAuthFailed)
	}
	tag, err := crypto.FromBase64URL(rec.FilenameAuthTag)
	if err != nil {
		return "", wrapCryptoError(crypto.ErrAuthFailed)
	}
	return DecryptFilename(rec.EncryptedFilename, key, iv, tag)
}

// VerifyAndUnwrap runs the receive-side pipeline (§4.5): verifies the
// capsa's signature (unless skipped), selects the caller's keychain entry,
// unwraps the content key, and decrypts the optional subject/body/
// structured fields.
func VerifyAndUnwrap(ctx context.Context, record Capsa, recipientPrivateKeyPEM string, opts ...DecryptOption) (*DecryptedCapsa, error) {
	var cfg decryptConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.skipVerify {
		if cfg.creatorPublicPEM != "" {
			return nil, newError(KindValidation, "signature verification can be skipped only when no expected creator public key is supplied", nil)
		}
	} else {
		if cfg.creatorPublicPEM == "" {
			return nil, newError(KindValidation, "verification requires an expected creator public key unless explicitly skipped", nil)
		}
		if err := verifySignature(record, cfg.creatorPublicPEM); err != nil {
			return nil, err
		}
	}

	entry, err := selectKeychainEntry(record.Keychain.Keys, cfg.partyID)
	if err != nil {
		return nil, err
	}
	if entry.WrappedContentKey == "" {
		return nil, ErrDelegatedNoAccess
	}

	priv, err := crypto.ParsePrivateKeyPEM(recipientPrivateKeyPEM)
	if err != nil {
		return nil, wrapCryptoError(err)
	}

	wrapped, err := crypto.FromBase64URL(entry.WrappedContentKey)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrUnwrapFailed)
	}
	contentKey, err := crypto.Unwrap(wrapped, priv)
	if err != nil {
		return nil, wrapCryptoError(err)
	}

	keyBuf := crypto.NewSecretBuffer(contentKey)
	decrypted := &DecryptedCapsa{Capsa: record, contentKey: keyBuf}

	if record.EncryptedSubject != "" {
		subj, err := decryptFieldTriple(record.EncryptedSubject, record.SubjectIV, record.SubjectAuthTag, contentKey)
		if err != nil {
			keyBuf.Clear()
			return nil, err
		}
		s := string(subj)
		decrypted.Subject = &s
	}
	if record.EncryptedBody != "" {
		body, err := decryptFieldTriple(record.EncryptedBody, record.BodyIV, record.BodyAuthTag, contentKey)
		if err != nil {
			keyBuf.Clear()
			return nil, err
		}
		b := string(body)
		decrypted.Body = &b
	}
	if record.EncryptedStructured != "" {
		structBytes, err := decryptFieldTriple(record.EncryptedStructured, record.StructuredIV, record.StructuredAuthTag, contentKey)
		if err != nil {
			keyBuf.Clear()
			return nil, err
		}
		if !json.Valid(structBytes) {
			keyBuf.Clear()
			return nil, newError(KindValidation, "structured field is not valid JSON", nil)
		}
		decrypted.Structured = json.RawMessage(structBytes)
	}

	return decrypted, nil
}

func decryptFieldTriple(ciphertextB64, ivB64, authTagB64 string, contentKey []byte) ([]byte, error) {
	ciphertext, err := crypto.FromBase64URL(ciphertextB64)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrAuthFailed)
	}
	nonce, err := crypto.FromBase64URL(ivB64)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrAuthFailed)
	}
	tag, err := crypto.FromBase64URL(authTagB64)
	if err != nil {
		return nil, wrapCryptoError(crypto.ErrAuthFailed)
	}
	plaintext, err := crypto.Open(contentKey, nonce, ciphertext, tag)
	if err != nil {
		return nil, wrapCryptoError(err)
	}
	return plaintext, nil
}

// selectKeychainEntry implements §4.5 step 2: an exact party match wins,
// then a delegation match, then NotARecipient. With no partyID the first
// entry is used, the compatibility path for single-recipient capsas.
func selectKeychainEntry(entries []model.KeychainEntry, partyID string) (model.KeychainEntry, error) {
	if partyID == "" {
		if len(entries) == 0 {
			return model.KeychainEntry{}, ErrNotARecipient
		}
		return entries[0], nil
	}

	for _, e := range entries {
		if e.Party == partyID {
			return e, nil
		}
	}
	for _, e := range entries {
		for _, delegate := range e.ActingFor {
			if delegate == partyID {
				return e, nil
			}
		}
	}
	return model.KeychainEntry{}, ErrNotARecipient
}

// encryptedFieldOf regroups one of the flat subject/body/structured triples
// back into the model.EncryptedField shape canonicalInput expects. An empty
// ciphertext means the triple is absent from the record.
func encryptedFieldOf(ciphertext, iv, authTag string) *model.EncryptedField {
	if ciphertext == "" {
		return nil
	}
	return &model.EncryptedField{Ciphertext: ciphertext, IV: iv, AuthTag: authTag}
}

// verifySignature re-canonicalizes the record and checks its signature.
// total_size is recomputed from the file records rather than trusted from
// the received field (§9 open question: the safer of the two documented
// choices), so a tampered total_size cannot be smuggled past verification.
func verifySignature(record Capsa, creatorPublicPEM string) error {
	if record.Signature.Signature == "" {
		return ErrSignatureInvalid
	}
	sigBytes, err := crypto.FromBase64URL(record.Signature.Signature)
	if err != nil || len(sigBytes) != crypto.SignatureSize {
		return ErrSignatureInvalid
	}

	pub, err := crypto.ParsePublicKeyPEM(creatorPublicPEM)
	if err != nil {
		return wrapCryptoError(err)
	}

	var totalSize uint64
	for _, f := range record.Files {
		totalSize += f.Size
	}

	in := canonicalInput(record.ID, record.Keychain.Algorithm, totalSize, record.Files,
		encryptedFieldOf(record.EncryptedStructured, record.StructuredIV, record.StructuredAuthTag),
		encryptedFieldOf(record.EncryptedSubject, record.SubjectIV, record.SubjectAuthTag),
		encryptedFieldOf(record.EncryptedBody, record.BodyIV, record.BodyAuthTag))

	if err := canonical.Verify(in, canonical.JWS{
		Protected: record.Signature.Protected,
		Payload:   record.Signature.Payload,
		Signature: record.Signature.Signature,
	}, pub); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// DecryptFile decrypts one file's ciphertext against an already-unwrapped
// content key (§4.5 "per-file decrypt"). A missing or empty tag is treated
// as tampering and rejected without attempting decryption.
func DecryptFile(ciphertext, contentKey, iv, tag []byte, compressed bool) ([]byte, error) {
	if len(tag) == 0 {
		return nil, ErrAuthTagRequired
	}
	plaintext, err := crypto.Open(contentKey, iv, ciphertext, tag)
	if err != nil {
		return nil, wrapCryptoError(err)
	}
	if !compressed {
		return plaintext, nil
	}
	return gunzip(plaintext)
}

// DecryptFilename decrypts a base64url-encoded encrypted filename against
// an already-unwrapped content key.
func DecryptFilename(encryptedFilenameB64 string, contentKey, iv, tag []byte) (string, error) {
	if len(tag) == 0 {
		return "", ErrAuthTagRequired
	}
	ciphertext, err := crypto.FromBase64URL(encryptedFilenameB64)
	if err != nil {
		return "", wrapCryptoError(crypto.ErrAuthFailed)
	}
	plaintext, err := crypto.Open(contentKey, iv, ciphertext, tag)
	if err != nil {
		return "", wrapCryptoError(err)
	}
	return string(plaintext), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
