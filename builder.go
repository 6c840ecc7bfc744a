package capsa

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/capsara/capsa-go/internal/canonical"
	"github.com/capsara/capsa-go/internal/collab"
	"github.com/capsara/capsa-go/internal/crypto"
	"github.com/capsara/capsa-go/internal/model"
	"github.com/capsara/capsa-go/internal/validate"
)

// defaultCompressionThreshold is the minimum plaintext length (§Glossary,
// "Compression policy") below which gzip is never attempted.
const defaultCompressionThreshold = 150

// File is one plaintext file handed to [Build]. Everything else on the
// resulting [FileRecord] - hash, IVs, tags, sizes - is produced by the
// pipeline.
type File struct {
	Filename string
	MimeType string
	Data     []byte
}

// Payload is the plaintext content of a capsa before it is built.
type Payload struct {
	Files      []File
	Subject    *string
	Body       *string
	Structured any
	ExpiresAt  *time.Time
	Metadata   Metadata
}

// BuildInput is everything [Build] needs to produce a [BuiltCapsa].
type BuildInput struct {
	CreatorPartyID       string
	CreatorPrivateKeyPEM string
	Payload              Payload
	Recipients           []string
	Directory            collab.PartyDirectory
}

type buildConfig struct {
	limits               validate.Limits
	cache                *crypto.KeyCache
	compressionThreshold int
}

// BuildOption tunes a single [Build] call.
type BuildOption func(*buildConfig)

// WithValidatorLimits overrides the default §4.6 limits table for this
// build.
func WithValidatorLimits(limits validate.Limits) BuildOption {
	return func(c *buildConfig) { c.limits = limits }
}

// WithKeyCache supplies a shared fingerprint-keyed public key cache so
// repeated builds against the same recipients avoid re-parsing PEM.
func WithKeyCache(cache *crypto.KeyCache) BuildOption {
	return func(c *buildConfig) { c.cache = cache }
}

// WithCompressionThreshold overrides the minimum plaintext length at which
// gzip is attempted. The default is 150 bytes.
func WithCompressionThreshold(minBytes int) BuildOption {
	return func(c *buildConfig) { c.compressionThreshold = minBytes }
}

func newBuildConfig(opts []BuildOption) buildConfig {
	cfg := buildConfig{limits: validate.DefaultLimits(), compressionThreshold: defaultCompressionThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Build runs the full send-side pipeline (§4.4): pre-flight validation,
// content key generation, per-field and per-file AEAD encryption, recipient
// key wrapping (including delegation), canonicalization, and signing. The
// content key is generated, used, and zeroized entirely within this call;
// it never appears in the returned [BuiltCapsa].
func Build(ctx context.Context, in BuildInput, opts ...BuildOption) (*BuiltCapsa, error) {
	cfg := newBuildConfig(opts)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	creatorPriv, err := crypto.ParsePrivateKeyPEM(in.CreatorPrivateKeyPEM)
	if err != nil {
		return nil, wrapCryptoError(err)
	}

	if err := preflight(in, cfg.limits); err != nil {
		return nil, wrapValidationError(err)
	}

	contentKey, err := crypto.GenerateContentKey()
	if err != nil {
		return nil, err
	}
	keyBuf := crypto.NewSecretBuffer(contentKey)
	defer keyBuf.ClearDeferred()()

	packageID, err := crypto.PackageID()
	if err != nil {
		return nil, err
	}

	drawNonce := newNonceDrawer()

	encryptField := func(plaintext []byte) (*model.EncryptedField, error) {
		nonce, nonceB64, err := drawNonce()
		if err != nil {
			return nil, err
		}
		ciphertext, tag, err := crypto.Seal(contentKey, nonce, plaintext)
		if err != nil {
			return nil, err
		}
		return &model.EncryptedField{
			Ciphertext: crypto.ToBase64URL(ciphertext),
			IV:         nonceB64,
			AuthTag:    crypto.ToBase64URL(tag),
		}, nil
	}

	var encryptedSubject, encryptedBody, encryptedStructured *model.EncryptedField
	if in.Payload.Subject != nil {
		if encryptedSubject, err = encryptField([]byte(*in.Payload.Subject)); err != nil {
			return nil, err
		}
	}
	if in.Payload.Body != nil {
		if encryptedBody, err = encryptField([]byte(*in.Payload.Body)); err != nil {
			return nil, err
		}
	}
	if in.Payload.Structured != nil {
		structBytes, err := json.Marshal(in.Payload.Structured)
		if err != nil {
			return nil, fmt.Errorf("marshal structured field: %w", err)
		}
		if encryptedStructured, err = encryptField(structBytes); err != nil {
			return nil, err
		}
	}

	files, payloads, totalSize, err := encryptFiles(ctx, in.Payload.Files, contentKey, cfg.compressionThreshold, drawNonce)
	if err != nil {
		return nil, err
	}

	keychain, err := buildKeychain(ctx, in, creatorPriv, contentKey, cfg.cache)
	if err != nil {
		return nil, err
	}

	canonIn := canonicalInput(packageID, keychain.Algorithm, totalSize, files, encryptedStructured, encryptedSubject, encryptedBody)
	jws, err := canonical.Sign(canonIn, creatorPriv)
	if err != nil {
		return nil, err
	}
	if len(jws.Payload) > cfg.limits.MaxSignaturePayloadLen {
		return nil, wrapValidationError(&validate.Error{
			Field:   "signature.payload",
			Limit:   int64(cfg.limits.MaxSignaturePayloadLen),
			Message: fmt.Sprintf("signature payload length %d exceeds limit of %d", len(jws.Payload), cfg.limits.MaxSignaturePayloadLen),
		})
	}

	now := time.Now().UTC()
	record := model.Capsa{
		ID:             packageID,
		CreatorPartyID: in.CreatorPartyID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         model.StatusActive,
		TotalSize:      totalSize,
		Files:          files,
		Keychain:       keychain,
		Signature: model.Signature{
			Algorithm: "RS256",
			Protected: jws.Protected,
			Payload:   jws.Payload,
			Signature: jws.Signature,
		},
		Metadata: in.Payload.Metadata,
	}
	if encryptedSubject != nil {
		record.EncryptedSubject = encryptedSubject.Ciphertext
		record.SubjectIV = encryptedSubject.IV
		record.SubjectAuthTag = encryptedSubject.AuthTag
	}
	if encryptedBody != nil {
		record.EncryptedBody = encryptedBody.Ciphertext
		record.BodyIV = encryptedBody.IV
		record.BodyAuthTag = encryptedBody.AuthTag
	}
	if encryptedStructured != nil {
		record.EncryptedStructured = encryptedStructured.Ciphertext
		record.StructuredIV = encryptedStructured.IV
		record.StructuredAuthTag = encryptedStructured.AuthTag
	}
	if in.Payload.ExpiresAt != nil {
		record.AccessControl.ExpiresAt = in.Payload.ExpiresAt
	}

	return &model.BuiltCapsa{Capsa: record, Files: payloads}, nil
}

// newNonceDrawer returns a closure that draws fresh 12-byte nonces,
// re-drawing on the vanishingly unlikely event of a collision so that no
// two AEAD operations under this build's content key ever share one (§5).
func newNonceDrawer() func() ([]byte, string, error) {
	used := make(map[string]struct{})
	return func() ([]byte, string, error) {
		for {
			nonce, err := crypto.GenerateNonce()
			if err != nil {
				return nil, "", err
			}
			b64 := crypto.ToBase64URL(nonce)
			if _, seen := used[b64]; seen {
				continue
			}
			used[b64] = struct{}{}
			return nonce, b64, nil
		}
	}
}

func encryptFiles(ctx context.Context, files []File, contentKey []byte, compressionThreshold int, drawNonce func() ([]byte, string, error)) ([]model.FileRecord, []model.FilePayload, uint64, error) {
	records := make([]model.FileRecord, 0, len(files))
	payloads := make([]model.FilePayload, 0, len(files))
	var totalSize uint64

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}

		hash := crypto.HashHex(f.Data)

		plaintext := f.Data
		compressed := false
		if len(plaintext) >= compressionThreshold {
			if gz, ok := tryGzip(plaintext); ok {
				plaintext = gz
				compressed = true
			}
		}

		nonce, nonceB64, err := drawNonce()
		if err != nil {
			return nil, nil, 0, err
		}
		ciphertext, tag, err := crypto.Seal(contentKey, nonce, plaintext)
		if err != nil {
			return nil, nil, 0, err
		}

		fnNonce, fnNonceB64, err := drawNonce()
		if err != nil {
			return nil, nil, 0, err
		}
		fnCiphertext, fnTag, err := crypto.Seal(contentKey, fnNonce, []byte(f.Filename))
		if err != nil {
			return nil, nil, 0, err
		}

		fileID, err := crypto.Nanoid()
		if err != nil {
			return nil, nil, 0, err
		}

		size := uint64(len(ciphertext))
		totalSize += size

		records = append(records, model.FileRecord{
			FileID:            fileID,
			EncryptedFilename: crypto.ToBase64URL(fnCiphertext),
			FilenameIV:        fnNonceB64,
			FilenameAuthTag:   crypto.ToBase64URL(fnTag),
			IV:                nonceB64,
			AuthTag:           crypto.ToBase64URL(tag),
			Hash:              hash,
			HashAlgorithm:     "SHA-256",
			Size:              size,
			OriginalSize:      uint64(len(f.Data)),
			MimeType:          f.MimeType,
			Compressed:        compressed,
		})
		payloads = append(payloads, model.FilePayload{FileID: fileID, EncryptedBytes: ciphertext})
	}

	return records, payloads, totalSize, nil
}

// tryGzip gzips data and reports whether the result is strictly smaller,
// per the compression policy in the glossary.
func tryGzip(data []byte) ([]byte, bool) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}
	if buf.Len() >= len(data) {
		return nil, false
	}
	return buf.Bytes(), true
}

// buildKeychain wraps the content key for the creator and every resolvable
// recipient (§4.4 step 6), including delegated recipients that resolve to
// a keyless stub entry.
func buildKeychain(ctx context.Context, in BuildInput, creatorPriv *rsa.PrivateKey, contentKey []byte, cache *crypto.KeyCache) (model.Keychain, error) {
	entries := make([]model.KeychainEntry, 0, len(in.Recipients)+1)
	seen := make(map[string]struct{})

	addDirect := func(partyID string, pub *rsa.PublicKey, actingFor []string) error {
		if !crypto.ValidateKeySize(pub) {
			return wrapCryptoError(crypto.ErrKeyTooSmall)
		}
		wrapped, err := crypto.Wrap(contentKey, pub)
		if err != nil {
			return err
		}
		entries = append(entries, model.KeychainEntry{
			Party:             partyID,
			WrappedContentKey: crypto.ToBase64URL(wrapped),
			ActingFor:         actingFor,
		})
		seen[partyID] = struct{}{}
		return nil
	}

	if err := addDirect(in.CreatorPartyID, &creatorPriv.PublicKey, nil); err != nil {
		return model.Keychain{}, err
	}

	resolved, err := in.Directory.Resolve(ctx, in.Recipients)
	if err != nil {
		return model.Keychain{}, newError(KindCollaboratorFailure, "party directory resolve failed", err)
	}

	for _, party := range resolved {
		if _, dup := seen[party.PartyID]; dup {
			continue
		}
		if party.PublicKeyPEM == "" {
			entries = append(entries, model.KeychainEntry{Party: party.PartyID, ActingFor: party.ActingFor})
			seen[party.PartyID] = struct{}{}
			continue
		}

		pub, err := resolvePublicKey(party, cache)
		if err != nil {
			return model.Keychain{}, err
		}
		if err := addDirect(party.PartyID, pub, party.ActingFor); err != nil {
			return model.Keychain{}, err
		}
	}

	return model.Keychain{Algorithm: crypto.AlgorithmRSAOAEP, Keys: entries}, nil
}

func resolvePublicKey(party model.PartyKey, cache *crypto.KeyCache) (*rsa.PublicKey, error) {
	if cache != nil && party.Fingerprint != "" {
		if pub, ok := cache.Get(party.Fingerprint); ok {
			return pub, nil
		}
	}

	pub, err := crypto.ParsePublicKeyPEM(party.PublicKeyPEM)
	if err != nil {
		return nil, wrapCryptoError(err)
	}

	if cache != nil {
		fp := party.Fingerprint
		if fp == "" {
			if fp, err = crypto.Fingerprint(pub); err != nil {
				return pub, nil
			}
		}
		cache.Put(fp, pub)
	}
	return pub, nil
}

// canonicalInput projects the fields of a capsa record into the shape
// internal/canonical needs to build or verify its signature.
func canonicalInput(packageID, algorithm string, totalSize uint64, files []model.FileRecord, structured, subject, body *model.EncryptedField) canonical.Input {
	fileFields := make([]canonical.FileFields, len(files))
	for i, f := range files {
		fileFields[i] = canonical.FileFields{Hash: f.Hash, IV: f.IV, FilenameIV: f.FilenameIV}
	}

	in := canonical.Input{
		PackageID: packageID,
		Algorithm: algorithm,
		TotalSize: totalSize,
		Files:     fileFields,
	}
	if structured != nil {
		in.StructuredIV = structured.IV
	}
	if subject != nil {
		in.SubjectIV = subject.IV
	}
	if body != nil {
		in.BodyIV = body.IV
	}
	return in
}

// preflight runs the §4.6 validator before any cryptography. Ciphertext
// length equals plaintext length for AES-GCM (no padding), so every size
// limit can be checked against plaintext lengths without first encrypting
// anything; the base64url expansion is computed the same way
// [crypto.ToBase64URL] would report it.
func preflight(in BuildInput, limits validate.Limits) error {
	req := validate.Request{
		HasSubject: in.Payload.Subject != nil,
		HasBody:    in.Payload.Body != nil,
		Metadata: validate.Metadata{
			Label:           in.Payload.Metadata.Label,
			Tags:            in.Payload.Metadata.Tags,
			Notes:           in.Payload.Metadata.Notes,
			RelatedPackages: in.Payload.Metadata.RelatedPackages,
		},
		// The final keychain depends on directory resolution, which has
		// not happened yet; only the always-present creator entry is
		// checked here.
		Keychain: []validate.KeychainEntry{{PartyID: in.CreatorPartyID}},
	}

	if in.Payload.Subject != nil {
		req.EncryptedSubjectLen = base64Len(len(*in.Payload.Subject))
	}
	if in.Payload.Body != nil {
		req.EncryptedBodyLen = base64Len(len(*in.Payload.Body))
	}
	if in.Payload.Structured != nil {
		structBytes, err := json.Marshal(in.Payload.Structured)
		if err != nil {
			return err
		}
		req.EncryptedStructuredLen = base64Len(len(structBytes))
	}

	req.Files = make([]validate.File, len(in.Payload.Files))
	for i, f := range in.Payload.Files {
		req.Files[i] = validate.File{
			EncryptedFilenameLen: base64Len(len(f.Filename)),
			Size:                 int64(len(f.Data)),
		}
	}

	return validate.Validate(req, limits)
}

// base64Len reports the length of the unpadded base64url encoding of n
// bytes, matching what crypto.ToBase64URL would produce.
func base64Len(n int) int {
	return (n*8 + 5) / 6
}
