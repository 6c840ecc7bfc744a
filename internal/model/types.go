// Package model defines the capsa wire data model (§3, §6) as plain
// structs with no behavior, so both the public capsa package and the
// internal collaborator interfaces (internal/collab) can depend on it
// without forming an import cycle.
package model

import "time"

// PartyKey is a recipient's public key entry as resolved from a party-key
// directory.
type PartyKey struct {
	PartyID      string   `json:"partyId"`
	PublicKeyPEM string   `json:"publicKeyPem"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
	ActingFor    []string `json:"actingFor,omitempty"`
}

// EncryptedField is one of the optional subject/body/structured triples,
// held as a group before it is flattened onto Capsa's nine scalar fields
// (§6). All three of Ciphertext, IV, and AuthTag are either present or the
// owning triple is entirely absent from the Capsa (§3 invariant).
type EncryptedField struct {
	Ciphertext string
	IV         string
	AuthTag    string
}

// FileRecord describes one encrypted file's metadata. The ciphertext bytes
// themselves travel out of band, in a BuiltCapsa's Files side channel or
// through a blob-download source on receive.
type FileRecord struct {
	FileID            string `json:"fileId"`
	EncryptedFilename string `json:"encryptedFilename"`
	FilenameIV        string `json:"filenameIV"`
	FilenameAuthTag   string `json:"filenameAuthTag"`
	IV                string `json:"iv"`
	AuthTag           string `json:"authTag"`
	Hash              string `json:"hash"`
	HashAlgorithm     string `json:"hashAlgorithm"`
	Size              uint64 `json:"size"`
	OriginalSize      uint64 `json:"originalSize,omitempty"`
	MimeType          string `json:"mimetype,omitempty"`
	Compressed        bool   `json:"compressed,omitempty"`
}

// KeychainEntry wraps the content key for one recipient, or - for a
// delegated recipient with no direct key - carries only the delegation.
type KeychainEntry struct {
	Party             string   `json:"party"`
	WrappedContentKey string   `json:"encryptedKey,omitempty"`
	IV                string   `json:"iv,omitempty"`
	ActingFor         []string `json:"acting_for,omitempty"`
}

// Keychain is the full set of per-recipient wrapped keys plus the wrap
// algorithm identifier.
type Keychain struct {
	Algorithm string          `json:"algorithm"`
	Keys      []KeychainEntry `json:"keys"`
}

// Signature is the detached JWS triple carried on a capsa.
type Signature struct {
	Algorithm string `json:"algorithm"`
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// AccessControl holds server-enforced policy the core never checks itself
// (the envelope, not the server, is the confidentiality boundary).
type AccessControl struct {
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Metadata is public, unencrypted information about a capsa.
type Metadata struct {
	Label           string   `json:"label,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	RelatedPackages []string `json:"related_packages,omitempty"`
}

// Status is the lifecycle state of a capsa as reported by the remote
// service; the core never sets or interprets this field itself.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusDeleted Status = "deleted"
)

// Capsa is the full wire record (§6). It is immutable once built. Signature
// covers only the fields that enter the canonical string (ID, the keychain
// algorithm, each file's hash, IV, filename IV and size, and the IVs of the
// optional triples); a change to any of those invalidates it, while a
// change to other fields, such as ciphertexts, keychain entries or
// metadata, does not.
//
// The subject/body/structured triples are nine flat scalar fields rather
// than nested objects, matching §6's wire shape exactly: within a triple,
// either all three fields are present or all three are empty.
type Capsa struct {
	ID                  string        `json:"id"`
	CreatorPartyID      string        `json:"creator"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
	Status              Status        `json:"status"`
	TotalSize           uint64        `json:"totalSize"`
	EncryptedSubject    string        `json:"encryptedSubject,omitempty"`
	SubjectIV           string        `json:"subjectIV,omitempty"`
	SubjectAuthTag      string        `json:"subjectAuthTag,omitempty"`
	EncryptedBody       string        `json:"encryptedBody,omitempty"`
	BodyIV              string        `json:"bodyIV,omitempty"`
	BodyAuthTag         string        `json:"bodyAuthTag,omitempty"`
	EncryptedStructured string        `json:"encryptedStructured,omitempty"`
	StructuredIV        string        `json:"structuredIV,omitempty"`
	StructuredAuthTag   string        `json:"structuredAuthTag,omitempty"`
	Files               []FileRecord  `json:"files"`
	Keychain            Keychain      `json:"keychain"`
	Signature           Signature     `json:"signature"`
	AccessControl       AccessControl `json:"accessControl"`
	Metadata            Metadata      `json:"metadata"`
}

// FilePayload pairs a file id with its encrypted bytes, the BuiltCapsa side
// channel the builder returns for a caller to hand to a blob-upload sink
// (§3, §6).
type FilePayload struct {
	FileID         string `json:"fileId"`
	EncryptedBytes []byte `json:"encryptedBytes"`
}

// BuiltCapsa is the output of the build pipeline: the signed Capsa record
// plus the opaque per-file ciphertext payloads. File bytes are never
// embedded in Capsa itself.
type BuiltCapsa struct {
	Capsa Capsa
	Files []FilePayload
}
