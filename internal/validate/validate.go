// Package validate implements the pre-flight checks every build must pass
// before any cryptographic work runs (§4.6). It has no knowledge of key
// material or ciphertext; it only sees shapes and lengths.
package validate

import "fmt"

// Limits holds every hard cap from §4.6. Zero values are not valid; use
// [DefaultLimits] and override only what the caller needs to change.
type Limits struct {
	MaxKeychainEntries     int
	MaxPartyIDLen          int
	MaxActingFor           int
	MaxEncryptedSubjectLen int
	MaxEncryptedBodyLen    int
	MaxEncryptedStructLen  int
	MaxMetadataLabelLen    int
	MaxMetadataTags        int
	MaxMetadataTagLen      int
	MaxMetadataNotesLen    int
	MaxRelatedPackages     int
	MaxEncryptedFilenameLen int
	MaxSignaturePayloadLen int
	MaxFiles               int
	MaxFileSize            int64
	MaxTotalSize           int64
}

// DefaultLimits returns the limits table from §4.6 with the caller-tunable
// entries (files per capsa, per-file size, total size) set to their
// documented defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxKeychainEntries:      100,
		MaxPartyIDLen:           100,
		MaxActingFor:            10,
		MaxEncryptedSubjectLen:  65536,
		MaxEncryptedBodyLen:     1048576,
		MaxEncryptedStructLen:   1048576,
		MaxMetadataLabelLen:     512,
		MaxMetadataTags:         100,
		MaxMetadataTagLen:       100,
		MaxMetadataNotesLen:     10240,
		MaxRelatedPackages:      50,
		MaxEncryptedFilenameLen: 2048,
		MaxSignaturePayloadLen:  65536,
		MaxFiles:                100,
		MaxFileSize:             1 << 30,       // 1 GiB
		MaxTotalSize:            10 * (1 << 30), // 10 GiB
	}
}

// KeychainEntry is the shape validate needs from a would-be keychain entry.
type KeychainEntry struct {
	PartyID   string
	ActingFor []string
}

// File is the shape validate needs from a would-be file record.
type File struct {
	EncryptedFilenameLen int
	Size                 int64
}

// Metadata is the shape validate needs from the public metadata block.
type Metadata struct {
	Label           string
	Tags            []string
	Notes           string
	RelatedPackages []string
}

// Request describes everything a build is about to do, in terms of lengths
// and counts rather than actual ciphertext, so validation can run before
// any key material exists.
type Request struct {
	Keychain                []KeychainEntry
	Files                   []File
	HasSubject              bool
	HasBody                 bool
	EncryptedSubjectLen     int
	EncryptedBodyLen        int
	EncryptedStructuredLen  int
	Metadata                Metadata
	SignaturePayloadLen     int
}

// Error reports a single validation failure: the field that violated a
// limit, the limit itself, and a human-readable message. It never carries
// key material, plaintext, or ciphertext.
type Error struct {
	Field   string
	Limit   int64
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fieldErr(field string, limit int64, format string, args ...any) *Error {
	return &Error{Field: field, Limit: limit, Message: fmt.Sprintf(format, args...)}
}

// Validate checks req against limits and returns the first violation
// found, or nil if req is well-formed. Checks run in a fixed order so
// error output is deterministic.
func Validate(req Request, limits Limits) error {
	if len(req.Keychain) > limits.MaxKeychainEntries {
		return fieldErr("keychain", int64(limits.MaxKeychainEntries),
			"keychain has %d entries, exceeds limit of %d", len(req.Keychain), limits.MaxKeychainEntries)
	}
	for _, entry := range req.Keychain {
		if entry.PartyID == "" {
			return fieldErr("keychain.party", 0, "party id must not be empty")
		}
		if len(entry.PartyID) > limits.MaxPartyIDLen {
			return fieldErr("keychain.party", int64(limits.MaxPartyIDLen),
				"party id %q exceeds limit of %d characters", entry.PartyID, limits.MaxPartyIDLen)
		}
		if len(entry.ActingFor) > limits.MaxActingFor {
			return fieldErr("keychain.acting_for", int64(limits.MaxActingFor),
				"party %q has %d acting_for entries, exceeds limit of %d", entry.PartyID, len(entry.ActingFor), limits.MaxActingFor)
		}
	}

	if req.EncryptedSubjectLen > limits.MaxEncryptedSubjectLen {
		return fieldErr("encrypted_subject", int64(limits.MaxEncryptedSubjectLen),
			"encrypted subject length %d exceeds limit of %d base64url characters", req.EncryptedSubjectLen, limits.MaxEncryptedSubjectLen)
	}
	if req.EncryptedBodyLen > limits.MaxEncryptedBodyLen {
		return fieldErr("encrypted_body", int64(limits.MaxEncryptedBodyLen),
			"encrypted body length %d exceeds limit of %d base64url characters", req.EncryptedBodyLen, limits.MaxEncryptedBodyLen)
	}
	if req.EncryptedStructuredLen > limits.MaxEncryptedStructLen {
		return fieldErr("encrypted_structured", int64(limits.MaxEncryptedStructLen),
			"encrypted structured length %d exceeds limit of %d base64url characters", req.EncryptedStructuredLen, limits.MaxEncryptedStructLen)
	}

	if len(req.Metadata.Label) > limits.MaxMetadataLabelLen {
		return fieldErr("metadata.label", int64(limits.MaxMetadataLabelLen),
			"metadata label exceeds limit of %d characters", limits.MaxMetadataLabelLen)
	}
	if len(req.Metadata.Tags) > limits.MaxMetadataTags {
		return fieldErr("metadata.tags", int64(limits.MaxMetadataTags),
			"metadata has %d tags, exceeds limit of %d", len(req.Metadata.Tags), limits.MaxMetadataTags)
	}
	for _, tag := range req.Metadata.Tags {
		if len(tag) > limits.MaxMetadataTagLen {
			return fieldErr("metadata.tags", int64(limits.MaxMetadataTagLen),
				"metadata tag %q exceeds limit of %d characters", tag, limits.MaxMetadataTagLen)
		}
	}
	if len(req.Metadata.Notes) > limits.MaxMetadataNotesLen {
		return fieldErr("metadata.notes", int64(limits.MaxMetadataNotesLen),
			"metadata notes exceed limit of %d characters", limits.MaxMetadataNotesLen)
	}
	if len(req.Metadata.RelatedPackages) > limits.MaxRelatedPackages {
		return fieldErr("metadata.related_packages", int64(limits.MaxRelatedPackages),
			"metadata has %d related packages, exceeds limit of %d", len(req.Metadata.RelatedPackages), limits.MaxRelatedPackages)
	}

	if len(req.Files) > limits.MaxFiles {
		return fieldErr("files", int64(limits.MaxFiles),
			"capsa has %d files, exceeds limit of %d", len(req.Files), limits.MaxFiles)
	}

	var total int64
	for i, f := range req.Files {
		if f.EncryptedFilenameLen > limits.MaxEncryptedFilenameLen {
			return fieldErr("files.encrypted_filename", int64(limits.MaxEncryptedFilenameLen),
				"file %d encrypted filename length %d exceeds limit of %d base64url characters", i, f.EncryptedFilenameLen, limits.MaxEncryptedFilenameLen)
		}
		if f.Size > limits.MaxFileSize {
			return fieldErr("files.size", limits.MaxFileSize,
				"file %d size %d exceeds per-file limit of %d bytes", i, f.Size, limits.MaxFileSize)
		}
		total += f.Size
	}
	if total > limits.MaxTotalSize {
		return fieldErr("total_size", limits.MaxTotalSize,
			"total size %d exceeds limit of %d bytes", total, limits.MaxTotalSize)
	}

	if req.SignaturePayloadLen > limits.MaxSignaturePayloadLen {
		return fieldErr("signature.payload", int64(limits.MaxSignaturePayloadLen),
			"signature payload length %d exceeds limit of %d base64url characters", req.SignaturePayloadLen, limits.MaxSignaturePayloadLen)
	}

	if len(req.Files) == 0 && !req.HasSubject && !req.HasBody {
		return fieldErr("capsa", 0, "capsa has no files, no subject, and no body")
	}

	return nil
}
