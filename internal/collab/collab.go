// Package collab defines the contracts for the external collaborators the
// core consumes but does not implement (§6): a party-key directory, blob
// upload/download, an audit log, a system-limits source, and the caller's
// own identity. Everything here is out of core scope per §1 - the core
// talks to these only through the interfaces below.
package collab

import (
	"context"

	"github.com/capsara/capsa-go/internal/model"
)

// PartyDirectory resolves party ids to their public key entries. It may
// return fewer entries than requested, and may return delegate entries
// whose ActingFor covers a requested id instead of a direct entry.
type PartyDirectory interface {
	Resolve(ctx context.Context, partyIDs []string) ([]model.PartyKey, error)
}

// BlobSink receives a built capsa's encrypted file payloads after
// assembly. The core never uploads anything itself; it only produces the
// (file id, ciphertext) pairs a sink consumes.
type BlobSink interface {
	Put(ctx context.Context, capsaID string, payload model.FilePayload) error
}

// BlobSource fetches a single file's ciphertext by capsa and file id, for
// the receive side's per-file decrypt step.
type BlobSource interface {
	Get(ctx context.Context, capsaID, fileID string) ([]byte, error)
}

// AuditLog is an opaque side channel for recording build/decrypt events.
// The core never inspects what happens to a logged event.
type AuditLog interface {
	Record(ctx context.Context, event string, fields map[string]string)
}

// LimitsSource supplies a system-limits snapshot a builder may consult
// when no caller-supplied limits override is given. A collaborator
// implementation is free to swallow fetch failures and fall back to a
// cached snapshot; that best-effort policy lives entirely outside the core
// (§9).
type LimitsSource interface {
	Snapshot(ctx context.Context) (MaxFiles int, MaxFileSize, MaxTotalSize int64, err error)
}

// IdentityHolder supplies the caller's own party id and private key PEM,
// keeping key material out of the builder/decryptor construction call
// itself.
type IdentityHolder interface {
	PartyID() string
	PrivateKeyPEM() string
}
