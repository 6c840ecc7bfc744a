package collab

import (
	"context"

	"github.com/capsara/capsa-go/internal/model"
)

// MemoryDirectory is an in-memory [PartyDirectory], useful for tests and
// the capsactl command where no real backend is available. It is not
// meant for production use.
type MemoryDirectory struct {
	parties map[string]model.PartyKey
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{parties: make(map[string]model.PartyKey)}
}

// Add registers a party key under its own id and, if present, makes it the
// resolution target for every id in its ActingFor list.
func (d *MemoryDirectory) Add(key model.PartyKey) {
	d.parties[key.PartyID] = key
}

// Resolve looks up each requested id directly, then falls back to scanning
// for a party whose ActingFor covers it. A direct hit is returned as-is; a
// delegation hit is returned as a keyless stub named after the requested
// id itself, carrying the delegating party's id in ActingFor - the
// builder turns a keyless PartyKey into a keychain entry with an empty
// wrapped key (§4.4 step 6). Unknown ids are simply omitted from the
// result, matching the "may return fewer than requested" contract in §6.
func (d *MemoryDirectory) Resolve(_ context.Context, partyIDs []string) ([]model.PartyKey, error) {
	var out []model.PartyKey
	for _, id := range partyIDs {
		if key, ok := d.parties[id]; ok {
			out = append(out, key)
			continue
		}
		for _, candidate := range d.parties {
			for _, delegated := range candidate.ActingFor {
				if delegated == id {
					out = append(out, model.PartyKey{
						PartyID:   id,
						ActingFor: []string{candidate.PartyID},
					})
				}
			}
		}
	}
	return out, nil
}

// StaticIdentity is a fixed [IdentityHolder].
type StaticIdentity struct {
	partyID       string
	privateKeyPEM string
}

// NewStaticIdentity returns an IdentityHolder that always reports the same
// party id and private key PEM.
func NewStaticIdentity(partyID, privateKeyPEM string) *StaticIdentity {
	return &StaticIdentity{partyID: partyID, privateKeyPEM: privateKeyPEM}
}

func (s *StaticIdentity) PartyID() string       { return s.partyID }
func (s *StaticIdentity) PrivateKeyPEM() string { return s.privateKeyPEM }
