package capsa

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/capsara/capsa-go/internal/collab"
	"github.com/capsara/capsa-go/internal/crypto"
)

type testParty struct {
	id      string
	pubPEM  string
	privPEM string
}

func newTestParty(t *testing.T, id string) testParty {
	t.Helper()
	pub, priv, _, err := GenerateKeypair(crypto.MinRSAModulusBits)
	if err != nil {
		t.Fatalf("GenerateKeypair(%s): %v", id, err)
	}
	return testParty{id: id, pubPEM: pub, privPEM: priv}
}

func TestBuildVerifyAndUnwrap_RoundTrip(t *testing.T) {
	alice := newTestParty(t, "alice")
	bob := newTestParty(t, "bob")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: bob.id, PublicKeyPEM: bob.pubPEM})

	subject := "hello"
	body := "the quarterly figures are attached"

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload: Payload{
			Files: []File{
				{Filename: "report.txt", MimeType: "text/plain", Data: []byte("quarterly numbers look good")},
			},
			Subject: &subject,
			Body:    &body,
		},
		Recipients: []string{bob.id},
		Directory:  dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, recipient := range []testParty{alice, bob} {
		decrypted, err := VerifyAndUnwrap(context.Background(), built.Capsa, recipient.privPEM,
			WithPartyID(recipient.id),
			WithExpectedCreatorKey(alice.pubPEM),
		)
		if err != nil {
			t.Fatalf("VerifyAndUnwrap(%s) error = %v", recipient.id, err)
		}
		if decrypted.Subject == nil || *decrypted.Subject != subject {
			t.Errorf("recipient %s: Subject = %v, want %q", recipient.id, decrypted.Subject, subject)
		}
		if decrypted.Body == nil || *decrypted.Body != body {
			t.Errorf("recipient %s: Body = %v, want %q", recipient.id, decrypted.Body, body)
		}

		rec := built.Capsa.Files[0]
		plaintext, err := decrypted.DecryptFile(rec, built.Files[0].EncryptedBytes)
		if err != nil {
			t.Fatalf("recipient %s: DecryptFile() error = %v", recipient.id, err)
		}
		if string(plaintext) != "quarterly numbers look good" {
			t.Errorf("recipient %s: file plaintext = %q", recipient.id, plaintext)
		}

		filename, err := decrypted.DecryptFilename(rec)
		if err != nil {
			t.Fatalf("recipient %s: DecryptFilename() error = %v", recipient.id, err)
		}
		if filename != "report.txt" {
			t.Errorf("recipient %s: filename = %q, want report.txt", recipient.id, filename)
		}

		decrypted.Clear()
		if _, err := decrypted.ContentKey(); err == nil {
			t.Error("expected ContentKey() to fail after Clear()")
		}
	}
}

func TestBuildVerifyAndUnwrap_StructuredRoundTrip(t *testing.T) {
	alice := newTestParty(t, "alice")
	bob := newTestParty(t, "bob")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: bob.id, PublicKeyPEM: bob.pubPEM})

	structured := map[string]any{"orderID": "ord_123", "total": float64(4200), "items": []any{"widget", "gadget"}}

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload: Payload{
			Files:      []File{{Filename: "f", Data: []byte("data")}},
			Structured: structured,
		},
		Recipients: []string{bob.id},
		Directory:  dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if built.Capsa.EncryptedStructured == "" || built.Capsa.StructuredIV == "" || built.Capsa.StructuredAuthTag == "" {
		t.Fatal("expected all three structured wire fields to be populated")
	}

	decrypted, err := VerifyAndUnwrap(context.Background(), built.Capsa, bob.privPEM,
		WithPartyID(bob.id), WithExpectedCreatorKey(alice.pubPEM))
	if err != nil {
		t.Fatalf("VerifyAndUnwrap() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(decrypted.Structured, &got); err != nil {
		t.Fatalf("Structured did not decode as JSON: %v", err)
	}
	if !reflect.DeepEqual(got, structured) {
		t.Errorf("Structured round trip = %v, want %v", got, structured)
	}
}

func TestVerifyAndUnwrap_TamperedStructuredNotJSONRejected(t *testing.T) {
	alice := newTestParty(t, "alice")
	bob := newTestParty(t, "bob")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: bob.id, PublicKeyPEM: bob.pubPEM})

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload: Payload{
			Files:      []File{{Filename: "f", Data: []byte("data")}},
			Structured: map[string]any{"a": 1},
		},
		Recipients: []string{bob.id},
		Directory:  dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Re-encrypt non-JSON plaintext in place of the structured field, using
	// the same content key path a tampered-but-correctly-keyed sender would
	// produce, and confirm it is rejected instead of silently exposed.
	contentKeyHolder, err := VerifyAndUnwrap(context.Background(), built.Capsa, bob.privPEM,
		WithPartyID(bob.id), WithExpectedCreatorKey(alice.pubPEM))
	if err != nil {
		t.Fatalf("VerifyAndUnwrap() error = %v", err)
	}
	contentKey, err := contentKeyHolder.ContentKey()
	if err != nil {
		t.Fatal(err)
	}
	nonce, err := crypto.FromBase64URL(built.Capsa.StructuredIV)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, tag, err := crypto.Seal(contentKey, nonce, []byte("not json"))
	if err != nil {
		t.Fatal(err)
	}

	tampered := built.Capsa
	tampered.EncryptedStructured = crypto.ToBase64URL(ciphertext)
	tampered.StructuredAuthTag = crypto.ToBase64URL(tag)

	_, err = VerifyAndUnwrap(context.Background(), tampered, bob.privPEM,
		WithPartyID(bob.id), WithExpectedCreatorKey(alice.pubPEM))
	capsaErr, ok := err.(*Error)
	if !ok || capsaErr.Kind != KindValidation {
		t.Errorf("error = %v, want *Error{Kind: KindValidation}", err)
	}
}

func TestBuildVerifyAndUnwrap_Delegation(t *testing.T) {
	alice := newTestParty(t, "alice")
	carol := newTestParty(t, "carol")
	assistant := newTestParty(t, "assistant")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: carol.id, PublicKeyPEM: carol.pubPEM, ActingFor: []string{assistant.id}})

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload: Payload{
			Files: []File{{Filename: "memo.txt", Data: []byte("confidential memo")}},
		},
		Recipients: []string{carol.id, assistant.id},
		Directory:  dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(built.Capsa.Keychain.Keys) != 3 {
		t.Fatalf("keychain has %d entries, want 3 (alice, carol, assistant)", len(built.Capsa.Keychain.Keys))
	}

	// carol can decrypt directly.
	if _, err := VerifyAndUnwrap(context.Background(), built.Capsa, carol.privPEM,
		WithPartyID(carol.id), WithExpectedCreatorKey(alice.pubPEM)); err != nil {
		t.Fatalf("carol VerifyAndUnwrap() error = %v", err)
	}

	// assistant's entry is delegated and carries no direct wrapped key.
	_, err = VerifyAndUnwrap(context.Background(), built.Capsa, assistant.privPEM,
		WithPartyID(assistant.id), WithExpectedCreatorKey(alice.pubPEM))
	if err != ErrDelegatedNoAccess {
		t.Errorf("assistant VerifyAndUnwrap() error = %v, want %v", err, ErrDelegatedNoAccess)
	}
}

func TestBuild_RejectsEmptyCapsa(t *testing.T) {
	alice := newTestParty(t, "alice")
	dir := collab.NewMemoryDirectory()

	_, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Directory:            dir,
	})
	if err == nil {
		t.Fatal("expected error for empty capsa")
	}
	capsaErr, ok := err.(*Error)
	if !ok || capsaErr.Kind != KindValidation {
		t.Errorf("error = %v, want *Error{Kind: KindValidation}", err)
	}
}

func TestVerifyAndUnwrap_ReorderedFilesFailSignature(t *testing.T) {
	alice := newTestParty(t, "alice")
	bob := newTestParty(t, "bob")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: bob.id, PublicKeyPEM: bob.pubPEM})

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload: Payload{
			Files: []File{
				{Filename: "a.txt", Data: []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
				{Filename: "b.txt", Data: []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
			},
		},
		Recipients: []string{bob.id},
		Directory:  dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tampered := built.Capsa
	tampered.Files = []FileRecord{built.Capsa.Files[1], built.Capsa.Files[0]}

	_, err = VerifyAndUnwrap(context.Background(), tampered, bob.privPEM,
		WithPartyID(bob.id), WithExpectedCreatorKey(alice.pubPEM))
	if err != ErrSignatureInvalid {
		t.Errorf("VerifyAndUnwrap() error = %v, want %v", err, ErrSignatureInvalid)
	}
}

func TestVerifyAndUnwrap_NotARecipient(t *testing.T) {
	alice := newTestParty(t, "alice")
	bob := newTestParty(t, "bob")
	eve := newTestParty(t, "eve")

	dir := collab.NewMemoryDirectory()
	dir.Add(PartyKey{PartyID: bob.id, PublicKeyPEM: bob.pubPEM})

	built, err := Build(context.Background(), BuildInput{
		CreatorPartyID:       alice.id,
		CreatorPrivateKeyPEM: alice.privPEM,
		Payload:              Payload{Files: []File{{Filename: "f", Data: []byte("data")}}},
		Recipients:           []string{bob.id},
		Directory:            dir,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = VerifyAndUnwrap(context.Background(), built.Capsa, eve.privPEM,
		WithPartyID(eve.id), WithExpectedCreatorKey(alice.pubPEM))
	if err != ErrNotARecipient {
		t.Errorf("VerifyAndUnwrap() error = %v, want %v", err, ErrNotARecipient)
	}
}

func TestGenerateKeypairAndFingerprint(t *testing.T) {
	pubPEM, _, fp, err := GenerateKeypair(0)
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	if !strings.Contains(pubPEM, "BEGIN PUBLIC KEY") {
		t.Errorf("public PEM = %q, want SPKI header", pubPEM)
	}

	got, err := Fingerprint(pubPEM)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if got != fp {
		t.Errorf("Fingerprint() = %q, want %q", got, fp)
	}
	if len(got) != crypto.FingerprintHexLen {
		t.Errorf("fingerprint length = %d, want %d", len(got), crypto.FingerprintHexLen)
	}
}

func TestDecryptFile_TamperedTagFails(t *testing.T) {
	key, err := crypto.GenerateContentKey()
	if err != nil {
		t.Fatal(err)
	}
	nonce, err := crypto.GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, tag, err := crypto.Seal(key, nonce, []byte("Secret data"))
	if err != nil {
		t.Fatal(err)
	}
	tag[0] ^= 0xFF

	if _, err := DecryptFile(ciphertext, key, nonce, tag, false); err == nil {
		t.Error("expected DecryptFile() to fail on tampered tag")
	}
}

func TestDecryptFile_EmptyTagRejected(t *testing.T) {
	key, _ := crypto.GenerateContentKey()
	nonce, _ := crypto.GenerateNonce()
	if _, err := DecryptFile([]byte("ciphertext"), key, nonce, nil, false); err != ErrAuthTagRequired {
		t.Errorf("DecryptFile() error = %v, want %v", err, ErrAuthTagRequired)
	}
}
