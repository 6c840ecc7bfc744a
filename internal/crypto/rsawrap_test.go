package crypto

import (
	"bytes"
	"testing"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	key := sharedTestKey(t)

	contentKey, err := GenerateContentKey()
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := Wrap(contentKey, &key.PublicKey)
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if len(wrapped) != WrappedKeySize {
		t.Errorf("wrapped length = %d, want %d", len(wrapped), WrappedKeySize)
	}

	unwrapped, err := Unwrap(wrapped, key)
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if !bytes.Equal(unwrapped, contentKey) {
		t.Error("unwrapped content key does not match original")
	}
}

func TestUnwrap_WrongKeyFails(t *testing.T) {
	keyA := sharedTestKey(t)
	keyB, err := GenerateKeyPair(MinRSAModulusBits)
	if err != nil {
		t.Fatal(err)
	}

	contentKey, _ := GenerateContentKey()
	wrapped, err := Wrap(contentKey, &keyA.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Unwrap(wrapped, keyB); err != ErrUnwrapFailed {
		t.Errorf("Unwrap() error = %v, want %v", err, ErrUnwrapFailed)
	}
}

func TestUnwrap_GarbageInputFails(t *testing.T) {
	key := sharedTestKey(t)
	garbage := bytes.Repeat([]byte{0x42}, WrappedKeySize)

	if _, err := Unwrap(garbage, key); err != ErrUnwrapFailed {
		t.Errorf("Unwrap() error = %v, want %v", err, ErrUnwrapFailed)
	}
}

func TestWrap_RejectsWrongLengthContentKey(t *testing.T) {
	key := sharedTestKey(t)
	if _, err := Wrap([]byte("too short"), &key.PublicKey); err != ErrInvalidKeySize {
		t.Errorf("Wrap() error = %v, want %v", err, ErrInvalidKeySize)
	}
}
