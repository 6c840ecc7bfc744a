package crypto

import "runtime"

// SecretBuffer owns a byte slice that holds sensitive material - a content
// key, an unwrapped RSA output, or decrypted plaintext - and guarantees it
// is wiped to zero on [SecretBuffer.Clear] or on scope exit via
// [SecretBuffer.ClearDeferred]. Reads after clearing fail with
// [ErrBufferCleared] rather than silently returning zeros, so a use-after-
// clear bug surfaces immediately.
type SecretBuffer struct {
	data    []byte
	cleared bool
}

// NewSecretBuffer takes ownership of data. Callers must not retain any
// other reference to the underlying array.
func NewSecretBuffer(data []byte) *SecretBuffer {
	return &SecretBuffer{data: data}
}

// Bytes returns the owned slice, or [ErrBufferCleared] if it has already
// been wiped.
func (b *SecretBuffer) Bytes() ([]byte, error) {
	if b.cleared {
		return nil, ErrBufferCleared
	}
	return b.data, nil
}

// Len reports the buffer's length, which remains valid after clearing.
func (b *SecretBuffer) Len() int {
	return len(b.data)
}

// Clear overwrites the buffer with zeros through a barrier that defeats
// dead-store elimination, then marks the buffer unreadable. Clear is
// idempotent.
func (b *SecretBuffer) Clear() {
	if b.cleared {
		return
	}
	zeroize(b.data)
	b.cleared = true
}

// ClearDeferred returns a function suitable for `defer b.ClearDeferred()()`
// at the top of a build or decrypt scope, guaranteeing the buffer is wiped
// on every exit path, including a panic.
func (b *SecretBuffer) ClearDeferred() func() {
	return b.Clear
}

// zeroize overwrites buf with zeros. The write goes through
// runtime.KeepAlive so the compiler cannot prove the store is dead and
// elide it, which a plain `for i := range buf { buf[i] = 0 }` followed by
// no further use of buf would otherwise be free to do.
func zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// Zeroize wipes an arbitrary byte slice in place using the same barrier as
// [SecretBuffer.Clear]. Used for buffers that are not wrapped in a
// SecretBuffer, such as a caller-provided plaintext scratch area.
func Zeroize(buf []byte) {
	zeroize(buf)
}
