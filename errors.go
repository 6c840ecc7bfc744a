package capsa

import (
	"errors"
	"fmt"

	"github.com/capsara/capsa-go/internal/crypto"
	"github.com/capsara/capsa-go/internal/validate"
)

// Kind is the stable, machine-readable error category from §7. Callers
// should match on Kind (or on the sentinel Err* values via errors.Is)
// rather than parsing Error() strings.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindKeyMaterial         Kind = "key_material_error"
	KindAuthFailed          Kind = "auth_failed"
	KindUnwrapFailed        Kind = "unwrap_failed"
	KindSignatureInvalid    Kind = "signature_invalid"
	KindNotARecipient       Kind = "not_a_recipient"
	KindDelegatedNoAccess   Kind = "delegated_without_access"
	KindAuthTagRequired     Kind = "auth_tag_required"
	KindUseAfterClear       Kind = "use_after_clear"
	KindLimitExceeded       Kind = "limit_exceeded"
	KindCollaboratorFailure Kind = "collaborator_failure"
)

// Error is the single error type this module returns from its public
// surface. It always carries a stable Kind and a human-readable message
// that never includes key material, plaintext, or unwrapped key bytes
// (§7).
type Error struct {
	Kind    Kind
	Message string
	Field   string // set for KindValidation / KindLimitExceeded
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is implements errors.Is sentinel matching against the package-level
// Err* values below, by Kind rather than identity.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == sentinel.Kind
}

// Sentinel errors for errors.Is checks, one per §7 kind.
var (
	ErrAuthFailed          = &Error{Kind: KindAuthFailed}
	ErrUnwrapFailed        = &Error{Kind: KindUnwrapFailed}
	ErrSignatureInvalid    = &Error{Kind: KindSignatureInvalid}
	ErrNotARecipient       = &Error{Kind: KindNotARecipient}
	ErrDelegatedNoAccess   = &Error{Kind: KindDelegatedNoAccess}
	ErrAuthTagRequired     = &Error{Kind: KindAuthTagRequired}
	ErrUseAfterClear       = &Error{Kind: KindUseAfterClear}
	ErrLimitExceeded       = &Error{Kind: KindLimitExceeded}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrKeyMaterial         = &Error{Kind: KindKeyMaterial}
	ErrCollaboratorFailure = &Error{Kind: KindCollaboratorFailure}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// wrapValidationError converts an internal/validate.Error into the public
// Error type, preserving the offending field name.
func wrapValidationError(err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return &Error{Kind: KindValidation, Message: verr.Message, Field: verr.Field, cause: err}
	}
	return newError(KindValidation, err.Error(), err)
}

// wrapCryptoError maps an internal/crypto sentinel error onto the public
// taxonomy. A crypto error not recognized here indicates programmer error
// or a hardware failure, and is propagated unwrapped rather than folded
// into a data-driven kind (§4.4 "cryptographic primitive failures abort").
func wrapCryptoError(err error) error {
	switch {
	case errors.Is(err, crypto.ErrAuthFailed):
		return newError(KindAuthFailed, "authentication failed", err)
	case errors.Is(err, crypto.ErrUnwrapFailed):
		return newError(KindUnwrapFailed, "key unwrap failed", err)
	case errors.Is(err, crypto.ErrSignatureInvalid):
		return newError(KindSignatureInvalid, "signature verification failed", err)
	case errors.Is(err, crypto.ErrKeyTooSmall), errors.Is(err, crypto.ErrMalformedKey),
		errors.Is(err, crypto.ErrUnsupportedKeyType):
		return newError(KindKeyMaterial, err.Error(), err)
	default:
		return err
	}
}
