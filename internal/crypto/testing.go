package crypto

import "io"

// SetRandReaderForTesting overrides the CSPRNG source used by
// [RandomBytes], [GenerateContentKey], [GenerateNonce], and [Nanoid]. It
// returns a function that restores the previous reader. Intended for tests
// only; since this package is internal, it cannot be reached from outside
// the module.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}
