package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
)

// rsaKeyWithBits bypasses GenerateKeyPair's minimum-size guard to produce
// an intentionally undersized key for negative tests.
func rsaKeyWithBits(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}

// RSA-4096 generation takes hundreds of milliseconds; tests that just need
// *a* valid key pair share one instead of paying that cost per test case.
var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func sharedTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := GenerateKeyPair(MinRSAModulusBits)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}
