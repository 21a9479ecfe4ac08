package utils

import crand "crypto/rand"

// RandBytes panics if the system source fails.
func RandBytes(n int) []byte {
	rbz := make([]byte, n)
	if _, err := crand.Read(rbz); err != nil {
		panic(err)
	}
	return rbz
}
