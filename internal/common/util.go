// Package common holds small helpers shared across client layers.
package common

// WipeByteArray overwrites the slice with zeros. Use it to scrub passwords
// and other secrets from memory once they are no longer needed. A nil slice
// is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
