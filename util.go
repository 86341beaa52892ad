package voprf

import "crypto/subtle"

// constantTimeEqual compares two byte strings without leaking timing
// information about where they first differ, per spec.md §7's
// "proof verification failure never leaks which term mismatched" and the
// broader constant-time discipline of spec.md §9.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}
