package voprf

import (
	"errors"

	"github.com/oprfproto/voprf/internal/common"
	"github.com/oprfproto/voprf/internal/dleq"
	"github.com/oprfproto/voprf/internal/group"
)

// The error kinds from spec.md §7, exported as sentinels so callers can
// distinguish them with errors.Is. None of them is ever returned from a
// panic: every fallible operation here returns a result, following the
// teacher's convention of sentinel errors (errStateNotEmpty in
// internal/ake/server.go) wrapped with fmt.Errorf at the call site.
var (
	// ErrDeserialization covers malformed, wrong-length, non-canonical,
	// or subgroup-invalid bytes for a Scalar, Element, or Proof.
	ErrDeserialization = errors.New("voprf: deserialization failed")

	// ErrInput covers an identity point from hash_to_group, a zero
	// blind, an overlong info string, an identity tweakedKey in POPRF
	// blind or finalize, and a client state that was already finalized.
	// Empty info strings are accepted; empty or mismatched batch inputs
	// are reported as ErrBatch.
	ErrInput = errors.New("voprf: invalid input")

	// ErrProofVerification is returned when a DLEQ proof fails to verify.
	ErrProofVerification = dleq.ErrVerificationFailed

	// ErrDeriveKeyPair is returned when derive_key exhausts its 256
	// counters without finding a non-zero scalar.
	ErrDeriveKeyPair = common.ErrDeriveKeyPair

	// ErrBatch is returned when a batch operation is invoked with
	// mismatched or empty inputs where that is forbidden.
	ErrBatch = errors.New("voprf: batch size mismatch")
)

// wrapGroupErr maps the internal group package's deserialization errors
// onto the public ErrDeserialization sentinel, preserving the underlying
// cause for %w unwrapping.
func wrapGroupErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, group.ErrInvalidScalarEncoding) || errors.Is(err, group.ErrInvalidElementEncoding) {
		return errors.Join(ErrDeserialization, err)
	}

	if errors.Is(err, group.ErrIdentityElement) {
		return errors.Join(ErrInput, err)
	}

	return err
}
