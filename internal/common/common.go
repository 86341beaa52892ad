// Package common holds the primitives shared by all three modes: the
// Mode enumeration, context-string construction, and derive_key. This
// mirrors the "common" module of the reference draft-10 crate
// (original_source/src/lib.rs) and the teacher's habit of centralizing
// cross-cutting protocol glue (opaque.go's contextString, tag package)
// rather than duplicating it per mode.
package common

import (
	"errors"
	"io"

	"github.com/oprfproto/voprf/internal/encoding"
	"github.com/oprfproto/voprf/internal/group"
	"github.com/oprfproto/voprf/internal/tag"
)

// Mode identifies which of the three protocol variants a context string
// and a derived key are bound to, per spec.md §3 "Mode tag".
type Mode byte

const (
	ModeOPRF  Mode = 0x00
	ModeVOPRF Mode = 0x01
	ModePOPRF Mode = 0x02
)

// ErrDeriveKeyPair is returned by DeriveKey when 256 counter values are
// exhausted without producing a non-zero scalar. This has negligible
// probability for any real group and indicates a bug if ever observed.
var ErrDeriveKeyPair = errors.New("common: derive_key exhausted all counters")

// ErrInfoTooLong is returned when an info string exceeds the 2^16-1 byte
// limit the wire encoding's 2-byte length prefix can carry.
var ErrInfoTooLong = errors.New("common: info exceeds 65535 bytes")

// MaxInfoLength is the largest info string the POPRF wire format accepts.
const MaxInfoLength = 0xffff

// ContextString builds "VOPRF10-" || I2OSP(mode,1) || "-" || suiteID, the
// domain-separation prefix mixed into every DST in the protocol.
func ContextString(mode Mode, suiteID string) []byte {
	return encoding.Concat(
		[]byte(tag.Version),
		encoding.I2OSP(int(mode), 1),
		[]byte("-"),
		[]byte(suiteID),
	)
}

// DST builds a domain-separation tag "<label>" || contextString.
func DST(label string, contextString []byte) []byte {
	return encoding.Concat([]byte(label), contextString)
}

// DeriveKey deterministically derives a non-zero secret-key scalar from a
// seed and an info string, per spec.md §4.3.
func DeriveKey(g group.Group, seed, info, contextString []byte) (group.Scalar, error) {
	if len(info) > MaxInfoLength {
		return nil, ErrInfoTooLong
	}

	dst := DST(tag.DeriveKeyPairDST, contextString)

	deriveInput := encoding.Concat(seed, encoding.EncodeVector(info))

	for counter := 0; counter < 256; counter++ {
		candidate := encoding.Concat(deriveInput, encoding.I2OSP(counter, 1))

		sk, err := g.HashToScalar(candidate, dst)
		if err != nil {
			return nil, err
		}

		if !sk.IsZero() {
			return sk, nil
		}
	}

	return nil, ErrDeriveKeyPair
}

// RandomNonZeroScalar is the common "sample a secret scalar" step used to
// generate a fresh server key and a client blind in each of the three
// modes. It exists as a single named helper, rather than inlined at each
// call site, since each of them must apply the same non-zero-scalar
// contract from spec.md §3 invariant 2.
func RandomNonZeroScalar(g group.Group, rng io.Reader) (group.Scalar, error) {
	return g.RandomScalar(rng)
}
