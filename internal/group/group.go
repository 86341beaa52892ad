// Package group abstracts the prime-order group operations the protocol
// needs over a scalar field and an element group: addition, scalar
// multiplication, hashing to the group and to the field, and fixed-length
// serialization. Concrete curves (Ristretto255, NIST P-256) implement this
// interface; the rest of the module is written against it, the way the
// teacher's AKE and OPRF code is written against `group.Group` /
// `ecc.Group` rather than against a specific curve.
package group

import (
	"errors"
	"io"
)

// ErrInvalidScalarEncoding is returned when decoding bytes that are not a
// canonical, in-range scalar encoding.
var ErrInvalidScalarEncoding = errors.New("group: invalid scalar encoding")

// ErrInvalidElementEncoding is returned when decoding bytes that are not a
// canonical encoding of a non-identity point in the prime-order subgroup.
var ErrInvalidElementEncoding = errors.New("group: invalid element encoding")

// ErrIdentityElement is returned by HashToGroup in the astronomically
// unlikely event that it maps to the identity element.
var ErrIdentityElement = errors.New("group: hash_to_group mapped to the identity element")

// Scalar is an element of the group's prime field. The ristretto255
// binding's operations are constant-time; the P256 binding's decoding and
// arithmetic use math/big and are not (its Equal is).
type Scalar interface {
	// Add returns the sum s + other, without modifying s.
	Add(other Scalar) Scalar

	// Subtract returns the difference s - other, without modifying s.
	Subtract(other Scalar) Scalar

	// Multiply returns the product s * other, without modifying s.
	Multiply(other Scalar) Scalar

	// Invert returns the multiplicative inverse of s. s must be non-zero.
	Invert() Scalar

	// Equal reports whether s and other represent the same field element,
	// in constant time.
	Equal(other Scalar) bool

	// IsZero reports whether s is the additive identity.
	IsZero() bool

	// Copy returns an independent copy of s.
	Copy() Scalar

	// Encode returns the canonical fixed-length encoding of s in the
	// curve's native byte order: big-endian for P-256, little-endian for
	// ristretto255.
	Encode() []byte

	// Zeroize overwrites the scalar's internal representation. Callers
	// holding a secret scalar (a server key, a client blind, a POPRF
	// tweak) must call this once the scalar is no longer needed.
	Zeroize()
}

// Element is a point in the group's prime-order subgroup.
type Element interface {
	// Add returns the sum e + other, without modifying e.
	Add(other Element) Element

	// Subtract returns the difference e - other, without modifying e.
	Subtract(other Element) Element

	// Multiply returns the scalar multiple scalar * e, without modifying e.
	Multiply(scalar Scalar) Element

	// Equal reports whether e and other represent the same point, in
	// constant time.
	Equal(other Element) bool

	// IsIdentity reports whether e is the group identity.
	IsIdentity() bool

	// Copy returns an independent copy of e.
	Copy() Element

	// Encode returns the canonical compressed, fixed-length encoding of e.
	Encode() []byte
}

// Group is a prime-order group with the hash-to-curve and hash-to-scalar
// capabilities draft-irtf-cfrg-voprf-10 requires of a ciphersuite. It is a
// Go interface: the root package maps a Ciphersuite to one of the concrete
// bindings with a switch on each operation, and every group call goes
// through interface method dispatch. The bindings are not selected at
// compile time.
type Group interface {
	// Name identifies the group for ciphersuite context strings, e.g.
	// "ristretto255-SHA512" or "P256-SHA256".
	Name() string

	// ScalarLength is Ns, the fixed encoded length of a Scalar.
	ScalarLength() int

	// ElementLength is Ne, the fixed encoded length of an Element.
	ElementLength() int

	// Identity returns the group's identity element.
	Identity() Element

	// Base returns the group's canonical generator.
	Base() Element

	// RandomScalar returns a uniformly random, non-zero scalar, reading
	// randomness from rng. rng is the caller-supplied entropy source;
	// this package never reaches for crypto/rand itself.
	RandomScalar(rng io.Reader) (Scalar, error)

	// DecodeScalar decodes a canonical fixed-length scalar encoding. It
	// rejects wrong-length and out-of-range (>= group order) input.
	DecodeScalar(data []byte) (Scalar, error)

	// DecodeElement decodes a canonical fixed-length element encoding. It
	// rejects wrong-length, non-canonical, not-in-subgroup, and identity
	// encodings.
	DecodeElement(data []byte) (Element, error)

	// HashToScalar deterministically maps msg to a uniformly distributed
	// scalar, domain-separated by dst.
	HashToScalar(msg, dst []byte) (Scalar, error)

	// HashToGroup deterministically maps msg to a non-identity element of
	// the prime-order subgroup, domain-separated by dst.
	HashToGroup(msg, dst []byte) (Element, error)
}
