package group

import (
	"crypto/sha512"
	"hash"
	"io"

	"github.com/gtank/ristretto255"
)

// ristrettoScalarLen and ristrettoElementLen are Ns and Ne for the
// ristretto255-SHA512 ciphersuite (both 32 bytes, per spec.md §6).
const (
	ristrettoScalarLen  = 32
	ristrettoElementLen = 32

	// ristrettoUniformLen is the number of uniform bytes ristretto255
	// needs to map onto a scalar or an element via FromUniformBytes,
	// per RFC 9496.
	ristrettoUniformLen = 64
)

// Ristretto255 is the Group binding for the ristretto255-SHA512
// ciphersuite, built directly on github.com/gtank/ristretto255 the way
// wurp-go-oprf/oprf/oprf.go does.
var Ristretto255 Group = ristrettoGroup{}

type ristrettoGroup struct{}

func (ristrettoGroup) Name() string { return "ristretto255-SHA512" }

func (ristrettoGroup) ScalarLength() int { return ristrettoScalarLen }

func (ristrettoGroup) ElementLength() int { return ristrettoElementLen }

func (ristrettoGroup) Identity() Element {
	return ristrettoElement{e: ristretto255.NewElement()}
}

func (ristrettoGroup) Base() Element {
	one := ristretto255.NewScalar()
	oneBytes := make([]byte, ristrettoScalarLen)
	oneBytes[0] = 1 // ristretto255 scalars are little-endian encoded (RFC 9496 §4)

	if err := one.Decode(oneBytes); err != nil {
		panic("group: failed to decode the ristretto255 scalar 1: " + err.Error())
	}

	return ristrettoElement{e: ristretto255.NewElement().ScalarBaseMult(one)}
}

func (ristrettoGroup) RandomScalar(rng io.Reader) (Scalar, error) {
	for {
		buf := make([]byte, ristrettoUniformLen)
		if _, err := io.ReadFull(rng, buf); err != nil {
			return nil, err
		}

		s := ristretto255.NewScalar().FromUniformBytes(buf)
		if s.Equal(ristretto255.NewScalar()) == 0 {
			return ristrettoScalar{s: s}, nil
		}
		// Negligible-probability retry on the zero scalar.
	}
}

func (ristrettoGroup) DecodeScalar(data []byte) (Scalar, error) {
	if len(data) != ristrettoScalarLen {
		return nil, ErrInvalidScalarEncoding
	}

	s := ristretto255.NewScalar()
	if err := s.Decode(data); err != nil {
		return nil, ErrInvalidScalarEncoding
	}

	return ristrettoScalar{s: s}, nil
}

func (ristrettoGroup) DecodeElement(data []byte) (Element, error) {
	if len(data) != ristrettoElementLen {
		return nil, ErrInvalidElementEncoding
	}

	e := ristretto255.NewElement()
	if err := e.Decode(data); err != nil {
		return nil, ErrInvalidElementEncoding
	}

	if e.Equal(ristretto255.NewElement()) == 1 {
		return nil, ErrInvalidElementEncoding
	}

	return ristrettoElement{e: e}, nil
}

func (g ristrettoGroup) HashToScalar(msg, dst []byte) (Scalar, error) {
	uniform, err := expandMessageXMD(sha512Hash, msg, dst, ristrettoUniformLen)
	if err != nil {
		return nil, err
	}

	return ristrettoScalar{s: ristretto255.NewScalar().FromUniformBytes(uniform)}, nil
}

func (g ristrettoGroup) HashToGroup(msg, dst []byte) (Element, error) {
	uniform, err := expandMessageXMD(sha512Hash, msg, dst, ristrettoUniformLen)
	if err != nil {
		return nil, err
	}

	e := ristretto255.NewElement().FromUniformBytes(uniform)
	if e.Equal(ristretto255.NewElement()) == 1 {
		return nil, ErrIdentityElement
	}

	return ristrettoElement{e: e}, nil
}

func sha512Hash() hash.Hash { return sha512.New() }

type ristrettoScalar struct {
	s *ristretto255.Scalar
}

func (r ristrettoScalar) Add(other Scalar) Scalar {
	o := other.(ristrettoScalar)
	return ristrettoScalar{s: ristretto255.NewScalar().Add(r.s, o.s)}
}

func (r ristrettoScalar) Subtract(other Scalar) Scalar {
	o := other.(ristrettoScalar)
	return ristrettoScalar{s: ristretto255.NewScalar().Subtract(r.s, o.s)}
}

func (r ristrettoScalar) Multiply(other Scalar) Scalar {
	o := other.(ristrettoScalar)
	return ristrettoScalar{s: ristretto255.NewScalar().Multiply(r.s, o.s)}
}

func (r ristrettoScalar) Invert() Scalar {
	return ristrettoScalar{s: ristretto255.NewScalar().Invert(r.s)}
}

func (r ristrettoScalar) Equal(other Scalar) bool {
	o := other.(ristrettoScalar)
	return r.s.Equal(o.s) == 1
}

func (r ristrettoScalar) IsZero() bool {
	return r.s.Equal(ristretto255.NewScalar()) == 1
}

func (r ristrettoScalar) Copy() Scalar {
	return ristrettoScalar{s: ristretto255.NewScalar().Add(r.s, ristretto255.NewScalar())}
}

func (r ristrettoScalar) Encode() []byte {
	return r.s.Encode(make([]byte, 0, ristrettoScalarLen))
}

func (r ristrettoScalar) Zeroize() {
	zero := make([]byte, ristrettoScalarLen)
	_ = r.s.Decode(zero)
}

type ristrettoElement struct {
	e *ristretto255.Element
}

func (r ristrettoElement) Add(other Element) Element {
	o := other.(ristrettoElement)
	return ristrettoElement{e: ristretto255.NewElement().Add(r.e, o.e)}
}

func (r ristrettoElement) Subtract(other Element) Element {
	o := other.(ristrettoElement)
	return ristrettoElement{e: ristretto255.NewElement().Subtract(r.e, o.e)}
}

func (r ristrettoElement) Multiply(scalar Scalar) Element {
	s := scalar.(ristrettoScalar)
	return ristrettoElement{e: ristretto255.NewElement().ScalarMult(s.s, r.e)}
}

func (r ristrettoElement) Equal(other Element) bool {
	o := other.(ristrettoElement)
	return r.e.Equal(o.e) == 1
}

func (r ristrettoElement) IsIdentity() bool {
	return r.e.Equal(ristretto255.NewElement()) == 1
}

func (r ristrettoElement) Copy() Element {
	return ristrettoElement{e: ristretto255.NewElement().Add(r.e, ristretto255.NewElement())}
}

func (r ristrettoElement) Encode() []byte {
	return r.e.Encode(make([]byte, 0, ristrettoElementLen))
}
