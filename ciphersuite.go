package voprf

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/oprfproto/voprf/internal/common"
	"github.com/oprfproto/voprf/internal/group"
)

// Ciphersuite identifies a (Group, Hash) pair this module is willing to
// run the protocol over, following the teacher's Ciphersuite-as-byte-enum
// pattern (internal/oprf.Ciphersuite / opaque.Group in bytemare/opaque).
type Ciphersuite byte

const (
	// Ristretto255SHA512 is the mandatory-to-implement ristretto255-SHA512
	// ciphersuite (Ns=32, Ne=32).
	Ristretto255SHA512 Ciphersuite = iota + 1

	// P256SHA256 is the mandatory-to-implement P256-SHA256 ciphersuite
	// (Ns=32, Ne=33).
	P256SHA256
)

func (c Ciphersuite) group() group.Group {
	switch c {
	case Ristretto255SHA512:
		return group.Ristretto255
	case P256SHA256:
		return group.P256
	default:
		panic("voprf: unknown ciphersuite")
	}
}

func (c Ciphersuite) newHash() func() hash.Hash {
	switch c {
	case Ristretto255SHA512:
		return sha512.New
	case P256SHA256:
		return sha256.New
	default:
		panic("voprf: unknown ciphersuite")
	}
}

func (c Ciphersuite) contextString(mode common.Mode) []byte {
	return common.ContextString(mode, c.group().Name())
}

// ScalarLength returns Ns, the fixed encoded length of a Scalar under c.
func (c Ciphersuite) ScalarLength() int { return c.group().ScalarLength() }

// ElementLength returns Ne, the fixed encoded length of an Element under c.
func (c Ciphersuite) ElementLength() int { return c.group().ElementLength() }

// Available reports whether c is a ciphersuite this module implements.
func (c Ciphersuite) Available() bool {
	return c == Ristretto255SHA512 || c == P256SHA256
}
