// Package voprf implements a Verifiable Oblivious Pseudorandom Function
// (VOPRF) following IRTF CFRG draft-irtf-cfrg-voprf-10, in its three
// interoperable modes:
//
//   - OPRF (base): the client learns F(k, x) for its private input x and
//     the server's private key k; the server learns nothing about x.
//   - VOPRF (verifiable): as OPRF, plus a proof that the output was
//     computed under the server's published public key.
//   - POPRF (partially oblivious): as VOPRF, plus a public info string
//     bound into the output.
//
// # Protocol flow
//
// All three modes follow the same shape:
//
//  1. The client blinds its input, producing a BlindedElement to send to
//     the server and a client state to keep for the final step.
//  2. The server evaluates the BlindedElement under its private key,
//     producing an EvaluationElement (and, in VOPRF/POPRF, a Proof).
//  3. The client finalizes using its saved state and the server's
//     response, producing the PRF output.
//
// # Example (base OPRF mode)
//
//	server, err := NewOprfServer(Ristretto255SHA512, rand.Reader)
//	blinded, state, err := Blind(Ristretto255SHA512, []byte("input"), rand.Reader)
//	// ... send blinded to the server, which replies with eval ...
//	eval, err := server.Evaluate(blinded)
//	output, err := state.Finalize(eval)
//
// # Security
//
// The blind scalar must be freshly random for every evaluation. Server
// private keys and client blinds are zeroized on Zeroize/Finalize; every
// comparison involved in accepting a proof or deserializing untrusted
// input is constant-time under Ristretto255SHA512. Under P256SHA256,
// scalar decoding and scalar arithmetic use math/big and are not
// constant-time.
package voprf

import (
	"io"

	"github.com/oprfproto/voprf/internal/common"
	"github.com/oprfproto/voprf/internal/encoding"
	"github.com/oprfproto/voprf/internal/group"
	"github.com/oprfproto/voprf/internal/tag"
)

// OprfServer holds the server's private key for the non-verifiable base
// OPRF mode.
type OprfServer struct {
	suite Ciphersuite
	sk    group.Scalar
}

// NewOprfServer samples a fresh, random non-zero private key and returns a
// ready OPRF server, reading randomness from rng.
func NewOprfServer(suite Ciphersuite, rng io.Reader) (*OprfServer, error) {
	sk, err := common.RandomNonZeroScalar(suite.group(), rng)
	if err != nil {
		return nil, err
	}

	return &OprfServer{suite: suite, sk: sk}, nil
}

// DeriveOprfServer deterministically derives a server from a seed and an
// info string, per spec.md §4.3 derive_key. Equal (seed, info) pairs
// always derive the same server.
func DeriveOprfServer(suite Ciphersuite, seed, info []byte) (*OprfServer, error) {
	sk, err := common.DeriveKey(suite.group(), seed, info, suite.contextString(common.ModeOPRF))
	if err != nil {
		return nil, err
	}

	return &OprfServer{suite: suite, sk: sk}, nil
}

// OprfServerFromKey reconstructs a server from a previously serialized,
// non-zero private key.
func OprfServerFromKey(suite Ciphersuite, key []byte) (*OprfServer, error) {
	sk, err := suite.group().DecodeScalar(key)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	if sk.IsZero() {
		return nil, ErrDeserialization
	}

	return &OprfServer{suite: suite, sk: sk}, nil
}

// Encode returns the Ns-byte serialized private key, per spec.md §6's
// "Server" wire type.
func (s *OprfServer) Encode() []byte { return s.sk.Encode() }

// Evaluate computes EE = sk*BE for the client's blinded element.
func (s *OprfServer) Evaluate(blinded *BlindedElement) (*EvaluationElement, error) {
	return &EvaluationElement{element: blinded.element.Multiply(s.sk)}, nil
}

// FullEvaluate reproduces the entire PRF, without blinding, directly from
// the client's plaintext input. It is used for server-side verification
// of a client-reported output and for the correctness property tests in
// spec.md §8, mirroring fossabot-voprf/server.go's FullEvaluate.
func (s *OprfServer) FullEvaluate(input []byte) ([]byte, error) {
	g := s.suite.group()

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, s.suite.contextString(common.ModeOPRF)))
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	n := p.Multiply(s.sk)

	return finalizeTranscript(s.suite, input, nil, n), nil
}

// VerifyFinalize reports whether output is the client's correct OPRF
// output for input.
func (s *OprfServer) VerifyFinalize(input, output []byte) (bool, error) {
	digest, err := s.FullEvaluate(input)
	if err != nil {
		return false, err
	}

	return constantTimeEqual(digest, output), nil
}

// Zeroize overwrites the server's private key.
func (s *OprfServer) Zeroize() { s.sk.Zeroize() }

// OprfClient is the consumed-once client state produced by Blind and
// required by Finalize, per spec.md §4.8's client state machine.
type OprfClient struct {
	suite    Ciphersuite
	blind    group.Scalar
	input    []byte
	consumed bool
}

// Blind chooses a fresh random blind, maps input onto the group, and
// returns the message to send to the server along with the state needed
// to finalize the protocol once the server responds.
func Blind(suite Ciphersuite, input []byte, rng io.Reader) (*BlindedElement, *OprfClient, error) {
	g := suite.group()

	r, err := common.RandomNonZeroScalar(g, rng)
	if err != nil {
		return nil, nil, err
	}

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, suite.contextString(common.ModeOPRF)))
	if err != nil {
		return nil, nil, wrapGroupErr(err)
	}

	be := &BlindedElement{element: p.Multiply(r)}
	state := &OprfClient{suite: suite, blind: r, input: append([]byte(nil), input...)}

	return be, state, nil
}

// Finalize consumes the client state, unblinding eval and returning the
// final PRF output. It is an error to call Finalize twice on the same
// state.
func (c *OprfClient) Finalize(eval *EvaluationElement) ([]byte, error) {
	if c.consumed {
		return nil, ErrInput
	}

	n := eval.element.Multiply(c.blind.Invert())
	out := finalizeTranscript(c.suite, c.input, nil, n)

	c.consumed = true
	c.blind.Zeroize()

	return out, nil
}

// Encode returns the r ‖ input wire encoding of the unconsumed client
// state. This encoding is implementation-chosen (spec.md §9 "Open
// question"): it carries no interoperability guarantee and must be
// treated as opaque by consumers.
func (c *OprfClient) Encode() []byte {
	return encoding.Concat(c.blind.Encode(), encoding.EncodeVector(c.input))
}

// DecodeOprfClient parses an OprfClient state from its Encode output.
func DecodeOprfClient(suite Ciphersuite, data []byte) (*OprfClient, error) {
	g := suite.group()
	ns := g.ScalarLength()

	if len(data) < ns {
		return nil, ErrDeserialization
	}

	r, err := g.DecodeScalar(data[:ns])
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	input, rest, err := encoding.DecodeVector(data[ns:])
	if err != nil || len(rest) != 0 {
		return nil, ErrDeserialization
	}

	return &OprfClient{suite: suite, blind: r, input: input}, nil
}

// finalizeTranscript computes Hash(I2OSP(len(input),2) || input ||
// [I2OSP(len(info),2) || info] || I2OSP(Ne,2) || serialize(n) ||
// "Finalize"), per spec.md §4.4/§4.6. info is nil outside POPRF.
func finalizeTranscript(suite Ciphersuite, input, info []byte, n group.Element) []byte {
	h := suite.newHash()()

	h.Write(encoding.EncodeVector(input))

	if info != nil {
		h.Write(encoding.EncodeVector(info))
	}

	h.Write(encoding.I2OSP(suite.ElementLength(), 2))
	h.Write(n.Encode())
	h.Write([]byte("Finalize"))

	return h.Sum(nil)
}
