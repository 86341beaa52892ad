package voprf

import (
	"io"

	"github.com/oprfproto/voprf/internal/common"
	"github.com/oprfproto/voprf/internal/dleq"
	"github.com/oprfproto/voprf/internal/encoding"
	"github.com/oprfproto/voprf/internal/group"
	"github.com/oprfproto/voprf/internal/tag"
)

// PublicKey is a server's published VOPRF/POPRF public key pk = sk*B.
type PublicKey struct {
	element group.Element
}

// Encode returns the Ne-byte canonical encoding of the public key.
func (k *PublicKey) Encode() []byte { return k.element.Encode() }

// DecodePublicKey parses a PublicKey from its Ne-byte wire encoding under
// suite, rejecting the identity element.
func DecodePublicKey(suite Ciphersuite, data []byte) (*PublicKey, error) {
	e, err := suite.group().DecodeElement(data)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	return &PublicKey{element: e}, nil
}

// PreparedEvaluationElement is the opaque, no-randomness-needed
// intermediate result of a batch evaluation's scalar multiplications,
// per spec.md §4.7's prep/finish split. It is never exposed for client
// consumption: only BatchEvaluateFinish turns it into an EvaluationElement.
type PreparedEvaluationElement struct {
	element group.Element
}

// VoprfServer holds the server's private key and published public key for
// the verifiable VOPRF mode.
type VoprfServer struct {
	suite Ciphersuite
	sk    group.Scalar
	pk    group.Element
}

// NewVoprfServer samples a fresh, random non-zero private key.
func NewVoprfServer(suite Ciphersuite, rng io.Reader) (*VoprfServer, error) {
	sk, err := common.RandomNonZeroScalar(suite.group(), rng)
	if err != nil {
		return nil, err
	}

	return &VoprfServer{suite: suite, sk: sk, pk: suite.group().Base().Multiply(sk)}, nil
}

// DeriveVoprfServer deterministically derives a server from a seed and an
// info string, per spec.md §4.3.
func DeriveVoprfServer(suite Ciphersuite, seed, info []byte) (*VoprfServer, error) {
	sk, err := common.DeriveKey(suite.group(), seed, info, suite.contextString(common.ModeVOPRF))
	if err != nil {
		return nil, err
	}

	return &VoprfServer{suite: suite, sk: sk, pk: suite.group().Base().Multiply(sk)}, nil
}

// VoprfServerFromKey reconstructs a server from a previously serialized,
// non-zero private key.
func VoprfServerFromKey(suite Ciphersuite, key []byte) (*VoprfServer, error) {
	sk, err := suite.group().DecodeScalar(key)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	if sk.IsZero() {
		return nil, ErrDeserialization
	}

	return &VoprfServer{suite: suite, sk: sk, pk: suite.group().Base().Multiply(sk)}, nil
}

// Encode returns the Ns-byte serialized private key.
func (s *VoprfServer) Encode() []byte { return s.sk.Encode() }

// PublicKey returns the server's public key, to be published to clients.
func (s *VoprfServer) PublicKey() *PublicKey { return &PublicKey{element: s.pk} }

// UnsafePrivateKeyScalar exposes the raw private key for composition with
// higher-level protocols (e.g. an AKE sharing the same key material). It
// bypasses the validation the constructors perform and is the Go analogue
// of the reference crate's opt-in `danger` feature (spec.md §9); callers
// must already enforce non-zero-ness and proper custody themselves.
func (s *VoprfServer) UnsafePrivateKeyScalar() []byte { return s.sk.Encode() }

// Evaluate computes EE = sk*BE and a DLEQ proof that it was computed under
// PublicKey(). It is batch evaluation with n=1.
func (s *VoprfServer) Evaluate(rng io.Reader, blinded *BlindedElement) (*EvaluationElement, *Proof, error) {
	evals, proof, err := s.BatchEvaluate(rng, []*BlindedElement{blinded})
	if err != nil {
		return nil, nil, err
	}

	return evals[0], proof, nil
}

// BatchEvaluatePrepare performs the sk*BE multiplications for a batch,
// needing no randomness. Prepared elements must be passed to
// BatchEvaluateFinish in the same order as blinded.
func (s *VoprfServer) BatchEvaluatePrepare(blinded []*BlindedElement) []*PreparedEvaluationElement {
	out := make([]*PreparedEvaluationElement, len(blinded))
	for i, b := range blinded {
		out[i] = &PreparedEvaluationElement{element: b.element.Multiply(s.sk)}
	}

	return out
}

// BatchEvaluateFinish samples the proof randomness and produces the final
// evaluation messages and a single proof covering the whole batch, in the
// same order as blinded.
func (s *VoprfServer) BatchEvaluateFinish(
	rng io.Reader,
	blinded []*BlindedElement,
	prepared []*PreparedEvaluationElement,
) ([]*EvaluationElement, *Proof, error) {
	if len(blinded) != len(prepared) || len(blinded) == 0 {
		return nil, nil, ErrBatch
	}

	evals := make([]*EvaluationElement, len(prepared))
	for i, p := range prepared {
		evals[i] = &EvaluationElement{element: p.element}
	}

	c := elementsOf(blinded)
	d := evaluationElementsOf(evals)

	proof, err := dleq.Prove(s.suite.group(), rng, s.sk, s.pk, c, d, s.suite.contextString(common.ModeVOPRF))
	if err != nil {
		return nil, nil, err
	}

	return evals, &Proof{inner: proof}, nil
}

// BatchEvaluate combines BatchEvaluatePrepare and BatchEvaluateFinish for
// callers with a dynamic allocator available.
func (s *VoprfServer) BatchEvaluate(rng io.Reader, blinded []*BlindedElement) ([]*EvaluationElement, *Proof, error) {
	if len(blinded) == 0 {
		return nil, nil, ErrBatch
	}

	prepared := s.BatchEvaluatePrepare(blinded)

	return s.BatchEvaluateFinish(rng, blinded, prepared)
}

// FullEvaluate reproduces the entire VOPRF PRF without blinding or a
// proof, for server-side verification of a reported output.
func (s *VoprfServer) FullEvaluate(input []byte) ([]byte, error) {
	g := s.suite.group()

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, s.suite.contextString(common.ModeVOPRF)))
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	n := p.Multiply(s.sk)

	return finalizeTranscript(s.suite, input, nil, n), nil
}

// VerifyFinalize reports whether output is the client's correct VOPRF
// output for input.
func (s *VoprfServer) VerifyFinalize(input, output []byte) (bool, error) {
	digest, err := s.FullEvaluate(input)
	if err != nil {
		return false, err
	}

	return constantTimeEqual(digest, output), nil
}

// Zeroize overwrites the server's private key.
func (s *VoprfServer) Zeroize() { s.sk.Zeroize() }

// VoprfClient is the consumed-once client state produced by VoprfBlind.
type VoprfClient struct {
	suite    Ciphersuite
	blind    group.Scalar
	input    []byte
	blinded  group.Element
	consumed bool
}

// VoprfBlind chooses a fresh random blind and returns the message to send
// to the server along with the state needed to finalize.
func VoprfBlind(suite Ciphersuite, input []byte, rng io.Reader) (*BlindedElement, *VoprfClient, error) {
	g := suite.group()

	r, err := common.RandomNonZeroScalar(g, rng)
	if err != nil {
		return nil, nil, err
	}

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, suite.contextString(common.ModeVOPRF)))
	if err != nil {
		return nil, nil, wrapGroupErr(err)
	}

	blindedElement := p.Multiply(r)
	state := &VoprfClient{
		suite:   suite,
		blind:   r,
		input:   append([]byte(nil), input...),
		blinded: blindedElement,
	}

	return &BlindedElement{element: blindedElement}, state, nil
}

// Finalize consumes the client state: it verifies proof against pk and,
// on success, returns the unblinded PRF output.
func (c *VoprfClient) Finalize(eval *EvaluationElement, proof *Proof, pk *PublicKey) ([]byte, error) {
	outputs, err := VoprfClientBatchFinalize([][]byte{c.input}, []*VoprfClient{c}, []*EvaluationElement{eval}, proof, pk)
	if err != nil {
		return nil, err
	}

	return outputs[0], nil
}

// VoprfClientBatchFinalize verifies one proof against the whole batch and,
// on success, returns every client's unblinded output in input order. It
// requires len(inputs) == len(states) == len(evals), per spec.md §3
// invariant 5; every state is consumed, whether or not verification
// succeeds.
func VoprfClientBatchFinalize(
	inputs [][]byte,
	states []*VoprfClient,
	evals []*EvaluationElement,
	proof *Proof,
	pk *PublicKey,
) ([][]byte, error) {
	n := len(states)
	if n == 0 || len(inputs) != n || len(evals) != n {
		return nil, ErrBatch
	}

	suite := states[0].suite
	c := make([]group.Element, n)
	d := make([]group.Element, n)

	for i, st := range states {
		if st.consumed {
			return nil, ErrInput
		}

		c[i] = st.blinded
		d[i] = evals[i].element
	}

	err := dleq.Verify(suite.group(), pk.element, c, d, proof.inner, suite.contextString(common.ModeVOPRF))

	for _, st := range states {
		st.consumed = true
	}

	if err != nil {
		for _, st := range states {
			st.blind.Zeroize()
		}

		return nil, wrapGroupErr(err)
	}

	outputs := make([][]byte, n)

	for i, st := range states {
		n := evals[i].element.Multiply(st.blind.Invert())
		outputs[i] = finalizeTranscript(suite, inputs[i], nil, n)
		st.blind.Zeroize()
	}

	return outputs, nil
}

// Encode returns the r ‖ BE ‖ input wire encoding of the unconsumed client
// state. As with OprfClient, this encoding is implementation-chosen and
// must be treated as opaque by consumers.
func (c *VoprfClient) Encode() []byte {
	return encoding.Concat(c.blind.Encode(), c.blinded.Encode(), encoding.EncodeVector(c.input))
}

// DecodeVoprfClient parses a VoprfClient state from its Encode output.
func DecodeVoprfClient(suite Ciphersuite, data []byte) (*VoprfClient, error) {
	g := suite.group()
	ns, ne := g.ScalarLength(), g.ElementLength()

	if len(data) < ns+ne {
		return nil, ErrDeserialization
	}

	r, err := g.DecodeScalar(data[:ns])
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	blinded, err := g.DecodeElement(data[ns : ns+ne])
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	input, rest, err := encoding.DecodeVector(data[ns+ne:])
	if err != nil || len(rest) != 0 {
		return nil, ErrDeserialization
	}

	return &VoprfClient{suite: suite, blind: r, input: input, blinded: blinded}, nil
}
