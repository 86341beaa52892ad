package voprf

import (
	"io"

	"github.com/oprfproto/voprf/internal/common"
	"github.com/oprfproto/voprf/internal/dleq"
	"github.com/oprfproto/voprf/internal/encoding"
	"github.com/oprfproto/voprf/internal/group"
	"github.com/oprfproto/voprf/internal/tag"
)

// tweak derives the per-info scalar t = sk + HashToScalar(framedInfo) and
// its corresponding public point tweakedKey = t*B, per spec.md §4.6. info
// may be nil or empty; it must not exceed common.MaxInfoLength bytes.
func tweak(g group.Group, sk group.Scalar, info, contextString []byte) (t group.Scalar, tweakedKey group.Element, err error) {
	if len(info) > common.MaxInfoLength {
		return nil, nil, ErrInput
	}

	framedInfo := encoding.Concat([]byte(tag.InfoLabel), encoding.I2OSP(len(info), 2), info)

	m, err := g.HashToScalar(framedInfo, common.DST(tag.HashToScalarLabel, contextString))
	if err != nil {
		return nil, nil, wrapGroupErr(err)
	}

	t = sk.Add(m)
	if t.IsZero() {
		return nil, nil, ErrInput
	}

	return t, g.Base().Multiply(t), nil
}

// PoprfServer holds the server's private key for the partially oblivious
// POPRF mode.
type PoprfServer struct {
	suite Ciphersuite
	sk    group.Scalar
}

// NewPoprfServer samples a fresh, random non-zero private key.
func NewPoprfServer(suite Ciphersuite, rng io.Reader) (*PoprfServer, error) {
	sk, err := common.RandomNonZeroScalar(suite.group(), rng)
	if err != nil {
		return nil, err
	}

	return &PoprfServer{suite: suite, sk: sk}, nil
}

// DerivePoprfServer deterministically derives a server from a seed and an
// info string.
func DerivePoprfServer(suite Ciphersuite, seed, info []byte) (*PoprfServer, error) {
	sk, err := common.DeriveKey(suite.group(), seed, info, suite.contextString(common.ModePOPRF))
	if err != nil {
		return nil, err
	}

	return &PoprfServer{suite: suite, sk: sk}, nil
}

// PoprfServerFromKey reconstructs a server from a previously serialized,
// non-zero private key.
func PoprfServerFromKey(suite Ciphersuite, key []byte) (*PoprfServer, error) {
	sk, err := suite.group().DecodeScalar(key)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	if sk.IsZero() {
		return nil, ErrDeserialization
	}

	return &PoprfServer{suite: suite, sk: sk}, nil
}

// Encode returns the Ns-byte serialized private key.
func (s *PoprfServer) Encode() []byte { return s.sk.Encode() }

// PublicKey returns the server's untweaked public key pk = sk*B, the key
// clients need to compute the per-info tweakedKey themselves.
func (s *PoprfServer) PublicKey() *PublicKey {
	return &PublicKey{element: s.suite.group().Base().Multiply(s.sk)}
}

// UnsafePrivateKeyScalar exposes the raw private key for composition with
// higher-level protocols; see VoprfServer.UnsafePrivateKeyScalar.
func (s *PoprfServer) UnsafePrivateKeyScalar() []byte { return s.sk.Encode() }

// Evaluate computes the info-tweaked evaluation EE = BE * invert(t) and a
// DLEQ proof binding it to the tweaked public key. It is batch evaluation
// with n=1.
func (s *PoprfServer) Evaluate(rng io.Reader, blinded *BlindedElement, info []byte) (*EvaluationElement, *Proof, error) {
	evals, proof, err := s.BatchEvaluate(rng, []*BlindedElement{blinded}, info)
	if err != nil {
		return nil, nil, err
	}

	return evals[0], proof, nil
}

// BatchEvaluatePrepare computes the shared tweak for info and the
// invert(t) multiplications for a batch, needing no randomness. All
// members of a batch share the same info string.
func (s *PoprfServer) BatchEvaluatePrepare(blinded []*BlindedElement, info []byte) ([]*PreparedEvaluationElement, error) {
	g := s.suite.group()

	t, _, err := tweak(g, s.sk, info, s.suite.contextString(common.ModePOPRF))
	if err != nil {
		return nil, err
	}

	tInv := t.Invert()
	defer tInv.Zeroize()

	out := make([]*PreparedEvaluationElement, len(blinded))
	for i, b := range blinded {
		out[i] = &PreparedEvaluationElement{element: b.element.Multiply(tInv)}
	}

	return out, nil
}

// BatchEvaluateFinish samples the proof randomness and produces the final
// evaluation messages and a single proof covering the whole batch. info
// must be the same string passed to BatchEvaluatePrepare.
func (s *PoprfServer) BatchEvaluateFinish(
	rng io.Reader,
	blinded []*BlindedElement,
	prepared []*PreparedEvaluationElement,
	info []byte,
) ([]*EvaluationElement, *Proof, error) {
	if len(blinded) != len(prepared) || len(blinded) == 0 {
		return nil, nil, ErrBatch
	}

	g := s.suite.group()

	t, tweakedKey, err := tweak(g, s.sk, info, s.suite.contextString(common.ModePOPRF))
	if err != nil {
		return nil, nil, err
	}

	defer t.Zeroize()

	evals := make([]*EvaluationElement, len(prepared))
	for i, p := range prepared {
		evals[i] = &EvaluationElement{element: p.element}
	}

	c := evaluationElementsOf(evals)
	d := elementsOf(blinded)

	proof, err := dleq.Prove(g, rng, t, tweakedKey, c, d, s.suite.contextString(common.ModePOPRF))
	if err != nil {
		return nil, nil, err
	}

	return evals, &Proof{inner: proof}, nil
}

// BatchEvaluate combines BatchEvaluatePrepare and BatchEvaluateFinish for
// callers with a dynamic allocator available.
func (s *PoprfServer) BatchEvaluate(rng io.Reader, blinded []*BlindedElement, info []byte) ([]*EvaluationElement, *Proof, error) {
	if len(blinded) == 0 {
		return nil, nil, ErrBatch
	}

	prepared, err := s.BatchEvaluatePrepare(blinded, info)
	if err != nil {
		return nil, nil, err
	}

	return s.BatchEvaluateFinish(rng, blinded, prepared, info)
}

// FullEvaluate reproduces the entire POPRF PRF without blinding or a
// proof, for server-side verification of a reported output.
func (s *PoprfServer) FullEvaluate(input, info []byte) ([]byte, error) {
	g := s.suite.group()
	ctx := s.suite.contextString(common.ModePOPRF)

	t, _, err := tweak(g, s.sk, info, ctx)
	if err != nil {
		return nil, err
	}

	defer t.Zeroize()

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, ctx))
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	n := p.Multiply(t.Invert())

	return finalizeTranscript(s.suite, input, info, n), nil
}

// VerifyFinalize reports whether output is the client's correct POPRF
// output for (input, info).
func (s *PoprfServer) VerifyFinalize(input, info, output []byte) (bool, error) {
	digest, err := s.FullEvaluate(input, info)
	if err != nil {
		return false, err
	}

	return constantTimeEqual(digest, output), nil
}

// Zeroize overwrites the server's private key.
func (s *PoprfServer) Zeroize() { s.sk.Zeroize() }

// PoprfClient is the consumed-once client state produced by PoprfBlind.
type PoprfClient struct {
	suite    Ciphersuite
	blind    group.Scalar
	input    []byte
	info     []byte
	blinded  group.Element
	consumed bool
}

// PoprfBlind chooses a fresh random blind and computes the blinded
// message to send to the server along with the state needed to finalize.
// pk is the server's untweaked public key (PoprfServer.PublicKey).
func PoprfBlind(suite Ciphersuite, input, info []byte, pk *PublicKey, rng io.Reader) (*BlindedElement, *PoprfClient, error) {
	g := suite.group()
	ctx := suite.contextString(common.ModePOPRF)

	if len(info) > common.MaxInfoLength {
		return nil, nil, ErrInput
	}

	framedInfo := encoding.Concat([]byte(tag.InfoLabel), encoding.I2OSP(len(info), 2), info)

	m, err := g.HashToScalar(framedInfo, common.DST(tag.HashToScalarLabel, ctx))
	if err != nil {
		return nil, nil, wrapGroupErr(err)
	}

	tweakedKey := pk.element.Add(g.Base().Multiply(m))
	if tweakedKey.IsIdentity() {
		return nil, nil, ErrInput
	}

	r, err := common.RandomNonZeroScalar(g, rng)
	if err != nil {
		return nil, nil, err
	}

	p, err := g.HashToGroup(input, common.DST(tag.HashToGroupLabel, ctx))
	if err != nil {
		return nil, nil, wrapGroupErr(err)
	}

	blindedElement := p.Multiply(r)
	state := &PoprfClient{
		suite:   suite,
		blind:   r,
		input:   append([]byte(nil), input...),
		info:    append([]byte(nil), info...),
		blinded: blindedElement,
	}

	return &BlindedElement{element: blindedElement}, state, nil
}

// Finalize consumes the client state: it verifies proof against the
// info-tweaked public key and, on success, returns the unblinded PRF
// output.
func (c *PoprfClient) Finalize(eval *EvaluationElement, proof *Proof, pk *PublicKey) ([]byte, error) {
	g := c.suite.group()
	ctx := c.suite.contextString(common.ModePOPRF)

	framedInfo := encoding.Concat([]byte(tag.InfoLabel), encoding.I2OSP(len(c.info), 2), c.info)

	m, err := g.HashToScalar(framedInfo, common.DST(tag.HashToScalarLabel, ctx))
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	tweakedKey := pk.element.Add(g.Base().Multiply(m))
	if tweakedKey.IsIdentity() {
		return nil, ErrInput
	}

	if c.consumed {
		return nil, ErrInput
	}

	err = dleq.Verify(g, tweakedKey, []group.Element{eval.element}, []group.Element{c.blinded}, proof.inner, ctx)

	c.consumed = true

	if err != nil {
		c.blind.Zeroize()
		return nil, wrapGroupErr(err)
	}

	n := eval.element.Multiply(c.blind.Invert())
	out := finalizeTranscript(c.suite, c.input, c.info, n)

	c.blind.Zeroize()

	return out, nil
}

// Encode returns the r ‖ BE ‖ info ‖ input wire encoding of the unconsumed
// client state.
func (c *PoprfClient) Encode() []byte {
	return encoding.Concat(
		c.blind.Encode(),
		c.blinded.Encode(),
		encoding.EncodeVector(c.info),
		encoding.EncodeVector(c.input),
	)
}

// DecodePoprfClient parses a PoprfClient state from its Encode output.
func DecodePoprfClient(suite Ciphersuite, data []byte) (*PoprfClient, error) {
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

	info, rest, err := encoding.DecodeVector(data[ns+ne:])
	if err != nil {
		return nil, ErrDeserialization
	}

	input, rest, err := encoding.DecodeVector(rest)
	if err != nil || len(rest) != 0 {
		return nil, ErrDeserialization
	}

	return &PoprfClient{suite: suite, blind: r, input: input, info: info, blinded: blinded}, nil
}
