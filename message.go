package voprf

import (
	"github.com/oprfproto/voprf/internal/dleq"
	"github.com/oprfproto/voprf/internal/group"
)

// BlindedElement is the client's first protocol message: a blinded group
// element sent to the server for evaluation, per spec.md §3.
type BlindedElement struct {
	element group.Element
}

// Encode returns the Ne-byte canonical encoding of the blinded element.
func (b *BlindedElement) Encode() []byte { return b.element.Encode() }

// DecodeBlindedElement parses a BlindedElement from its Ne-byte wire
// encoding under suite, rejecting the identity element and any encoding
// not in the prime-order subgroup.
func DecodeBlindedElement(suite Ciphersuite, data []byte) (*BlindedElement, error) {
	e, err := suite.group().DecodeElement(data)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	return &BlindedElement{element: e}, nil
}

// EvaluationElement is the server's response message: the blinded element
// evaluated under the server's key (and, in POPRF, the info-tweaked key).
type EvaluationElement struct {
	element group.Element
}

// Encode returns the Ne-byte canonical encoding of the evaluation element.
func (e *EvaluationElement) Encode() []byte { return e.element.Encode() }

// DecodeEvaluationElement parses an EvaluationElement from its Ne-byte
// wire encoding under suite.
func DecodeEvaluationElement(suite Ciphersuite, data []byte) (*EvaluationElement, error) {
	el, err := suite.group().DecodeElement(data)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	return &EvaluationElement{element: el}, nil
}

// Proof is the batched DLEQ proof threaded through VOPRF/POPRF evaluate
// and finalize, per spec.md §3 "Proof".
type Proof struct {
	inner dleq.Proof
}

// Encode returns the 2*Ns-byte wire encoding c ‖ s.
func (p *Proof) Encode() []byte { return p.inner.Encode() }

// DecodeProof parses a Proof from its 2*Ns-byte wire encoding under suite.
func DecodeProof(suite Ciphersuite, data []byte) (*Proof, error) {
	inner, err := dleq.Decode(suite.group(), data)
	if err != nil {
		return nil, wrapGroupErr(err)
	}

	return &Proof{inner: inner}, nil
}

func elementsOf(blinded []*BlindedElement) []group.Element {
	out := make([]group.Element, len(blinded))
	for i, b := range blinded {
		out[i] = b.element
	}

	return out
}

func evaluationElementsOf(evals []*EvaluationElement) []group.Element {
	out := make([]group.Element, len(evals))
	for i, e := range evals {
		out[i] = e.element
	}

	return out
}
