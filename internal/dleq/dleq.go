// Package dleq implements the batched discrete-log-equality
// non-interactive zero-knowledge proof used by VOPRF and POPRF: a proof
// that log_G(A) = log_H(B) for one or more pairs, compressed into a single
// constant-size (c, s) pair regardless of batch size.
//
// The structure (a per-batch set of random coefficients folding n pairs
// into one composite pair, then a single Schnorr-style proof over the
// composite) follows fossabot-voprf/server.go's generateProof /
// computeComposites split, generalized from a single VOPRF evaluation to
// the draft's Prove/Verify contract with an explicit transcript.
package dleq

import (
	"io"

	"github.com/oprfproto/voprf/internal/encoding"
	"github.com/oprfproto/voprf/internal/group"
	"github.com/oprfproto/voprf/internal/tag"
)

// ErrVerificationFailed is returned by Verify when the proof does not
// check out. It never distinguishes which transcript term mismatched.
var ErrVerificationFailed = errVerification{}

type errVerification struct{}

func (errVerification) Error() string { return "dleq: proof verification failed" }

// Proof is a non-interactive Chaum-Pedersen proof: c, s scalars such that
// a verifier recomputing the transcript with (c, s) recovers c.
type Proof struct {
	C group.Scalar
	S group.Scalar
}

// Encode returns the Ns||Ns wire encoding c ‖ s.
func (p Proof) Encode() []byte {
	return encoding.Concat(p.C.Encode(), p.S.Encode())
}

// Decode parses a Proof from its 2*Ns wire encoding under g.
func Decode(g group.Group, data []byte) (Proof, error) {
	ns := g.ScalarLength()
	if len(data) != 2*ns {
		return Proof{}, group.ErrInvalidScalarEncoding
	}

	c, err := g.DecodeScalar(data[:ns])
	if err != nil {
		return Proof{}, err
	}

	s, err := g.DecodeScalar(data[ns:])
	if err != nil {
		return Proof{}, err
	}

	return Proof{C: c, S: s}, nil
}

// coefficients computes the batch's composite coefficients d_0..d_{n-1},
// deterministically derived from a transcript seed over pk and, for
// each i, the actual pair (c[i], d[i]), per spec.md §4.5 "DLEQ.Prove" and
// draft-irtf-cfrg-voprf-10's ComputeCompositesFast. Binding each
// coefficient to its own pair (not just its index) is load-bearing: a
// coefficient derived from the index alone is predictable before any
// blinded elements exist, letting a malicious prover corrupt one pair's
// output and compensate in another pair of the same batch while leaving
// the composite (and the single proof over it) unchanged.
func coefficients(g group.Group, pk group.Element, c, d []group.Element, ctx []byte) ([]group.Scalar, error) {
	seedDST := encoding.Concat([]byte(tag.SeedLabel), ctx)

	seed, err := g.HashToScalar(
		encoding.Concat(
			encoding.I2OSP(g.ElementLength(), 2),
			pk.Encode(),
			encoding.EncodeVector(seedDST),
		),
		seedDST,
	)
	if err != nil {
		return nil, err
	}

	compositeDST := encoding.Concat([]byte(tag.CompositeLabel), ctx)
	ne := g.ElementLength()
	neLen := encoding.I2OSP(ne, 2)

	coeffs := make([]group.Scalar, len(c))

	for i := range c {
		di, err := g.HashToScalar(
			encoding.Concat(
				seed.Encode(),
				encoding.I2OSP(i, 2),
				neLen, c[i].Encode(),
				neLen, d[i].Encode(),
			),
			compositeDST,
		)
		if err != nil {
			return nil, err
		}

		coeffs[i] = di
	}

	return coeffs, nil
}

// composite folds n pairs (c[i], d[i]) into a single pair (M, Z) using the
// batch's coefficients, per spec.md §4.5 step 2.
func composite(g group.Group, c, d []group.Element, coeffs []group.Scalar) (m, z group.Element) {
	m = g.Identity()
	z = g.Identity()

	for i := range coeffs {
		m = m.Add(c[i].Multiply(coeffs[i]))
		z = z.Add(d[i].Multiply(coeffs[i]))
	}

	return m, z
}

// challenge recomputes c from the full transcript, per spec.md §4.5 step 4:
// Bm=generator, a0=pk, a1=M, a2=Z, a3=tB, a4=tM, each length-prefixed Ne.
func challenge(g group.Group, pk, m, z, tB, tM group.Element, ctx []byte) (group.Scalar, error) {
	ne := g.ElementLength()
	neLen := encoding.I2OSP(ne, 2)

	transcript := encoding.Concat(
		neLen, g.Base().Encode(),
		neLen, pk.Encode(),
		neLen, m.Encode(),
		neLen, z.Encode(),
		neLen, tB.Encode(),
		neLen, tM.Encode(),
	)

	return g.HashToScalar(transcript, encoding.Concat([]byte(tag.ChallengeLabel), ctx))
}

// Prove generates a batched DLEQ proof that log_G(pk) = log_C[i](D[i]) for
// every i, given the shared secret scalar sk with pk = sk*G. C and D must
// have equal, non-zero length.
func Prove(g group.Group, rng io.Reader, sk group.Scalar, pk group.Element, c, d []group.Element, ctx []byte) (Proof, error) {
	coeffs, err := coefficients(g, pk, c, d, ctx)
	if err != nil {
		return Proof{}, err
	}

	m, z := composite(g, c, d, coeffs)

	t, err := g.RandomScalar(rng)
	if err != nil {
		return Proof{}, err
	}
	defer t.Zeroize()

	tB := g.Base().Multiply(t)
	tM := m.Multiply(t)

	challengeScalar, err := challenge(g, pk, m, z, tB, tM, ctx)
	if err != nil {
		return Proof{}, err
	}

	s := t.Subtract(challengeScalar.Multiply(sk))

	return Proof{C: challengeScalar, S: s}, nil
}

// Verify checks a batched DLEQ proof that log_G(pk) = log_C[i](D[i]) for
// every i. It never reveals which term of the recomputed transcript
// mismatched: any disagreement collapses to ErrVerificationFailed.
func Verify(g group.Group, pk group.Element, c, d []group.Element, proof Proof, ctx []byte) error {
	if len(c) != len(d) || len(c) == 0 {
		return ErrVerificationFailed
	}

	coeffs, err := coefficients(g, pk, c, d, ctx)
	if err != nil {
		return err
	}

	m, z := composite(g, c, d, coeffs)

	tB := g.Base().Multiply(proof.S).Add(pk.Multiply(proof.C))
	tM := m.Multiply(proof.S).Add(z.Multiply(proof.C))

	recomputed, err := challenge(g, pk, m, z, tB, tM, ctx)
	if err != nil {
		return err
	}

	if !recomputed.Equal(proof.C) {
		return ErrVerificationFailed
	}

	return nil
}
