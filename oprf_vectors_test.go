package voprf

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Known-answer vectors for OPRF(ristretto255, SHA-512), reproduced from
// wurp-go-oprf/oprf/oprf_test.go, itself extracted from the official
// draft-irtf-cfrg-voprf-10 / RFC 9497 Appendix A test suite.
//
// That vectors source hashes to the group under the RFC's own
// "OPRFV1-<mode>-ristretto255-SHA512" domain-separation tag, while this
// module's ContextString uses the draft-10 "VOPRF10-" version prefix
// (see internal/tag.Version) -- so the two don't share a HashToGroup
// output under the module's public, version-tagged entry points.
// oprfVectorHashToGroupDST below is that published tag, used here only
// to reproduce the vectors' hash-to-group output bit-for-bit; the rest of
// the computation (scalar multiplication, encoding, and Finalize's
// transcript) is this module's own production code, since
// finalizeTranscript never depends on the version prefix.
const oprfVectorHashToGroupDST = "HashToGroup-OPRFV1-\x00-ristretto255-SHA512"

type oprfVector struct {
	name              string
	input             string
	blind             string
	blindedElement    string
	evaluationElement string
	output            string
}

const oprfVectorPrivateKey = "5ebcea5ee37023ccb9fc2d2019f9d7737be85591ae8652ffa9ef0f4d37063b0e"

var oprfVectors = []oprfVector{
	{
		name:              "single byte input",
		input:             "00",
		blind:             "64d37aed22a27f5191de1c1d69fadb899d8862b58eb4220029e036ec4c1f6706",
		blindedElement:    "609a0ae68c15a3cf6903766461307e5c8bb2f95e7e6550e1ffa2dc99e412803c",
		evaluationElement: "7ec6578ae5120958eb2db1745758ff379e77cb64fe77b0b2d8cc917ea0869c7e",
		output:            "527759c3d9366f277d8c6020418d96bb393ba2afb20ff90df23fb7708264e2f3ab9135e3bd69955851de4b1f9fe8a0973396719b7912ba9ee8aa7d0b5e24bcf6",
	},
	{
		name:              "repeated byte pattern",
		input:             "5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a",
		blind:             "64d37aed22a27f5191de1c1d69fadb899d8862b58eb4220029e036ec4c1f6706",
		blindedElement:    "da27ef466870f5f15296299850aa088629945a17d1f5b7f5ff043f76b3c06418",
		evaluationElement: "b4cbf5a4f1eeda5a63ce7b77c7d23f461db3fcab0dd28e4e17cecb5c90d02c25",
		output:            "f4a74c9c592497375e796aa837e907b1a045d34306a749db9f34221f7e750cb4f2a6413a6bf6fa5e19ba6348eb673934a722a7ede2e7621306d18951e7cf2c73",
	},
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid test-vector hex %q: %v", s, err)
	}

	return b
}

// TestOprfRistretto255KnownAnswerVectors exercises the group arithmetic
// and finalize transcript against published values, rather than only
// this implementation's own self-consistency, per spec.md §8's concrete
// vectors requirement.
func TestOprfRistretto255KnownAnswerVectors(t *testing.T) {
	g := Ristretto255SHA512.group()

	sk, err := g.DecodeScalar(mustDecodeHex(t, oprfVectorPrivateKey))
	if err != nil {
		t.Fatalf("DecodeScalar(private key): %v", err)
	}

	for _, tv := range oprfVectors {
		t.Run(tv.name, func(t *testing.T) {
			input := mustDecodeHex(t, tv.input)

			r, err := g.DecodeScalar(mustDecodeHex(t, tv.blind))
			if err != nil {
				t.Fatalf("DecodeScalar(blind): %v", err)
			}

			h0, err := g.HashToGroup(input, []byte(oprfVectorHashToGroupDST))
			if err != nil {
				t.Fatalf("HashToGroup: %v", err)
			}

			blindedElement := h0.Multiply(r)
			if got := hex.EncodeToString(blindedElement.Encode()); got != tv.blindedElement {
				t.Fatalf("BlindedElement = %s, want %s", got, tv.blindedElement)
			}

			evaluationElement := blindedElement.Multiply(sk)
			if got := hex.EncodeToString(evaluationElement.Encode()); got != tv.evaluationElement {
				t.Fatalf("EvaluationElement = %s, want %s", got, tv.evaluationElement)
			}

			n := evaluationElement.Multiply(r.Invert())
			output := finalizeTranscript(Ristretto255SHA512, input, nil, n)
			if got := hex.EncodeToString(output); got != tv.output {
				t.Fatalf("Output = %s, want %s", got, tv.output)
			}
		})
	}
}

func TestOprfVectorFinalizeMatchesServerClientFlow(t *testing.T) {
	// Sanity check that the vector's hand-rolled arithmetic above lines
	// up with what this module's own OprfServer/OprfClient would have
	// computed for the same (sk, r, input), had Blind accepted an
	// injected blind and had the suite used the vectors' DST.
	g := Ristretto255SHA512.group()

	sk, err := g.DecodeScalar(mustDecodeHex(t, oprfVectorPrivateKey))
	if err != nil {
		t.Fatalf("DecodeScalar(private key): %v", err)
	}

	tv := oprfVectors[0]
	input := mustDecodeHex(t, tv.input)

	r, err := g.DecodeScalar(mustDecodeHex(t, tv.blind))
	if err != nil {
		t.Fatalf("DecodeScalar(blind): %v", err)
	}

	h0, err := g.HashToGroup(input, []byte(oprfVectorHashToGroupDST))
	if err != nil {
		t.Fatalf("HashToGroup: %v", err)
	}

	blinded := &BlindedElement{element: h0.Multiply(r)}

	server := &OprfServer{suite: Ristretto255SHA512, sk: sk}

	eval, err := server.Evaluate(blinded)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := hex.EncodeToString(eval.element.Encode()); got != tv.evaluationElement {
		t.Fatalf("Evaluate() = %s, want %s", got, tv.evaluationElement)
	}

	client := &OprfClient{suite: Ristretto255SHA512, blind: r, input: input}

	output, err := client.Finalize(eval)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	want := mustDecodeHex(t, tv.output)
	if !bytes.Equal(output, want) {
		t.Fatalf("Finalize() = %x, want %x", output, want)
	}
}
