package voprf

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestVoprfRoundTrip(t *testing.T) {
	for _, suite := range testSuites {
		t.Run(suiteName(suite), func(t *testing.T) {
			server, err := NewVoprfServer(suite, rand.Reader)
			if err != nil {
				t.Fatalf("NewVoprfServer: %v", err)
			}

			input := []byte("a VOPRF input")

			blinded, state, err := VoprfBlind(suite, input, rand.Reader)
			if err != nil {
				t.Fatalf("VoprfBlind: %v", err)
			}

			eval, proof, err := server.Evaluate(rand.Reader, blinded)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			output, err := state.Finalize(eval, proof, server.PublicKey())
			if err != nil {
				t.Fatalf("Finalize: %v", err)
			}

			full, err := server.FullEvaluate(input)
			if err != nil {
				t.Fatalf("FullEvaluate: %v", err)
			}

			if !bytes.Equal(output, full) {
				t.Fatal("client Finalize output does not match server FullEvaluate")
			}

			ok, err := server.VerifyFinalize(input, output)
			if err != nil {
				t.Fatalf("VerifyFinalize: %v", err)
			}

			if !ok {
				t.Fatal("VerifyFinalize rejected a correct output")
			}
		})
	}
}

func TestVoprfFinalizeRejectsWrongPublicKey(t *testing.T) {
	suite := Ristretto255SHA512

	server, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	other, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	blinded, state, err := VoprfBlind(suite, []byte("input"), rand.Reader)
	if err != nil {
		t.Fatalf("VoprfBlind: %v", err)
	}

	eval, proof, err := server.Evaluate(rand.Reader, blinded)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if _, err := state.Finalize(eval, proof, other.PublicKey()); err == nil {
		t.Fatal("Finalize accepted a proof against the wrong public key")
	}
}

func TestVoprfFinalizeRejectsTamperedProof(t *testing.T) {
	suite := Ristretto255SHA512

	server, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	blinded, state, err := VoprfBlind(suite, []byte("input"), rand.Reader)
	if err != nil {
		t.Fatalf("VoprfBlind: %v", err)
	}

	eval, proof, err := server.Evaluate(rand.Reader, blinded)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	tampered, err := DecodeProof(suite, append([]byte(nil), proof.Encode()...))
	if err != nil {
		t.Fatalf("DecodeProof: %v", err)
	}

	otherScalar, err := suite.group().RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}

	tampered.inner.S = otherScalar

	if _, err := state.Finalize(eval, tampered, server.PublicKey()); err == nil {
		t.Fatal("Finalize accepted a tampered proof")
	}
}

func TestVoprfBatchEvaluateRoundTrip(t *testing.T) {
	for _, suite := range testSuites {
		t.Run(suiteName(suite), func(t *testing.T) {
			server, err := NewVoprfServer(suite, rand.Reader)
			if err != nil {
				t.Fatalf("NewVoprfServer: %v", err)
			}

			inputs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

			blindedList := make([]*BlindedElement, len(inputs))
			states := make([]*VoprfClient, len(inputs))

			for i, in := range inputs {
				b, s, err := VoprfBlind(suite, in, rand.Reader)
				if err != nil {
					t.Fatalf("VoprfBlind: %v", err)
				}

				blindedList[i] = b
				states[i] = s
			}

			evals, proof, err := server.BatchEvaluate(rand.Reader, blindedList)
			if err != nil {
				t.Fatalf("BatchEvaluate: %v", err)
			}

			outputs, err := VoprfClientBatchFinalize(inputs, states, evals, proof, server.PublicKey())
			if err != nil {
				t.Fatalf("VoprfClientBatchFinalize: %v", err)
			}

			for i, in := range inputs {
				full, err := server.FullEvaluate(in)
				if err != nil {
					t.Fatalf("FullEvaluate: %v", err)
				}

				if !bytes.Equal(outputs[i], full) {
					t.Fatalf("batch output[%d] does not match FullEvaluate", i)
				}
			}
		})
	}
}

func TestVoprfBatchPrepareFinishMatchesBatchEvaluate(t *testing.T) {
	suite := Ristretto255SHA512

	server, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	inputs := [][]byte{[]byte("a"), []byte("b")}

	blindedList := make([]*BlindedElement, len(inputs))
	states := make([]*VoprfClient, len(inputs))

	for i, in := range inputs {
		b, s, err := VoprfBlind(suite, in, rand.Reader)
		if err != nil {
			t.Fatalf("VoprfBlind: %v", err)
		}

		blindedList[i] = b
		states[i] = s
	}

	prepared := server.BatchEvaluatePrepare(blindedList)

	evals, proof, err := server.BatchEvaluateFinish(rand.Reader, blindedList, prepared)
	if err != nil {
		t.Fatalf("BatchEvaluateFinish: %v", err)
	}

	batchEvals, _, err := server.BatchEvaluate(rand.Reader, blindedList)
	if err != nil {
		t.Fatalf("BatchEvaluate: %v", err)
	}

	for i := range evals {
		if !bytes.Equal(evals[i].Encode(), batchEvals[i].Encode()) {
			t.Fatalf("prepare/finish evaluation[%d] differs from BatchEvaluate", i)
		}
	}

	outputs, err := VoprfClientBatchFinalize(inputs, states, evals, proof, server.PublicKey())
	if err != nil {
		t.Fatalf("VoprfClientBatchFinalize: %v", err)
	}

	if len(outputs) != len(inputs) {
		t.Fatalf("got %d outputs, want %d", len(outputs), len(inputs))
	}
}

func TestVoprfBatchFinalizeRejectsMismatchedLengths(t *testing.T) {
	suite := Ristretto255SHA512

	server, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	blinded, state, err := VoprfBlind(suite, []byte("input"), rand.Reader)
	if err != nil {
		t.Fatalf("VoprfBlind: %v", err)
	}

	eval, proof, err := server.Evaluate(rand.Reader, blinded)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	_, err = VoprfClientBatchFinalize(
		[][]byte{[]byte("input"), []byte("extra")},
		[]*VoprfClient{state},
		[]*EvaluationElement{eval},
		proof,
		server.PublicKey(),
	)
	if err != ErrBatch {
		t.Fatalf("VoprfClientBatchFinalize(mismatched lengths) = %v, want ErrBatch", err)
	}
}

func TestVoprfServerKeyEncodeDecodeRoundTrip(t *testing.T) {
	suite := Ristretto255SHA512

	server, err := NewVoprfServer(suite, rand.Reader)
	if err != nil {
		t.Fatalf("NewVoprfServer: %v", err)
	}

	decoded, err := VoprfServerFromKey(suite, server.Encode())
	if err != nil {
		t.Fatalf("VoprfServerFromKey: %v", err)
	}

	if !bytes.Equal(decoded.PublicKey().Encode(), server.PublicKey().Encode()) {
		t.Fatal("decoded server has a different public key")
	}
}

func TestDeriveVoprfServerIsDeterministic(t *testing.T) {
	suite := Ristretto255SHA512
	seed := bytes.Repeat([]byte{0x11}, 32)

	s1, err := DeriveVoprfServer(suite, seed, []byte("info"))
	if err != nil {
		t.Fatalf("DeriveVoprfServer: %v", err)
	}

	s2, err := DeriveVoprfServer(suite, seed, []byte("info"))
	if err != nil {
		t.Fatalf("DeriveVoprfServer: %v", err)
	}

	if !bytes.Equal(s1.Encode(), s2.Encode()) {
		t.Fatal("DeriveVoprfServer is not deterministic for identical (seed, info)")
	}
}
