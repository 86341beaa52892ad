package common

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/oprfproto/voprf/internal/group"
)

func TestContextStringEncodesModeAndSuite(t *testing.T) {
	cs := ContextString(ModeVOPRF, "ristretto255-SHA512")

	if !strings.HasPrefix(string(cs), "VOPRF10-") {
		t.Fatalf("context string %q missing version prefix", cs)
	}

	if !strings.HasSuffix(string(cs), "ristretto255-SHA512") {
		t.Fatalf("context string %q missing suite id suffix", cs)
	}

	oprfCS := ContextString(ModeOPRF, "ristretto255-SHA512")
	if bytes.Equal(cs, oprfCS) {
		t.Fatal("context strings for different modes must differ")
	}
}

func TestDSTConcatenatesLabelAndContext(t *testing.T) {
	ctx := []byte("ctx")

	dst := DST("Label-", ctx)
	if string(dst) != "Label-ctx" {
		t.Fatalf("DST = %q, want %q", dst, "Label-ctx")
	}
}

func TestDeriveKeyIsDeterministicAndNonZero(t *testing.T) {
	for _, g := range []group.Group{group.Ristretto255, group.P256} {
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}

		ctx := ContextString(ModeOPRF, g.Name())

		k1, err := DeriveKey(g, seed, []byte("info"), ctx)
		if err != nil {
			t.Fatalf("DeriveKey: %v", err)
		}

		if k1.IsZero() {
			t.Fatal("DeriveKey produced a zero scalar")
		}

		k2, err := DeriveKey(g, seed, []byte("info"), ctx)
		if err != nil {
			t.Fatalf("DeriveKey: %v", err)
		}

		if !k1.Equal(k2) {
			t.Fatal("DeriveKey is not deterministic for identical (seed, info, context)")
		}

		k3, err := DeriveKey(g, seed, []byte("different info"), ctx)
		if err != nil {
			t.Fatalf("DeriveKey: %v", err)
		}

		if k1.Equal(k3) {
			t.Fatal("DeriveKey did not separate on info")
		}
	}
}

func TestDeriveKeyRejectsOverlongInfo(t *testing.T) {
	g := group.Ristretto255
	ctx := ContextString(ModeOPRF, g.Name())

	_, err := DeriveKey(g, []byte("seed"), make([]byte, MaxInfoLength+1), ctx)
	if err != ErrInfoTooLong {
		t.Fatalf("DeriveKey(overlong info) = %v, want ErrInfoTooLong", err)
	}
}

func TestRandomNonZeroScalar(t *testing.T) {
	for _, g := range []group.Group{group.Ristretto255, group.P256} {
		s, err := RandomNonZeroScalar(g, rand.Reader)
		if err != nil {
			t.Fatalf("RandomNonZeroScalar: %v", err)
		}

		if s.IsZero() {
			t.Fatal("RandomNonZeroScalar produced a zero scalar")
		}
	}
}
