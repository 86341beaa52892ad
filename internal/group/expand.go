package group

import (
	"encoding/binary"
	"errors"
	"hash"
)

// errTooLong mirrors the expand_message_xmd bound from RFC 9380 §5.3.1:
// ell = ceil(len_in_bytes / b_in_bytes) must not exceed 255.
var errTooLong = errors.New("group: expand_message_xmd output too long")

// expandMessageXMD implements expand_message_xmd (RFC 9380 §5.3.1) for an
// arbitrary hash.Hash constructor, generalizing the SHA-512-only version in
// wurp-go-oprf/oprf/oprf.go to also serve the P256-SHA256 ciphersuite.
func expandMessageXMD(newHash func() hash.Hash, msg, dst []byte, lenInBytes int) ([]byte, error) {
	h := newHash()
	bInBytes := h.Size()
	rInBytes := h.BlockSize()

	ell := (lenInBytes + bInBytes - 1) / bInBytes
	if ell > 255 {
		return nil, errTooLong
	}

	if len(dst) > 255 {
		return nil, errors.New("group: DST too long")
	}

	dstPrime := make([]byte, 0, len(dst)+1)
	dstPrime = append(dstPrime, dst...)
	dstPrime = append(dstPrime, byte(len(dst)))

	zPad := make([]byte, rInBytes)

	libStr := make([]byte, 2)
	binary.BigEndian.PutUint16(libStr, uint16(lenInBytes))

	h.Write(zPad)
	h.Write(msg)
	h.Write(libStr)
	h.Write([]byte{0})
	h.Write(dstPrime)
	b0 := h.Sum(nil)

	h.Reset()
	h.Write(b0)
	h.Write([]byte{1})
	h.Write(dstPrime)
	b1 := h.Sum(nil)

	uniformBytes := make([]byte, 0, ell*bInBytes)
	uniformBytes = append(uniformBytes, b1...)

	bPrev := b1
	for i := 2; i <= ell; i++ {
		xored := make([]byte, bInBytes)
		for j := range xored {
			xored[j] = b0[j] ^ bPrev[j]
		}

		h.Reset()
		h.Write(xored)
		h.Write([]byte{byte(i)})
		h.Write(dstPrime)
		bi := h.Sum(nil)

		uniformBytes = append(uniformBytes, bi...)
		bPrev = bi
	}

	return uniformBytes[:lenInBytes], nil
}
