// Package encoding provides the length-prefixed and fixed-width byte
// encodings shared by every wire type in the protocol (RFC 8017 I2OSP/OS2IP
// and the 2-byte length-prefixed vectors used throughout draft-irtf-cfrg-voprf).
package encoding

import "errors"

// ErrLengthOverflow is returned when a value does not fit in the requested
// I2OSP output width, or when a length-prefixed vector's prefix does not
// fit in 2 bytes.
var ErrLengthOverflow = errors.New("encoding: value does not fit in requested length")

// ErrTruncated is returned when decoding a length-prefixed vector from a
// buffer shorter than its declared length.
var ErrTruncated = errors.New("encoding: truncated input")

// I2OSP is the Integer-to-Octet-String-Primitive from RFC 8017: it encodes
// value as a big-endian byte string of exactly length bytes.
func I2OSP(value, length int) []byte {
	if value < 0 || length <= 0 {
		panic("encoding: I2OSP requires a non-negative value and positive length")
	}

	out := make([]byte, length)
	v := value

	for i := length - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}

	if v != 0 {
		panic("encoding: I2OSP value does not fit in length bytes")
	}

	return out
}

// OS2IP is the Octet-String-to-Integer-Primitive from RFC 8017: it decodes
// a big-endian byte string into an integer.
func OS2IP(data []byte) int {
	v := 0
	for _, b := range data {
		v = v<<8 | int(b)
	}

	return v
}

// EncodeVector prefixes data with its own length as a 2-byte big-endian
// integer, the length-prefix convention used for variable-length inputs
// (client inputs, info strings) throughout the protocol.
func EncodeVector(data []byte) []byte {
	if len(data) > 0xffff {
		panic("encoding: vector too long for 2-byte length prefix")
	}

	out := make([]byte, 0, 2+len(data))
	out = append(out, I2OSP(len(data), 2)...)
	out = append(out, data...)

	return out
}

// DecodeVector reads a 2-byte length prefix followed by that many bytes
// from the front of data, returning the vector and the remaining bytes.
func DecodeVector(data []byte) (vector, rest []byte, err error) {
	if len(data) < 2 {
		return nil, nil, ErrTruncated
	}

	n := OS2IP(data[:2])
	if len(data[2:]) < n {
		return nil, nil, ErrTruncated
	}

	return data[2 : 2+n], data[2+n:], nil
}

// Concat concatenates the given byte slices into a single newly allocated
// slice, avoiding repeated intermediate allocations at call sites.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}
