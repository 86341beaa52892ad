package group

import (
	"crypto/sha256"
	"crypto/subtle"
	"hash"
	"io"
	"math/big"

	"filippo.io/nistec"
)

// P-256 domain constants (FIPS 186-4 D.1.2.3 / SEC2). No example in the
// retrieval pack implements NIST-curve field arithmetic or hash-to-curve
// (filippo.io/nistec exposes only the constant-time group law, not the
// field square-root or SSWU coefficients), so these are the one piece of
// this module grounded on math/big instead of a pack dependency; see
// DESIGN.md.
var (
	p256Prime, _ = new(big.Int).SetString(
		"ffffffff00000001000000000000000000000000ffffffffffffffffffffffff", 16)
	p256Order, _ = new(big.Int).SetString(
		"ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551", 16)
	p256A = big.NewInt(-3) // reduced mod p at use
	p256B, _ = new(big.Int).SetString(
		"5ac635d8aa3a93e7b3ebbd55769886bc651d06b0cc53b0f63bce3c3e27d2604b", 16)
	// p256Z is the SSWU Z parameter for P256_XMD:SHA-256_SSWU_RO_ (RFC 9380 §8.2).
	p256Z = big.NewInt(-10)
)

const (
	p256ScalarLen  = 32
	p256ElementLen = 33 // compressed SEC1 encoding, per spec.md §6
	p256FieldLen   = 48 // L for hash_to_field with a 256-bit field and 128-bit security margin
)

// P256 is the Group binding for the P256-SHA256 ciphersuite, built on
// filippo.io/nistec's constant-time point arithmetic (the same primitive
// crypto/ecdsa and crypto/ecdh use internally) plus math/big for the
// scalar field and the hash-to-curve map.
var P256 Group = p256Group{}

type p256Group struct{}

func (p256Group) Name() string { return "P256-SHA256" }

func (p256Group) ScalarLength() int { return p256ScalarLen }

func (p256Group) ElementLength() int { return p256ElementLen }

func (p256Group) Identity() Element {
	return p256Element{p: nistec.NewP256Point()}
}

func (p256Group) Base() Element {
	one := make([]byte, p256ScalarLen)
	one[p256ScalarLen-1] = 1

	pt, err := nistec.NewP256Point().ScalarBaseMult(one)
	if err != nil {
		panic("group: failed to compute the P-256 generator: " + err.Error())
	}

	return p256Element{p: pt}
}

func (p256Group) RandomScalar(rng io.Reader) (Scalar, error) {
	for {
		buf := make([]byte, p256ScalarLen+8) // extra bytes to make the mod-n bias negligible
		if _, err := io.ReadFull(rng, buf); err != nil {
			return nil, err
		}

		v := new(big.Int).Mod(new(big.Int).SetBytes(buf), p256Order)
		if v.Sign() != 0 {
			return p256Scalar{v: v}, nil
		}
	}
}

func (p256Group) DecodeScalar(data []byte) (Scalar, error) {
	if len(data) != p256ScalarLen {
		return nil, ErrInvalidScalarEncoding
	}

	v := new(big.Int).SetBytes(data)
	if v.Cmp(p256Order) >= 0 {
		return nil, ErrInvalidScalarEncoding
	}

	return p256Scalar{v: v}, nil
}

func (p256Group) DecodeElement(data []byte) (Element, error) {
	if len(data) != p256ElementLen {
		return nil, ErrInvalidElementEncoding
	}

	pt, err := nistec.NewP256Point().SetBytes(data)
	if err != nil {
		return nil, ErrInvalidElementEncoding
	}

	e := p256Element{p: pt}
	if e.IsIdentity() {
		return nil, ErrInvalidElementEncoding
	}

	return e, nil
}

func (p256Group) HashToScalar(msg, dst []byte) (Scalar, error) {
	u, err := hashToField(msg, dst, 1, p256Order)
	if err != nil {
		return nil, err
	}

	return p256Scalar{v: u[0]}, nil
}

func (p256Group) HashToGroup(msg, dst []byte) (Element, error) {
	u, err := hashToField(msg, dst, 2, p256Prime)
	if err != nil {
		return nil, err
	}

	x0, y0 := mapToCurveSSWU(u[0])
	x1, y1 := mapToCurveSSWU(u[1])

	q0, err := affineToPoint(x0, y0)
	if err != nil {
		return nil, err
	}

	q1, err := affineToPoint(x1, y1)
	if err != nil {
		return nil, err
	}

	sum := nistec.NewP256Point().Add(q0, q1) // P-256 cofactor is 1, no clearing needed

	e := p256Element{p: sum}
	if e.IsIdentity() {
		return nil, ErrIdentityElement
	}

	return e, nil
}

// hashToField implements hash_to_field (RFC 9380 §5.2) for a prime field,
// producing count field elements reduced modulo modulus.
func hashToField(msg, dst []byte, count int, modulus *big.Int) ([]*big.Int, error) {
	lenInBytes := count * p256FieldLen

	uniform, err := expandMessageXMD(sha256Hash, msg, dst, lenInBytes)
	if err != nil {
		return nil, err
	}

	out := make([]*big.Int, count)
	for i := 0; i < count; i++ {
		tv := uniform[i*p256FieldLen : (i+1)*p256FieldLen]
		out[i] = new(big.Int).Mod(new(big.Int).SetBytes(tv), modulus)
	}

	return out, nil
}

func sha256Hash() hash.Hash { return sha256.New() }

// mapToCurveSSWU implements the simplified Shallue-van de Woestijne-Ulas
// map (RFC 9380 §6.6.2) directly onto the P-256 curve y^2 = x^3 + A x + B.
// P-256 needs no 3-isogeny (unlike curves with A=0), so the map's output
// is already an affine P-256 point.
func mapToCurveSSWU(u *big.Int) (x, y *big.Int) {
	p := p256Prime
	a := new(big.Int).Mod(p256A, p)
	b := p256B

	u2 := mulMod(u, u, p)
	zu2 := mulMod(p256Z, u2, p)
	zu2sq := mulMod(zu2, zu2, p)

	tv1 := addMod(zu2sq, zu2, p)

	var x1 *big.Int
	if tv1.Sign() == 0 {
		// Z*A, then B / (Z*A).
		za := mulMod(p256Z, a, p)
		zaInv := invMod(za, p)
		x1 = mulMod(b, zaInv, p)
	} else {
		tv1Inv := invMod(tv1, p)
		onePlus := addMod(big.NewInt(1), tv1Inv, p)
		negBOverA := mulMod(negMod(b, p), invMod(a, p), p)
		x1 = mulMod(negBOverA, onePlus, p)
	}

	gx1 := curveEquation(x1, a, b, p)

	x2 := mulMod(zu2, x1, p)
	gx2 := curveEquation(x2, a, b, p)

	var chosenX, chosenGX *big.Int
	var y1 *big.Int

	if isSquare(gx1, p) {
		chosenX, chosenGX = x1, gx1
	} else {
		chosenX, chosenGX = x2, gx2
	}

	y1 = sqrtMod(chosenGX, p)

	if sgn0(u) != sgn0(y1) {
		y1 = negMod(y1, p)
	}

	return chosenX, y1
}

func curveEquation(x, a, b, p *big.Int) *big.Int {
	x3 := mulMod(mulMod(x, x, p), x, p)
	ax := mulMod(a, x, p)
	return addMod(addMod(x3, ax, p), b, p)
}

func mulMod(a, b, m *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), m) }
func addMod(a, b, m *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), m) }
func negMod(a, m *big.Int) *big.Int    { return new(big.Int).Mod(new(big.Int).Neg(a), m) }

func invMod(a, m *big.Int) *big.Int {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return big.NewInt(0) // inv0(0) = 0, per RFC 9380 §4
	}

	return inv
}

// sqrtMod computes a square root of a modulo the P-256 prime, which is
// congruent to 3 mod 4, so sqrt(a) = a^((p+1)/4) mod p.
func sqrtMod(a, p *big.Int) *big.Int {
	exp := new(big.Int).Rsh(new(big.Int).Add(p, big.NewInt(1)), 2)
	return new(big.Int).Exp(a, exp, p)
}

func isSquare(a, p *big.Int) bool {
	if a.Sign() == 0 {
		return true
	}

	exp := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	return new(big.Int).Exp(a, exp, p).Cmp(big.NewInt(1)) == 0
}

// sgn0 is sgn0_be for a prime field (RFC 9380 §4.1): the parity of the
// integer representative.
func sgn0(a *big.Int) uint {
	return a.Bit(0)
}

func affineToPoint(x, y *big.Int) (*nistec.P256Point, error) {
	buf := make([]byte, 1+2*32)
	buf[0] = 0x04
	x.FillBytes(buf[1:33])
	y.FillBytes(buf[33:65])

	return nistec.NewP256Point().SetBytes(buf)
}

type p256Scalar struct {
	v *big.Int
}

func (s p256Scalar) Add(other Scalar) Scalar {
	o := other.(p256Scalar)
	return p256Scalar{v: addMod(s.v, o.v, p256Order)}
}

func (s p256Scalar) Subtract(other Scalar) Scalar {
	o := other.(p256Scalar)
	return p256Scalar{v: new(big.Int).Mod(new(big.Int).Sub(s.v, o.v), p256Order)}
}

func (s p256Scalar) Multiply(other Scalar) Scalar {
	o := other.(p256Scalar)
	return p256Scalar{v: mulMod(s.v, o.v, p256Order)}
}

// Invert uses Fermat's little theorem (a^(q-2) mod q) via big.Int.Exp's
// fixed-pattern square-and-multiply, rather than big.Int.ModInverse's
// variable-time extended Euclidean algorithm. This is a partial mitigation,
// not a constant-time guarantee: see DESIGN.md for the residual gap.
func (s p256Scalar) Invert() Scalar {
	exp := new(big.Int).Sub(p256Order, big.NewInt(2))
	return p256Scalar{v: new(big.Int).Exp(s.v, exp, p256Order)}
}

func (s p256Scalar) Equal(other Scalar) bool {
	o := other.(p256Scalar)
	return subtle.ConstantTimeCompare(s.Encode(), o.Encode()) == 1
}

func (s p256Scalar) IsZero() bool { return s.v.Sign() == 0 }

func (s p256Scalar) Copy() Scalar { return p256Scalar{v: new(big.Int).Set(s.v)} }

func (s p256Scalar) Encode() []byte {
	buf := make([]byte, p256ScalarLen)
	s.v.FillBytes(buf)

	return buf
}

// Zeroize scrubs the backing word array in place before resetting the
// value. big.Int.Bits() returns the absolute-value words by reference
// (they "share the same underlying array" per the stdlib docs), so
// clearing them here reaches the memory SetInt64 would otherwise abandon
// to a shorter reallocation.
func (s p256Scalar) Zeroize() {
	bits := s.v.Bits()
	for i := range bits {
		bits[i] = 0
	}

	s.v.SetInt64(0)
}

type p256Element struct {
	p *nistec.P256Point
}

func (e p256Element) Add(other Element) Element {
	o := other.(p256Element)
	return p256Element{p: nistec.NewP256Point().Add(e.p, o.p)}
}

func (e p256Element) Subtract(other Element) Element {
	o := other.(p256Element)
	return p256Element{p: nistec.NewP256Point().Add(e.p, negateP256Point(o.p))}
}

// negateP256Point returns -p. nistec.P256Point exposes no Negate method, so
// this negates the affine Y coordinate mod the field prime and re-encodes,
// the same math/big path the SSWU map already uses for curve arithmetic.
func negateP256Point(p *nistec.P256Point) *nistec.P256Point {
	b := p.Bytes()
	if len(b) == 1 {
		return nistec.NewP256Point() // identity negates to itself
	}

	x := new(big.Int).SetBytes(b[1:33])
	y := new(big.Int).SetBytes(b[33:65])

	neg, err := affineToPoint(x, negMod(y, p256Prime))
	if err != nil {
		panic("group: failed to negate P-256 point: " + err.Error())
	}

	return neg
}

func (e p256Element) Multiply(scalar Scalar) Element {
	s := scalar.(p256Scalar)
	buf := make([]byte, p256ScalarLen)
	s.v.FillBytes(buf)

	pt, err := nistec.NewP256Point().ScalarMult(e.p, buf)
	if err != nil {
		panic("group: P-256 scalar multiplication failed: " + err.Error())
	}

	return p256Element{p: pt}
}

func (e p256Element) Equal(other Element) bool {
	o := other.(p256Element)
	return subtle.ConstantTimeCompare(e.p.Bytes(), o.p.Bytes()) == 1
}

func (e p256Element) IsIdentity() bool {
	return string(e.p.Bytes()) == string(nistec.NewP256Point().Bytes())
}

func (e p256Element) Copy() Element {
	return p256Element{p: nistec.NewP256Point().Add(e.p, nistec.NewP256Point())}
}

func (e p256Element) Encode() []byte {
	return e.p.BytesCompressed()
}
