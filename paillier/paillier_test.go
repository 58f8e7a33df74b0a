package paillier

import (
	"crypto/rand"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func testKey(c *qt.C) *PrivateKey {
	sk, err := Keygen(128, rand.Reader)
	c.Assert(err, qt.IsNil)
	return sk
}

func TestEncryptDecrypt(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)

	m := big.NewInt(42)
	ct, err := Encrypt(&sk.PublicKey, m, rand.Reader)
	c.Assert(err, qt.IsNil)

	got, err := Decrypt(sk, ct)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(m), qt.Equals, 0)
}

func TestHomomorphicAdd(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)

	c1, err := Encrypt(&sk.PublicKey, big.NewInt(3), rand.Reader)
	c.Assert(err, qt.IsNil)
	c2, err := Encrypt(&sk.PublicKey, big.NewInt(5), rand.Reader)
	c.Assert(err, qt.IsNil)

	sum, err := Add(&sk.PublicKey, c1, c2)
	c.Assert(err, qt.IsNil)

	got, err := Decrypt(sk, sum)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Int64(), qt.Equals, int64(8))
}

func TestMul(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)

	ct, err := Encrypt(&sk.PublicKey, big.NewInt(4), rand.Reader)
	c.Assert(err, qt.IsNil)

	scaled, err := Mul(&sk.PublicKey, ct, big.NewInt(3))
	c.Assert(err, qt.IsNil)

	got, err := Decrypt(sk, scaled)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Int64(), qt.Equals, int64(12))
}

func TestEncryptOutOfRange(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	_, err := Encrypt(&sk.PublicKey, sk.N, rand.Reader)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestDecryptInvalidCiphertext(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	_, err := Decrypt(sk, big.NewInt(0))
	c.Assert(err, qt.Not(qt.IsNil))
}
