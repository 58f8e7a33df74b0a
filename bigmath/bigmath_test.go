package bigmath

import (
	"crypto/rand"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestExpMod(t *testing.T) {
	c := qt.New(t)
	got, err := ExpMod(big.NewInt(4), big.NewInt(13), big.NewInt(497))
	c.Assert(err, qt.IsNil)
	c.Assert(got.String(), qt.Equals, "445")

	_, err = ExpMod(big.NewInt(2), big.NewInt(1), big.NewInt(0))
	c.Assert(err, qt.ErrorMatches, ".*modulus must be positive.*")
}

func TestInverseMod(t *testing.T) {
	c := qt.New(t)
	inv, err := InverseMod(big.NewInt(3), big.NewInt(11))
	c.Assert(err, qt.IsNil)
	c.Assert(inv.String(), qt.Equals, "4")

	_, err = InverseMod(big.NewInt(2), big.NewInt(4))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestJacobi(t *testing.T) {
	c := qt.New(t)
	j, err := Jacobi(big.NewInt(1001), big.NewInt(9907))
	c.Assert(err, qt.IsNil)
	c.Assert(j, qt.Equals, -1)

	_, err = Jacobi(big.NewInt(1), big.NewInt(4))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestProbablyPrime(t *testing.T) {
	c := qt.New(t)
	c.Assert(ProbablyPrime(big.NewInt(7919)), qt.IsTrue)
	c.Assert(ProbablyPrime(big.NewInt(7920)), qt.IsFalse)
	c.Assert(ProbablyPrime(nil), qt.IsFalse)
}

func TestSafePrime(t *testing.T) {
	c := qt.New(t)
	p, err := SafePrime(64, rand.Reader)
	c.Assert(err, qt.IsNil)
	c.Assert(ProbablyPrime(p), qt.IsTrue)

	pPrime := new(big.Int).Sub(p, big.NewInt(1))
	pPrime.Div(pPrime, big.NewInt(2))
	c.Assert(ProbablyPrime(pPrime), qt.IsTrue)

	_, err = SafePrime(2, rand.Reader)
	c.Assert(err, qt.Not(qt.IsNil))
}
