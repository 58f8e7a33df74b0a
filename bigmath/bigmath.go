// Package bigmath provides the modular-arithmetic primitives the Paillier
// engine and the Shamir field arithmetic are built on: modular
// exponentiation, modular inverse, the Jacobi symbol, a primality test with
// an explicit round count, and safe-prime generation. The operations that
// return an error fail with tallyerr.InvalidArgument on a non-invertible
// input or an out-of-range argument. MulMod has no error return and takes a
// positive modulus as given (math/big panics on a zero modulus);
// ProbablyPrime returns a bool.
package bigmath

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/vocdoni/tallyvault/tallyerr"
)

// millerRabinRounds is the Miller-Rabin round count passed to
// math/big.Int.ProbablyPrime, so the round count is this package's own
// contract rather than an implicit standard-library default.
const millerRabinRounds = 40

// MulMod returns (a*b) mod m.
func MulMod(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m)
}

// ExpMod returns (base^exp) mod m via math/big's square-and-multiply
// exponentiation.
func ExpMod(base, exp, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "bigmath: modulus must be positive")
	}
	return new(big.Int).Exp(base, exp, m), nil
}

// InverseMod returns a^-1 mod m via the extended Euclidean algorithm. It
// fails with InvalidArgument if a has no inverse modulo m.
func InverseMod(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "bigmath: modulus must be positive")
	}
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "bigmath: %s has no inverse modulo %s", a.String(), m.String())
	}
	return inv, nil
}

// Jacobi returns the Jacobi symbol (a/n), as defined by math/big.Jacobi.
// Fails with InvalidArgument if n is not a positive odd integer.
func Jacobi(a, n *big.Int) (int, error) {
	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return 0, tallyerr.New(tallyerr.InvalidArgument, "bigmath: jacobi modulus must be a positive odd integer")
	}
	return big.Jacobi(a, n), nil
}

// ProbablyPrime runs millerRabinRounds rounds of Miller-Rabin (via
// math/big's ProbablyPrime) plus the Baillie-PSW-style base-2 check it
// always performs first, and reports whether n is prime with overwhelming
// probability.
func ProbablyPrime(n *big.Int) bool {
	if n == nil || n.Sign() <= 0 {
		return false
	}
	return n.ProbablyPrime(millerRabinRounds)
}

// SafePrime generates a prime p of the given bit length such that
// p = 2*p' + 1 for a prime p', sampling candidates from rand until one is
// found. bits must be at least 3.
func SafePrime(bits int, rnd io.Reader) (*big.Int, error) {
	if bits < 3 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "bigmath: safe prime bit length must be at least 3")
	}
	one := big.NewInt(1)
	two := big.NewInt(2)
	for {
		pPrime, err := rand.Prime(rnd, bits-1)
		if err != nil {
			return nil, tallyerr.Wrap(tallyerr.Internal, err)
		}
		p := new(big.Int).Mul(pPrime, two)
		p.Add(p, one)
		if p.BitLen() != bits {
			continue
		}
		if ProbablyPrime(p) {
			return p, nil
		}
	}
}
