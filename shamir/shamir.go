// Package shamir implements (t, n) Shamir secret sharing over a fixed
// 256-bit-plus prime field. Secrets are hashed with SHA-256 before sharing,
// so a share commits to H(secret); reconstruction yields H(secret), not the
// original bytes. This is a deliberate contract (see the package-level
// design notes in SPEC_FULL.md §9 Open Question 2), not an oversight:
// downstream components dereference the handle, they never need the raw
// secret back from Shamir itself.
package shamir

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/vocdoni/tallyvault/tallyerr"
)

// fieldPrime is a fixed 256-bit prime, 2^256 - 189, the largest prime below
// 2^256. A SHA-256 digest interpreted as an integer is below it except for
// the 189 values at or above it, which are reduced modulo the prime.
var fieldPrime, _ = new(big.Int).SetString("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff43", 16) //nolint:lll

// FieldPrime returns the prime modulus shares are computed over, so other
// packages performing compatible modular arithmetic (e.g. threshold's
// Lagrange combination) share the exact same field.
func FieldPrime() *big.Int {
	return new(big.Int).Set(fieldPrime)
}

// Share is one point (x, f(x)) on the sharing polynomial.
type Share struct {
	X int
	Y *big.Int
	T int
	N int
}

// Split hashes secret with SHA-256 and shares the digest across n points of
// a degree-(t-1) polynomial, so that any t of the n shares reconstruct the
// digest via Lagrange interpolation at x=0.
func Split(secret []byte, t, n int) ([]Share, error) {
	if t < 1 || n < t {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "shamir: require 1 <= t <= n, got t=%d n=%d", t, n)
	}
	digest := sha256.Sum256(secret)
	s := new(big.Int).SetBytes(digest[:])
	s.Mod(s, fieldPrime)

	coeffs := make([]*big.Int, t)
	coeffs[0] = s
	for i := 1; i < t; i++ {
		a, err := rand.Int(rand.Reader, fieldPrime)
		if err != nil {
			return nil, tallyerr.Wrap(tallyerr.Internal, err)
		}
		coeffs[i] = a
	}

	shares := make([]Share, n)
	for i := 1; i <= n; i++ {
		x := big.NewInt(int64(i))
		y := evalPoly(coeffs, x)
		shares[i-1] = Share{X: i, Y: y, T: t, N: n}
	}
	return shares, nil
}

func evalPoly(coeffs []*big.Int, x *big.Int) *big.Int {
	// Horner's method, evaluating highest-degree coefficient first.
	y := new(big.Int).Set(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		y.Mul(y, x)
		y.Add(y, coeffs[i])
		y.Mod(y, fieldPrime)
	}
	return y
}

// Reconstruct recovers the shared secret handle H(secret) via Lagrange
// interpolation at x=0, given at least t distinct shares. It fails with
// InsufficientShares if fewer than t are supplied, or InvalidArgument if two
// shares carry the same x.
func Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, tallyerr.New(tallyerr.InsufficientShares, "shamir: no shares supplied")
	}
	t := shares[0].T
	if len(shares) < t {
		return nil, tallyerr.New(tallyerr.InsufficientShares, "shamir: need at least %d shares, got %d", t, len(shares))
	}

	seen := make(map[int]bool, len(shares))
	for _, sh := range shares {
		if seen[sh.X] {
			return nil, tallyerr.New(tallyerr.InvalidArgument, "shamir: duplicate share at x=%d", sh.X)
		}
		seen[sh.X] = true
	}

	secret := big.NewInt(0)
	for i, si := range shares {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, sj := range shares {
			if i == j {
				continue
			}
			// num *= -xj, den *= (xi - xj), both mod fieldPrime.
			negXj := new(big.Int).Neg(big.NewInt(int64(sj.X)))
			negXj.Mod(negXj, fieldPrime)
			num.Mul(num, negXj)
			num.Mod(num, fieldPrime)

			diff := new(big.Int).Sub(big.NewInt(int64(si.X)), big.NewInt(int64(sj.X)))
			diff.Mod(diff, fieldPrime)
			den.Mul(den, diff)
			den.Mod(den, fieldPrime)
		}
		denInv := new(big.Int).ModInverse(den, fieldPrime)
		if denInv == nil {
			return nil, tallyerr.New(tallyerr.Internal, "shamir: no modular inverse for lagrange denominator at x=%d", si.X)
		}
		coeff := new(big.Int).Mul(num, denInv)
		coeff.Mod(coeff, fieldPrime)

		term := new(big.Int).Mul(si.Y, coeff)
		secret.Add(secret, term)
		secret.Mod(secret, fieldPrime)
	}

	// The reconstructed value is a 256-bit digest, zero-padded to 32 bytes.
	out := make([]byte, 32)
	secret.FillBytes(out)
	return out, nil
}

// Verify performs a structural check on share: x in [1, n], y in [0, q),
// and (t, n) matching the configured threshold. Cryptographic
// verifiable-secret-sharing (Feldman/Pedersen commitments) is out of scope;
// this is a sanity check on the share's shape only.
func Verify(share Share, t, n int) error {
	if share.X < 1 || share.X > n {
		return tallyerr.New(tallyerr.InvalidArgument, "shamir: share index %d out of range [1, %d]", share.X, n)
	}
	if share.Y == nil || share.Y.Sign() < 0 || share.Y.Cmp(fieldPrime) >= 0 {
		return tallyerr.New(tallyerr.InvalidArgument, "shamir: share value out of field range")
	}
	if share.T != t || share.N != n {
		return tallyerr.New(tallyerr.InvalidArgument, "shamir: share parameters (t=%d,n=%d) do not match configured (t=%d,n=%d)", share.T, share.N, t, n)
	}
	return nil
}
