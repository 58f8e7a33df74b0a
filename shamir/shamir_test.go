package shamir

import (
	"crypto/sha256"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSplitReconstruct(t *testing.T) {
	c := qt.New(t)
	secret := []byte("paillier private key material")
	want := sha256.Sum256(secret)

	shares, err := Split(secret, 3, 5)
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 5)

	got, err := Reconstruct(shares[:3])
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, want[:])

	// Any other size-t subset reconstructs the same value.
	got2, err := Reconstruct([]Share{shares[1], shares[3], shares[4]})
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.DeepEquals, want[:])
}

func TestReconstructInsufficientShares(t *testing.T) {
	c := qt.New(t)
	shares, err := Split([]byte("secret"), 3, 5)
	c.Assert(err, qt.IsNil)

	_, err = Reconstruct(shares[:2])
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestReconstructDuplicatePoint(t *testing.T) {
	c := qt.New(t)
	shares, err := Split([]byte("secret"), 2, 5)
	c.Assert(err, qt.IsNil)

	_, err = Reconstruct([]Share{shares[0], shares[0]})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestVerify(t *testing.T) {
	c := qt.New(t)
	shares, err := Split([]byte("secret"), 3, 5)
	c.Assert(err, qt.IsNil)

	c.Assert(Verify(shares[0], 3, 5), qt.IsNil)
	c.Assert(Verify(shares[0], 2, 5), qt.Not(qt.IsNil))

	bad := shares[0]
	bad.X = 0
	c.Assert(Verify(bad, 3, 5), qt.Not(qt.IsNil))
}

func TestSplitInvalidParams(t *testing.T) {
	c := qt.New(t)
	_, err := Split([]byte("secret"), 6, 5)
	c.Assert(err, qt.Not(qt.IsNil))
}
