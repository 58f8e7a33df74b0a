package threshold

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/luxfi/lamport/primitives"

	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

func bigIntPtr(v int64) *types.BigInt {
	b := types.BigInt(*big.NewInt(v))
	return &b
}

func TestVerifyProofAcceptsValidSignature(t *testing.T) {
	c := qt.New(t)

	kp, err := primitives.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	in := ProofInput{ElectionID: "election-1", TrusteeID: "trustee-1", AggregateDigest: [32]byte{1, 2, 3}}
	sig, err := primitives.Sign(kp.Private, in.Message())
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyProof(kp.Public.Bytes(), sig.Bytes(), in), qt.IsNil)
}

func TestVerifyProofRejectsWrongMessage(t *testing.T) {
	c := qt.New(t)

	kp, err := primitives.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	in := ProofInput{ElectionID: "election-1", TrusteeID: "trustee-1", AggregateDigest: [32]byte{1, 2, 3}}
	sig, err := primitives.Sign(kp.Private, in.Message())
	c.Assert(err, qt.IsNil)

	tampered := ProofInput{ElectionID: "election-1", TrusteeID: "trustee-2", AggregateDigest: [32]byte{1, 2, 3}}
	err = VerifyProof(kp.Public.Bytes(), sig.Bytes(), tampered)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.InvalidArgument)
}

func TestCombineAnySubsetAgrees(t *testing.T) {
	c := qt.New(t)

	// Every trustee's partial carries the identical full decryption, per
	// this core's simplified threshold model; Combine over any 3-of-5
	// subset must reproduce the same vector.
	values := []*types.BigInt{bigIntPtr(7), bigIntPtr(2), bigIntPtr(1)}
	all := make([]*types.PartialDecryption, 5)
	for i := range all {
		all[i] = &types.PartialDecryption{TrusteeIndex: i + 1, Values: values}
	}

	r1, err := Combine(all[:3], 3)
	c.Assert(err, qt.IsNil)
	r2, err := Combine(all[2:5], 3)
	c.Assert(err, qt.IsNil)

	c.Assert(r1[0].Cmp(r2[0]), qt.Equals, 0)
	c.Assert(r1[1].Cmp(r2[1]), qt.Equals, 0)
	c.Assert(r1[2].Cmp(r2[2]), qt.Equals, 0)
	c.Assert(r1[0].Int64(), qt.Equals, int64(7))
	c.Assert(r1[1].Int64(), qt.Equals, int64(2))
	c.Assert(r1[2].Int64(), qt.Equals, int64(1))
}

func TestCombineInsufficientTrustees(t *testing.T) {
	c := qt.New(t)
	values := []*types.BigInt{bigIntPtr(1)}
	partials := []*types.PartialDecryption{
		{TrusteeIndex: 1, Values: values},
		{TrusteeIndex: 2, Values: values},
	}
	_, err := Combine(partials, 3)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.InsufficientTrustees)
}
