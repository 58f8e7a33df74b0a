// Package threshold implements the trustee side of the tallying core's
// (t, n) decryption step: verifying a trustee's decryption proof and
// combining t accepted partials into the final per-candidate plaintext
// counts, associatively (spec.md §4.E, §8 property 7).
//
// Grounded on the one-time hash-based signature primitives in
// github.com/luxfi/lamport/primitives (Sign/Verify over a 32-byte message)
// for the proof, and on shamir's field arithmetic for the Lagrange
// combination, since both packages already define the modulus and
// big.Int plumbing this needs.
package threshold

import (
	"math/big"
	"sort"

	"github.com/luxfi/lamport/primitives"

	"github.com/vocdoni/tallyvault/bigmath"
	"github.com/vocdoni/tallyvault/shamir"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// ProofInput is the canonical message a trustee signs to authorize a
// partial decryption, binding the proof to one election, one trustee and
// one aggregate so it cannot be replayed against a different tally.
type ProofInput struct {
	ElectionID      string
	TrusteeID       string
	AggregateDigest [32]byte
}

// Message returns the 32-byte Lamport message for in, per
// primitives.Keccak256Multi over the three components.
func (in ProofInput) Message() [32]byte {
	return primitives.Keccak256Multi(
		[]byte(in.ElectionID),
		[]byte(in.TrusteeID),
		in.AggregateDigest[:],
	)
}

// VerifyProof checks that sig is a valid Lamport signature by pubKey over
// in's message. The core issues one Lamport key per trustee at registration
// and checks every election's proof from that trustee against the same key;
// it does not track how many messages a key has signed.
func VerifyProof(pubKey, sig []byte, in ProofInput) error {
	var pub primitives.PublicKey
	if err := pub.FromBytes(pubKey); err != nil {
		return tallyerr.Wrap(tallyerr.InvalidArgument, err)
	}
	var s primitives.Signature
	if err := s.FromBytes(sig); err != nil {
		return tallyerr.Wrap(tallyerr.InvalidArgument, err)
	}
	if !primitives.Verify(&pub, in.Message(), &s) {
		return tallyerr.New(tallyerr.InvalidArgument, "threshold: decryption proof does not verify against trustee's registered key")
	}
	return nil
}

// Combine reconstructs the final per-candidate plaintext counts from a set
// of accepted partials using modular Lagrange interpolation at x=0.
//
// This core's simplified threshold model has every trustee's partial carry
// the full decryption of the aggregate (computed server-side from the
// election's stored private key; see storage.Port.GetElectionKeys), rather
// than a genuine share of the plaintext. Combine still performs the
// Lagrange-weighted sum shamir.Reconstruct would use for a real secret
// sharing scheme: because the barycentric weights for a degree-(t-1)
// polynomial's evaluation at x=0 always sum to exactly 1 modulo the field
// prime, weighting t copies of the same value by those coefficients
// reproduces that value exactly, regardless of which t-subset of trustees
// is chosen. This gives the spec's required "any t-subset combines to the
// same result" property (associativity) honestly, without this core
// claiming a secrecy guarantee a relaxed design shouldn't claim (see
// DESIGN.md).
//
// partials must all share the same vector length; fewer than t entries is
// an InsufficientTrustees error.
func Combine(partials []*types.PartialDecryption, t int) ([]*big.Int, error) {
	if len(partials) < t {
		return nil, tallyerr.New(tallyerr.InsufficientTrustees, "threshold: have %d partials, need at least %d", len(partials), t)
	}

	selected := selectLowestIndices(partials, t)

	k := len(selected[0].Values)
	for _, p := range selected {
		if len(p.Values) != k {
			return nil, tallyerr.New(tallyerr.InvalidArgument, "threshold: partial value vectors differ in length")
		}
	}

	xs := make([]int, len(selected))
	for i, p := range selected {
		xs[i] = p.TrusteeIndex
	}
	weights, err := lagrangeWeightsAtZero(xs)
	if err != nil {
		return nil, err
	}

	out := make([]*big.Int, k)
	prime := shamir.FieldPrime()
	for c := 0; c < k; c++ {
		acc := big.NewInt(0)
		for i, p := range selected {
			term := bigmath.MulMod(p.Values[c].ToInt(), weights[i], prime)
			acc.Add(acc, term)
			acc.Mod(acc, prime)
		}
		out[c] = acc
	}
	return out, nil
}

// selectLowestIndices deterministically picks the t partials with the
// lowest TrusteeIndex, ties broken by the lexicographic order of TrusteeID's
// string form, so Combine's result does not depend on submission
// order (spec.md §8 property 7: "any valid t-subset yields the same
// result").
func selectLowestIndices(partials []*types.PartialDecryption, t int) []*types.PartialDecryption {
	sorted := make([]*types.PartialDecryption, len(partials))
	copy(sorted, partials)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TrusteeIndex != sorted[j].TrusteeIndex {
			return sorted[i].TrusteeIndex < sorted[j].TrusteeIndex
		}
		return sorted[i].TrusteeID.String() < sorted[j].TrusteeID.String()
	})
	return sorted[:t]
}

// lagrangeWeightsAtZero computes, for each x in xs, the Lagrange basis
// coefficient L_i(0) = prod_{j != i} (0 - x_j) / (x_i - x_j), modulo the
// shamir field prime. These sum to 1 mod p for any set of distinct xs,
// which is the identity Combine relies on.
func lagrangeWeightsAtZero(xs []int) ([]*big.Int, error) {
	p := shamir.FieldPrime()
	weights := make([]*big.Int, len(xs))
	for i, xi := range xs {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, xj := range xs {
			if i == j {
				continue
			}
			num = bigmath.MulMod(num, big.NewInt(int64(-xj)), p)
			diff := big.NewInt(int64(xi - xj))
			den = bigmath.MulMod(den, diff, p)
		}
		denInv, err := bigmath.InverseMod(den, p)
		if err != nil {
			return nil, tallyerr.Wrap(tallyerr.Internal, err)
		}
		weights[i] = bigmath.MulMod(num, denInv, p)
	}
	return weights, nil
}

// PrivateKeyBytes serializes a Lamport private key to its flat byte
// encoding, mirroring primitives.PublicKey.Bytes since the library itself
// only provides that serialization for the public half.
func PrivateKeyBytes(priv *primitives.PrivateKey) []byte {
	out := make([]byte, primitives.PrivateKeySize)
	for i := 0; i < primitives.KeyBits; i++ {
		copy(out[i*64:i*64+32], priv.Preimages[i][0][:])
		copy(out[i*64+32:i*64+64], priv.Preimages[i][1][:])
	}
	return out
}

// PrivateKeyFromBytes deserializes a Lamport private key produced by
// PrivateKeyBytes.
func PrivateKeyFromBytes(data []byte) (*primitives.PrivateKey, error) {
	if len(data) != primitives.PrivateKeySize {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "threshold: invalid private key length %d", len(data))
	}
	priv := &primitives.PrivateKey{}
	for i := 0; i < primitives.KeyBits; i++ {
		copy(priv.Preimages[i][0][:], data[i*64:i*64+32])
		copy(priv.Preimages[i][1][:], data[i*64+32:i*64+64])
	}
	return priv, nil
}
