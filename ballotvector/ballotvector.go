// Package ballotvector implements the one-hot ballot codec: encoding a vote
// for a single candidate into a length-k vector of Paillier ciphertexts,
// elementwise homomorphic aggregation of many such vectors, and decoding an
// aggregate's decrypted plaintexts back into per-candidate counts.
package ballotvector

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/tallyvault/paillier"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// Vector is a length-k vector of Paillier ciphertexts, one per candidate.
// Producers MUST NOT embed per-ciphertext randomness anywhere in the
// serialized form: the canonical wire payload carries only the ciphertext
// digits, so two independently computed aggregates serialize identically.
type Vector struct {
	Ciphertexts []*big.Int
}

// EncodeOneHot builds the one-hot encryption of a vote for candidate index
// `candidate` among k candidates: Paillier-encrypts 1 at position candidate
// and 0 everywhere else.
func EncodeOneHot(pk *paillier.PublicKey, k int, candidate int, rnd io.Reader) (*Vector, error) {
	if k <= 0 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "ballotvector: candidate count must be positive")
	}
	if candidate < 0 || candidate >= k {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "ballotvector: unknown candidate index %d", candidate)
	}
	cts := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		m := big.NewInt(0)
		if i == candidate {
			m = big.NewInt(1)
		}
		ct, err := paillier.Encrypt(pk, m, rnd)
		if err != nil {
			return nil, err
		}
		cts[i] = ct
	}
	return &Vector{Ciphertexts: cts}, nil
}

// Aggregate homomorphically sums any number of same-length vectors into one,
// elementwise. It fails with InvalidArgument if the vectors don't all share
// the same length.
func Aggregate(pk *paillier.PublicKey, vectors ...*Vector) (*Vector, error) {
	if len(vectors) == 0 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "ballotvector: no vectors to aggregate")
	}
	k := len(vectors[0].Ciphertexts)
	for _, v := range vectors {
		if len(v.Ciphertexts) != k {
			return nil, tallyerr.New(tallyerr.InvalidArgument, "ballotvector: vector length mismatch")
		}
	}
	agg := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		sum := vectors[0].Ciphertexts[i]
		for _, v := range vectors[1:] {
			var err error
			sum, err = paillier.Add(pk, sum, v.Ciphertexts[i])
			if err != nil {
				return nil, err
			}
		}
		agg[i] = sum
	}
	return &Vector{Ciphertexts: agg}, nil
}

// Decode decrypts every element of agg under sk and validates the resulting
// per-candidate counts via ValidateCounts.
func Decode(sk *paillier.PrivateKey, agg *Vector, totalBallots int) ([]int64, error) {
	plaintexts := make([]*big.Int, len(agg.Ciphertexts))
	for i, ct := range agg.Ciphertexts {
		m, err := paillier.Decrypt(sk, ct)
		if err != nil {
			return nil, err
		}
		plaintexts[i] = m
	}
	return ValidateCounts(plaintexts, totalBallots)
}

// ValidateCounts checks that plaintexts form a valid tally of totalBallots
// ballots: every entry in [0, totalBallots] and their sum equal to
// totalBallots. A mismatch fails with TallyInconsistent. This is the shared
// assertion spec.md §4.C requires of a decoded aggregate, used both by
// Decode (which decrypts under a local private key) and by the threshold
// orchestrator (whose plaintext vector is already the output of combining
// partial decryptions, never re-decrypted here).
func ValidateCounts(plaintexts []*big.Int, totalBallots int) ([]int64, error) {
	counts := make([]int64, len(plaintexts))
	var sum int64
	for i, m := range plaintexts {
		if !m.IsInt64() {
			return nil, tallyerr.New(tallyerr.TallyInconsistent, "ballotvector: decrypted count for candidate %d overflows int64", i)
		}
		v := m.Int64()
		if v < 0 || v > int64(totalBallots) {
			return nil, tallyerr.New(tallyerr.TallyInconsistent, "ballotvector: candidate %d count %d out of range [0, %d]", i, v, totalBallots)
		}
		counts[i] = v
		sum += v
	}
	if sum != int64(totalBallots) {
		return nil, tallyerr.New(tallyerr.TallyInconsistent, "ballotvector: counts sum to %d, want %d", sum, totalBallots)
	}
	return counts, nil
}

// wireVector is the canonical JSON/CBOR shape: ciphertext digits as decimal
// strings via types.BigInt, never as JSON numbers (which would risk
// precision loss for values with thousands of bits).
type wireVector struct {
	Ciphertexts []*types.BigInt `json:"ciphertexts" cbor:"0,keyasint"`
}

// MarshalJSON implements json.Marshaler using the canonical wire shape.
func (v *Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var w wireVector
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("ballotvector: %w", err)
	}
	v.fromWire(&w)
	return nil
}

// MarshalCBOR implements cbor.Marshaler using the canonical wire shape.
func (v *Vector) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(v.toWire())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (v *Vector) UnmarshalCBOR(data []byte) error {
	var w wireVector
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("ballotvector: %w", err)
	}
	v.fromWire(&w)
	return nil
}

func (v *Vector) toWire() *wireVector {
	digits := make([]*types.BigInt, len(v.Ciphertexts))
	for i, c := range v.Ciphertexts {
		digits[i] = (*types.BigInt)(c)
	}
	return &wireVector{Ciphertexts: digits}
}

func (v *Vector) fromWire(w *wireVector) {
	cts := make([]*big.Int, len(w.Ciphertexts))
	for i, d := range w.Ciphertexts {
		cts[i] = d.ToInt()
	}
	v.Ciphertexts = cts
}
