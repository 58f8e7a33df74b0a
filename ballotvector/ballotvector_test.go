package ballotvector

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyvault/paillier"
)

func testKey(c *qt.C) *paillier.PrivateKey {
	sk, err := paillier.Keygen(128, rand.Reader)
	c.Assert(err, qt.IsNil)
	return sk
}

func TestEncodeAggregateDecode(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	pk := &sk.PublicKey
	k := 3

	votes := []int{0, 0, 1, 0, 2} // A,A,B,A,C
	var vectors []*Vector
	for _, v := range votes {
		vec, err := EncodeOneHot(pk, k, v, rand.Reader)
		c.Assert(err, qt.IsNil)
		vectors = append(vectors, vec)
	}

	agg, err := Aggregate(pk, vectors...)
	c.Assert(err, qt.IsNil)

	counts, err := Decode(sk, agg, len(votes))
	c.Assert(err, qt.IsNil)
	c.Assert(counts, qt.DeepEquals, []int64{3, 1, 1})
}

func TestDecodeInconsistent(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	pk := &sk.PublicKey

	vec, err := EncodeOneHot(pk, 2, 0, rand.Reader)
	c.Assert(err, qt.IsNil)

	_, err = Decode(sk, vec, 5)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestVectorJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	pk := &sk.PublicKey

	vec, err := EncodeOneHot(pk, 3, 1, rand.Reader)
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(vec)
	c.Assert(err, qt.IsNil)

	var got Vector
	c.Assert(json.Unmarshal(data, &got), qt.IsNil)
	c.Assert(len(got.Ciphertexts), qt.Equals, 3)
	for i := range vec.Ciphertexts {
		c.Assert(got.Ciphertexts[i].Cmp(vec.Ciphertexts[i]), qt.Equals, 0)
	}
}

func TestEncodeUnknownCandidate(t *testing.T) {
	c := qt.New(t)
	sk := testKey(c)
	_, err := EncodeOneHot(&sk.PublicKey, 3, 5, rand.Reader)
	c.Assert(err, qt.Not(qt.IsNil))
}
