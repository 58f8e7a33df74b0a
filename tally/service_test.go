package tally

import (
	"crypto/rand"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/luxfi/lamport/primitives"

	"github.com/vocdoni/tallyvault/ballotvector"
	"github.com/vocdoni/tallyvault/config"
	"github.com/vocdoni/tallyvault/storage"
	"github.com/vocdoni/tallyvault/storage/memstore"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/threshold"
	"github.com/vocdoni/tallyvault/types"
)

// testConfig mirrors config.Default but with a small Paillier modulus, so
// keygen and ballot encryption stay fast, following paillier_test.go's own
// Keygen(128, ...) convention.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.PaillierKeyBits = 256
	cfg.WorkerParallelism = 2
	return cfg
}

func newTestService(t *testing.T) (*Service, storage.Port) {
	store := storage.New(memstore.New())
	t.Cleanup(store.Close)
	return New(store, testConfig()), store
}

// registeredTrustee is one trustee plus its out-of-band Lamport private
// key, reconstructed from RegisterTrusteeResult.PrivateKeyHex exactly as a
// real trustee client would.
type registeredTrustee struct {
	id   uuid.UUID
	priv *primitives.PrivateKey
}

func mustRegisterTrustee(c *qt.C, s *Service, name, email string) *registeredTrustee {
	res, err := s.RegisterTrustee("admin", name, email)
	c.Assert(err, qt.IsNil)
	priv, err := threshold.PrivateKeyFromBytes(types.HexStringToHexBytes(res.PrivateKeyHex))
	c.Assert(err, qt.IsNil)
	return &registeredTrustee{id: res.TrusteeID, priv: priv}
}

func registerTrustees(c *qt.C, s *Service, n int) []*registeredTrustee {
	out := make([]*registeredTrustee, n)
	for i := range out {
		out[i] = mustRegisterTrustee(c, s, "trustee", emailFor(i))
	}
	return out
}

// submitVote encrypts a one-hot ballot for candidate under election's
// public key and submits it.
func submitVote(c *qt.C, s *Service, election *types.Election, candidate int, nonce string) {
	pk := publicKeyFromParams(election.Params.N.ToInt())
	vec, err := ballotvector.EncodeOneHot(pk, len(election.Candidates), candidate, rand.Reader)
	c.Assert(err, qt.IsNil)
	ctx := RequestContext{ElectionID: election.ID}
	_, err = s.SubmitBallot(ctx, vectorToCiphertexts(vec), nil, nonce)
	c.Assert(err, qt.IsNil)
}

// signPartial produces a valid partial_decrypt proof for trustee against
// electionID's current session aggregate.
func signPartial(c *qt.C, store storage.Port, electionID uuid.UUID, trustee *registeredTrustee) []byte {
	sess, err := store.GetSession(electionID)
	c.Assert(err, qt.IsNil)
	in := threshold.ProofInput{
		ElectionID:      electionID.String(),
		TrusteeID:       trustee.id.String(),
		AggregateDigest: aggregateDigest(sess.Aggregate),
	}
	sig, err := primitives.Sign(trustee.priv, in.Message())
	c.Assert(err, qt.IsNil)
	return sig.Bytes()
}

func emailFor(i int) string {
	return string(rune('a'+i)) + "@example.org"
}

func TestTallyHappyPath(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B", "C"}, 10)
	c.Assert(err, qt.IsNil)

	trustees := registerTrustees(c, s, 5)
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)

	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 0, "n2")
	submitVote(c, s, election, 0, "n3")
	submitVote(c, s, election, 1, "n4")
	submitVote(c, s, election, 2, "n5")

	startRes, err := s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(startRes.TotalVotes, qt.Equals, 5)
	c.Assert(startRes.RequiredTrustees, qt.Equals, 3)

	for i := 0; i < 3; i++ {
		trustee := trustees[i]
		proof := signPartial(c, store, election.ID, trustee)
		res, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
		c.Assert(err, qt.IsNil)
		c.Assert(res.Completed, qt.Equals, i+1)
	}

	final, err := s.FinalizeTally(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(final.Total, qt.Equals, int64(5))
	c.Assert(final.FinalTally["A"], qt.Equals, int64(3))
	c.Assert(final.FinalTally["B"], qt.Equals, int64(1))
	c.Assert(final.FinalTally["C"], qt.Equals, int64(1))

	verify, err := s.VerifyResult(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(verify.IsValid, qt.IsTrue)
	c.Assert(verify.RecomputedHash, qt.Equals, verify.StoredHash)
}

func TestFinalizeTallyInsufficientTrustees(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)

	trustees := registerTrustees(c, s, 5)
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)

	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 1, "n2")

	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)

	// Only 2 of the required 3 trustees submit partials.
	for i := 0; i < 2; i++ {
		trustee := trustees[i]
		proof := signPartial(c, store, election.ID, trustee)
		_, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
		c.Assert(err, qt.IsNil)
	}

	_, err = s.FinalizeTally(RequestContext{ElectionID: election.ID})
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.InsufficientTrustees)
}

func TestPartialDecryptIdempotentReplay(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)
	trustees := registerTrustees(c, s, 5)
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)
	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 1, "n2")
	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)

	trustee := trustees[0]
	proof := signPartial(c, store, election.ID, trustee)

	res1, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
	c.Assert(err, qt.IsNil)

	res2, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(res2.Completed, qt.Equals, res1.Completed)
}

func TestFinalizeTallyDetectsTamperedAggregate(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)
	trustees := registerTrustees(c, s, 5)
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)
	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 1, "n2")
	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)

	for i := 0; i < 3; i++ {
		trustee := trustees[i]
		proof := signPartial(c, store, election.ID, trustee)
		_, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
		c.Assert(err, qt.IsNil)
	}

	// Corrupt the persisted aggregate directly, simulating storage-level
	// tampering after the partials were already accepted against the
	// genuine aggregate.
	sess, err := store.GetSession(election.ID)
	c.Assert(err, qt.IsNil)
	corrupted := sess.Aggregate[0].ToInt()
	corrupted.Add(corrupted, corrupted)
	sess.Aggregate[0] = (*types.BigInt)(corrupted)
	c.Assert(store.UpdateSession(sess), qt.IsNil)

	_, err = s.FinalizeTally(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.Not(qt.IsNil))

	failedSession, err := store.GetSession(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(failedSession.Status, qt.Equals, types.SessionFailed)

	failedElection, err := store.GetElection(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(failedElection.Status, qt.Equals, types.ElectionFailed)

	_, err = store.GetResult(election.ID)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.NotFound)
}

func TestStartTallyingRejectsEmptyElection(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)

	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.InvalidArgument)

	_, err = store.GetSession(election.ID)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.NotFound)
}

func TestPartialDecryptRejectsTrusteeWithoutShare(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)

	// Register one trustee beyond cfg.ThresholdN=5 before issuing shares, so
	// IssueKeyShares's active[:n] slice (tally/trustee.go) leaves it out.
	trustees := registerTrustees(c, s, 6)
	unsharedTrustee := trustees[5]
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)

	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 1, "n2")
	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)

	proof := signPartial(c, store, election.ID, unsharedTrustee)
	_, err = s.PartialDecrypt(RequestContext{ElectionID: election.ID}, unsharedTrustee.id, proof)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.NotAuthorized)

	_, shareErr := store.GetShare(election.ID, unsharedTrustee.id)
	c.Assert(tallyerr.KindOf(shareErr), qt.Equals, tallyerr.NotFound)
}

func TestVerifyResultDetectsTamperedResult(t *testing.T) {
	c := qt.New(t)
	s, store := newTestService(t)

	election, err := s.CreateElection("admin", []string{"A", "B"}, 10)
	c.Assert(err, qt.IsNil)
	trustees := registerTrustees(c, s, 5)
	_, err = s.IssueKeyShares("admin", election.ID)
	c.Assert(err, qt.IsNil)
	submitVote(c, s, election, 0, "n1")
	submitVote(c, s, election, 1, "n2")
	_, err = s.StartTallying(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)
	for i := 0; i < 3; i++ {
		trustee := trustees[i]
		proof := signPartial(c, store, election.ID, trustee)
		_, err := s.PartialDecrypt(RequestContext{ElectionID: election.ID}, trustee.id, proof)
		c.Assert(err, qt.IsNil)
	}
	_, err = s.FinalizeTally(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)

	result, err := store.GetResult(election.ID)
	c.Assert(err, qt.IsNil)
	result.FinalTally["A"] = 999
	c.Assert(store.PutResult(result), qt.IsNil)

	verify, err := s.VerifyResult(RequestContext{ElectionID: election.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(verify.IsValid, qt.IsFalse)
	c.Assert(verify.RecomputedHash, qt.Not(qt.Equals), verify.StoredHash)
}
