package storage

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/storage/memstore"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

func newTestStorage(t *testing.T) *Storage {
	return New(memstore.New())
}

func TestElectionRoundtrip(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	e := &types.Election{
		ID:          uuid.New(),
		Candidates:  types.CandidateList{{Index: 0, Name: "Alice"}, {Index: 1, Name: "Bob"}},
		Status:      types.ElectionActive,
		TotalVoters: 100,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	c.Assert(st.PutElection(e), qt.IsNil)

	got, err := st.GetElection(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.Equals, e.ID)
	c.Assert(got.Candidates, qt.HasLen, 2)

	c.Assert(st.UpdateElectionStatus(e.ID, types.ElectionTallying), qt.IsNil)
	got, err = st.GetElection(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.ElectionTallying)

	_, err = st.GetElection(uuid.New())
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.NotFound)
}

func TestTrusteeEmailUniqueness(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	idx, err := st.NextTrusteeIndex()
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, 1)
	idx, err = st.NextTrusteeIndex()
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, 2)

	t1 := &types.Trustee{ID: uuid.New(), Name: "A", Email: "a@example.org", Index: 1, Status: types.TrusteeActive}
	c.Assert(st.PutTrustee(t1), qt.IsNil)

	t2 := &types.Trustee{ID: uuid.New(), Name: "B", Email: "a@example.org", Index: 2, Status: types.TrusteeActive}
	err = st.PutTrustee(t2)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.InvalidArgument)

	found, err := st.FindTrusteeByEmail("a@example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(found.ID, qt.Equals, t1.ID)

	all, err := st.ListTrustees()
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)
}

func TestBallotNonceDeduplication(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	electionID := uuid.New()
	b := &types.EncryptedBallot{
		ID:         uuid.New(),
		ElectionID: electionID,
		Nonce:      "nonce-1",
		CreatedAt:  time.Now().UTC(),
	}
	c.Assert(st.PutBallot(b), qt.IsNil)

	dup := &types.EncryptedBallot{
		ID:         uuid.New(),
		ElectionID: electionID,
		Nonce:      "nonce-1",
		CreatedAt:  time.Now().UTC(),
	}
	err := st.PutBallot(dup)
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.DuplicateBallot)

	found, err := st.FindBallotByNonce(electionID, "nonce-1")
	c.Assert(err, qt.IsNil)
	c.Assert(found.ID, qt.Equals, b.ID)

	untallied, err := st.ListUntalliedBallots(electionID)
	c.Assert(err, qt.IsNil)
	c.Assert(untallied, qt.HasLen, 1)

	c.Assert(st.MarkBallotsTallied(electionID, []uuid.UUID{b.ID}), qt.IsNil)
	untallied, err = st.ListUntalliedBallots(electionID)
	c.Assert(err, qt.IsNil)
	c.Assert(untallied, qt.HasLen, 0)
}

func TestBallotsScopedPerElection(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	e1, e2 := uuid.New(), uuid.New()
	c.Assert(st.PutBallot(&types.EncryptedBallot{ID: uuid.New(), ElectionID: e1, Nonce: "n"}), qt.IsNil)
	c.Assert(st.PutBallot(&types.EncryptedBallot{ID: uuid.New(), ElectionID: e2, Nonce: "n"}), qt.IsNil)

	b1, err := st.ListUntalliedBallots(e1)
	c.Assert(err, qt.IsNil)
	c.Assert(b1, qt.HasLen, 1)

	b2, err := st.ListUntalliedBallots(e2)
	c.Assert(err, qt.IsNil)
	c.Assert(b2, qt.HasLen, 1)
}

func TestPartialIncrementsSessionCounter(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	electionID := uuid.New()
	sess := &types.TallySession{
		ID:               uuid.New(),
		ElectionID:       electionID,
		Status:           types.SessionAggregating,
		RequiredTrustees: 2,
		StartedAt:        time.Now().UTC(),
	}
	c.Assert(st.PutSession(sess), qt.IsNil)

	trusteeA, trusteeB := uuid.New(), uuid.New()
	updated, err := st.PutPartial(&types.PartialDecryption{ID: uuid.New(), ElectionID: electionID, TrusteeID: trusteeA, TrusteeIndex: 1})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.CompletedTrustees, qt.Equals, 1)
	c.Assert(updated.CanFinalize(), qt.IsFalse)

	updated, err = st.PutPartial(&types.PartialDecryption{ID: uuid.New(), ElectionID: electionID, TrusteeID: trusteeB, TrusteeIndex: 2})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.CompletedTrustees, qt.Equals, 2)
	c.Assert(updated.CanFinalize(), qt.IsTrue)

	_, err = st.PutPartial(&types.PartialDecryption{ID: uuid.New(), ElectionID: electionID, TrusteeID: trusteeA, TrusteeIndex: 1})
	c.Assert(tallyerr.KindOf(err), qt.Equals, tallyerr.DuplicateTrustee)

	all, err := st.ListPartials(electionID)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 2)
}

func TestAuditSequenceAndPagination(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	electionID := uuid.New()
	for i := 0; i < 5; i++ {
		c.Assert(st.AppendAudit(&types.AuditEntry{
			ID:         uuid.New(),
			ElectionID: &electionID,
			Operation:  types.AuditSubmitBallot,
			Success:    true,
			CreatedAt:  time.Now().UTC(),
		}), qt.IsNil)
	}

	page, err := st.ListAudit(electionID, 2, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(page, qt.HasLen, 2)
	c.Assert(page[0].Sequence, qt.Equals, uint64(5))
	c.Assert(page[1].Sequence, qt.Equals, uint64(4))

	page, err = st.ListAudit(electionID, 2, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(page, qt.HasLen, 1)
	c.Assert(page[0].Sequence, qt.Equals, uint64(1))
}

func TestIdempotencyRecord(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	var out types.EncryptedBallot
	found, err := st.GetIdempotent("submit_ballot:abc", &out)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)

	b := types.EncryptedBallot{ID: uuid.New(), Nonce: "abc"}
	c.Assert(st.PutIdempotent("submit_ballot:abc", &b), qt.IsNil)

	found, err = st.GetIdempotent("submit_ballot:abc", &out)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(out.ID, qt.Equals, b.ID)
}

func TestLockSerializesPerElection(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	defer st.Close()

	electionID := uuid.New()
	unlock := st.Lock(electionID)

	done := make(chan struct{})
	go func() {
		unlock2 := st.Lock(electionID)
		unlock2()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Lock should not have acquired before first was released")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done
}
