package tally

import (
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/metrics"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// SubmitBallot accepts one encrypted, one-hot ballot for electionID
// (spec.md §6). Idempotent by nonce: resubmitting the same nonce returns
// the original ballot id rather than erroring, per spec.md §6's "Yes (by
// nonce)". The ciphertext vector and any ZK proof blob are stored verbatim
// and never validated cryptographically here (spec.md §1: ballot-validity
// proofs are echoed, not enforced, by this core).
func (s *Service) SubmitBallot(ctx RequestContext, vector types.CiphertextVector, proof types.HexBytes, nonce string) (uuid.UUID, error) {
	electionID := ctx.ElectionID
	unlock := s.store.Lock(electionID)
	defer unlock()

	if nonce == "" {
		return uuid.Nil, tallyerr.New(tallyerr.InvalidArgument, "tally: submit_ballot requires a nonce")
	}

	election, err := s.store.GetElection(electionID)
	if err != nil {
		return uuid.Nil, err
	}
	if election.Status != types.ElectionActive {
		return uuid.Nil, tallyerr.New(tallyerr.InvalidState, "tally: election %s is not accepting ballots (status %s)", electionID, election.Status)
	}
	if len(vector) != len(election.Candidates) {
		return uuid.Nil, tallyerr.New(tallyerr.InvalidArgument, "tally: ballot vector has %d entries, election has %d candidates", len(vector), len(election.Candidates))
	}

	if existing, err := s.store.FindBallotByNonce(electionID, nonce); err == nil {
		return existing.ID, nil
	} else if tallyerr.KindOf(err) != tallyerr.NotFound {
		return uuid.Nil, err
	}

	ballot := &types.EncryptedBallot{
		ID:         uuid.New(),
		ElectionID: electionID,
		Vector:     vector,
		Proof:      proof,
		Nonce:      nonce,
		Tallied:    false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.PutBallot(ballot); err != nil {
		// A DuplicateBallot here is a genuine race against a concurrent
		// submission of the same nonce that lost the FindBallotByNonce
		// check above; the per-election lock makes this unreachable in
		// practice, but propagate rather than mask it.
		return uuid.Nil, err
	}

	metrics.BallotsSubmitted.WithLabelValues(electionID.String()).Inc()

	if err := s.audit.Record(&electionID, types.AuditSubmitBallot, ctx.Audit, true, map[string]any{
		"ballotId": ballot.ID.String(),
	}); err != nil {
		return uuid.Nil, err
	}
	return ballot.ID, nil
}
