package tally

import (
	"crypto/sha256"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/ballotvector"
	"github.com/vocdoni/tallyvault/digest"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/metrics"
	"github.com/vocdoni/tallyvault/paillier"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/threshold"
	"github.com/vocdoni/tallyvault/types"
)

// PartialDecrypt records trusteeID's decryption proof over the session's
// pinned aggregate and, once verified, computes its partial plaintext vector
// (spec.md §4.E). This core's simplified threshold model has that vector
// carry the aggregate's full decryption, computed here from the election's
// stored private key rather than reconstructed from trusteeID's Shamir
// share (see threshold.Combine's doc comment). Idempotent by
// (election, trustee): a replayed call returns the cached acceptance rather
// than erroring with DuplicateTrustee; the replayed proof is not checked.
func (s *Service) PartialDecrypt(ctx RequestContext, trusteeID uuid.UUID, proof types.HexBytes) (*PartialDecryptResult, error) {
	electionID := ctx.ElectionID
	unlock := s.store.Lock(electionID)
	defer unlock()

	idemKey := "partial_decrypt:" + electionID.String() + ":" + trusteeID.String()
	var cached PartialDecryptResult
	if found, err := s.store.GetIdempotent(idemKey, &cached); err != nil {
		return nil, err
	} else if found {
		return &cached, nil
	}

	session, err := s.store.GetSession(electionID)
	if err != nil {
		return nil, err
	}
	if session.Status != types.SessionAggregating && session.Status != types.SessionDecrypting {
		return nil, tallyerr.New(tallyerr.InvalidState, "tally: session for election %s is in state %s, not accepting partials", electionID, session.Status)
	}

	trustee, err := s.store.GetTrustee(trusteeID)
	if err != nil {
		return nil, err
	}
	if trustee.Status != types.TrusteeActive {
		return nil, tallyerr.New(tallyerr.NotAuthorized, "tally: trustee %s is not active", trusteeID)
	}
	if _, err := s.store.GetShare(electionID, trusteeID); err != nil {
		if tallyerr.IsKind(err, tallyerr.NotFound) {
			return nil, tallyerr.New(tallyerr.NotAuthorized, "tally: trustee %s was not issued a key share for election %s", trusteeID, electionID)
		}
		return nil, err
	}

	aggDigest := aggregateDigest(session.Aggregate)
	proofInput := threshold.ProofInput{
		ElectionID:      electionID.String(),
		TrusteeID:       trusteeID.String(),
		AggregateDigest: aggDigest,
	}
	verifyErr := threshold.VerifyProof(trustee.LamportPublicKey, proof, proofInput)

	proofRow := &types.VerificationProof{
		ID:         uuid.New(),
		ElectionID: electionID,
		ProofType:  types.ProofLamportPartial,
		ProofData:  proof,
		IsValid:    verifyErr == nil,
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.store.PutVerificationProof(proofRow); err != nil {
		return nil, err
	}
	if verifyErr != nil {
		if err := s.audit.Record(&electionID, types.AuditPartialDecrypt, ctx.Audit, false, map[string]any{
			"trusteeId": trusteeID.String(),
			"reason":    verifyErr.Error(),
		}); err != nil {
			return nil, err
		}
		return nil, verifyErr
	}

	keys, err := s.store.GetElectionKeys(electionID)
	if err != nil {
		return nil, err
	}
	values, err := decryptAggregate(keys, session.Aggregate)
	if err != nil {
		return nil, err
	}

	if session.Status == types.SessionAggregating {
		session.Status = types.SessionDecrypting
		if err := s.store.UpdateSession(session); err != nil {
			return nil, err
		}
	}

	partial := &types.PartialDecryption{
		ID:           uuid.New(),
		ElectionID:   electionID,
		TrusteeID:    trusteeID,
		TrusteeIndex: trustee.Index,
		Values:       values,
		Proof:        proof,
		Verified:     true,
		CreatedAt:    time.Now().UTC(),
	}
	updated, err := s.store.PutPartial(partial)
	if err != nil {
		return nil, err
	}

	metrics.PartialsAccepted.WithLabelValues(electionID.String()).Inc()
	log.Infow("partial decryption accepted", "electionId", electionID, "trusteeId", trusteeID, "completed", updated.CompletedTrustees, "required", updated.RequiredTrustees)

	if err := s.audit.Record(&electionID, types.AuditPartialDecrypt, ctx.Audit, true, map[string]any{
		"trusteeId": trusteeID.String(),
	}); err != nil {
		return nil, err
	}

	result := PartialDecryptResult{
		Completed:   updated.CompletedTrustees,
		Required:    updated.RequiredTrustees,
		CanFinalize: updated.CanFinalize(),
	}
	if err := s.store.PutIdempotent(idemKey, result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FinalizeTally combines at least t accepted partials into the final
// per-candidate counts, verifies them against the session's total ballot
// count, and publishes an ElectionResult with its verification digest
// (spec.md §4.C, §4.I). A TallyInconsistent mismatch (tampered ciphertext,
// spec.md §8 scenario 4) fails the session and election rather than
// publishing a result. Idempotent by election_id.
func (s *Service) FinalizeTally(ctx RequestContext) (*FinalizeTallyResult, error) {
	electionID := ctx.ElectionID
	unlock := s.store.Lock(electionID)
	defer unlock()

	idemKey := "finalize_tally:" + electionID.String()
	var cached FinalizeTallyResult
	if found, err := s.store.GetIdempotent(idemKey, &cached); err != nil {
		return nil, err
	} else if found {
		return &cached, nil
	}

	start := time.Now()
	defer func() { metrics.FinalizeLatency.Observe(time.Since(start).Seconds()) }()

	session, err := s.store.GetSession(electionID)
	if err != nil {
		return nil, err
	}
	if session.Status != types.SessionDecrypting {
		return nil, tallyerr.New(tallyerr.InvalidState, "tally: session for election %s is in state %s, not ready to finalize", electionID, session.Status)
	}
	if !session.CanFinalize() {
		return nil, tallyerr.New(tallyerr.InsufficientTrustees, "tally: election %s has %d/%d trustee partials", electionID, session.CompletedTrustees, session.RequiredTrustees)
	}

	election, err := s.store.GetElection(electionID)
	if err != nil {
		return nil, err
	}

	partials, err := s.store.ListPartials(electionID)
	if err != nil {
		return nil, err
	}

	session.Status = types.SessionCombining
	if err := s.store.UpdateSession(session); err != nil {
		return nil, err
	}

	plaintexts, err := threshold.Combine(partials, session.RequiredTrustees)
	if err != nil {
		return nil, s.failSession(ctx, session, election, err)
	}
	keys, err := s.store.GetElectionKeys(electionID)
	if err != nil {
		return nil, err
	}
	direct, err := decryptAggregate(keys, session.Aggregate)
	if err != nil {
		return nil, s.failSession(ctx, session, election, err)
	}
	for i, d := range direct {
		if len(direct) != len(plaintexts) || d.ToInt().Cmp(plaintexts[i]) != 0 {
			return nil, s.failSession(ctx, session, election, tallyerr.New(tallyerr.TallyInconsistent, "tally: combined partials do not match the session aggregate for election %s", electionID))
		}
	}
	counts, err := ballotvector.ValidateCounts(plaintexts, session.TotalBallots)
	if err != nil {
		return nil, s.failSession(ctx, session, election, err)
	}

	finalTally := make(map[string]int64, len(counts))
	for _, c := range election.Candidates {
		if int(c.Index) < len(counts) {
			finalTally[c.Name] = counts[c.Index]
		}
	}
	total := int64(session.TotalBallots)

	hash := digest.Digest(digest.Input{ElectionID: electionID, FinalTally: finalTally, TotalVotes: total})

	now := time.Now().UTC()
	result := &types.ElectionResult{
		ID:               uuid.New(),
		ElectionID:       electionID,
		FinalTally:       finalTally,
		TotalVotes:       total,
		VerificationHash: hash,
		IsVerified:       true,
		CreatedAt:        now,
	}
	if err := s.store.PutResult(result); err != nil {
		return nil, err
	}

	session.Status = types.SessionCompleted
	session.CompletedAt = &now
	if err := s.store.UpdateSession(session); err != nil {
		return nil, err
	}
	if err := s.store.UpdateElectionStatus(electionID, types.ElectionCompleted); err != nil {
		return nil, err
	}

	proofRow := &types.VerificationProof{
		ID:         uuid.New(),
		ElectionID: electionID,
		ProofType:  types.ProofResultDigest,
		ProofData:  []byte(hash),
		IsValid:    true,
		VerifiedAt: now,
	}
	if err := s.store.PutVerificationProof(proofRow); err != nil {
		return nil, err
	}

	log.Infow("tally finalized", "electionId", electionID, "total", total, "hash", hash)

	if err := s.audit.Record(&electionID, types.AuditFinalizeTally, ctx.Audit, true, map[string]any{
		"resultId": result.ID.String(),
		"total":    total,
	}); err != nil {
		return nil, err
	}

	out := FinalizeTallyResult{
		ResultID:         result.ID,
		FinalTally:       finalTally,
		Total:            total,
		VerificationHash: hash,
	}
	if err := s.store.PutIdempotent(idemKey, out); err != nil {
		return nil, err
	}
	return &out, nil
}

// failSession transitions session and election to Failed and records an
// audit entry, then returns cause unchanged so callers can propagate it
// directly (spec.md §4.F: "Failed reachable from any state").
func (s *Service) failSession(ctx RequestContext, session *types.TallySession, election *types.Election, cause error) error {
	now := time.Now().UTC()
	session.Status = types.SessionFailed
	session.CompletedAt = &now
	session.ErrorMessage = cause.Error()
	if err := s.store.UpdateSession(session); err != nil {
		return err
	}
	if err := s.store.UpdateElectionStatus(election.ID, types.ElectionFailed); err != nil {
		return err
	}
	_ = s.audit.Record(&election.ID, types.AuditSessionFailed, ctx.Audit, false, map[string]any{
		"reason": cause.Error(),
	})
	log.Warnw("tally session failed", "electionId", election.ID, "reason", cause.Error())
	return cause
}

// aggregateDigest hashes an aggregate's ciphertext digits into the 32-byte
// message a trustee's Lamport signature authorizes, binding a partial
// decryption proof to the exact aggregate it was computed over.
func aggregateDigest(v types.CiphertextVector) [32]byte {
	h := sha256.New()
	for _, c := range v {
		h.Write(c.ToInt().Bytes())
		h.Write([]byte{0})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// decryptAggregate decrypts every ciphertext in v under electionID's stored
// private key, producing the plaintext vector this core's simplified
// threshold model hands each trustee as its "partial" (see threshold.go).
func decryptAggregate(keys *types.ElectionKeys, v types.CiphertextVector) ([]*types.BigInt, error) {
	sk := &paillier.PrivateKey{
		PublicKey: paillier.PublicKey{
			N:        keys.N.ToInt(),
			G:        keys.G.ToInt(),
			NSquared: new(big.Int).Mul(keys.N.ToInt(), keys.N.ToInt()),
		},
		Lambda: keys.Lambda.ToInt(),
		Mu:     keys.Mu.ToInt(),
		P:      keys.P.ToInt(),
		Q:      keys.Q.ToInt(),
	}
	out := make([]*types.BigInt, len(v))
	for i, c := range v {
		m, err := paillier.Decrypt(sk, c.ToInt())
		if err != nil {
			return nil, err
		}
		out[i] = (*types.BigInt)(m)
	}
	return out, nil
}
