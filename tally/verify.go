package tally

import (
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/digest"
	"github.com/vocdoni/tallyvault/types"
)

// VerifyResult recomputes an election's verification digest from its stored
// ElectionResult and compares it against the hash republished at
// finalize_tally time (spec.md §4.I). A mismatch means the persisted result
// was altered after publication; it does not mutate the result or session,
// only records a VerificationProof row of the outcome.
func (s *Service) VerifyResult(ctx RequestContext) (*VerifyResultResult, error) {
	electionID := ctx.ElectionID

	result, err := s.store.GetResult(electionID)
	if err != nil {
		return nil, err
	}

	recomputed := digest.Digest(digest.Input{
		ElectionID: electionID,
		FinalTally: result.FinalTally,
		TotalVotes: result.TotalVotes,
	})
	isValid := recomputed == result.VerificationHash

	proofRow := &types.VerificationProof{
		ID:         uuid.New(),
		ElectionID: electionID,
		ProofType:  types.ProofResultDigest,
		ProofData:  []byte(recomputed),
		IsValid:    isValid,
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.store.PutVerificationProof(proofRow); err != nil {
		return nil, err
	}

	if err := s.audit.Record(&electionID, types.AuditVerifyResult, ctx.Audit, isValid, map[string]any{
		"recomputedHash": recomputed,
		"storedHash":     result.VerificationHash,
	}); err != nil {
		return nil, err
	}

	return &VerifyResultResult{
		IsValid:        isValid,
		RecomputedHash: recomputed,
		StoredHash:     result.VerificationHash,
	}, nil
}
