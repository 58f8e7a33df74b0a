package tally

import (
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/audit"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/paillier"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// CreateElection generates a fresh Paillier keypair for a new election over
// candidateNames (at least two, per spec.md §8 property 1's k in [2, 20])
// and persists the Election plus its private key material under the
// storage adapter's dedicated ek/ prefix (spec.md §9: "Private-key material
// MUST live on a separate table ... and MUST NOT be returned by any read
// operation"). Election creation is not one of spec.md §6's eight named
// operations (it is assumed administrative setup external to the tallying
// flow) but is the glue every other operation needs to act on.
func (s *Service) CreateElection(actor string, candidateNames []string, totalVoters int) (*types.Election, error) {
	if len(candidateNames) < 2 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "tally: election needs at least 2 candidates, got %d", len(candidateNames))
	}

	sk, err := paillier.Keygen(s.cfg.PaillierKeyBits/2, s.rnd)
	if err != nil {
		return nil, err
	}

	candidates := make(types.CandidateList, len(candidateNames))
	for i, name := range candidateNames {
		candidates[i] = types.Candidate{Index: uint16(i), Name: name}
	}

	now := time.Now().UTC()
	election := &types.Election{
		ID:         uuid.New(),
		Candidates: candidates,
		Params: types.PaillierParams{
			N:       (*types.BigInt)(sk.N),
			KeyBits: s.cfg.PaillierKeyBits,
		},
		Status:      types.ElectionActive,
		TotalVoters: totalVoters,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutElection(election); err != nil {
		return nil, err
	}

	keys := &types.ElectionKeys{
		ElectionID: election.ID,
		N:          (*types.BigInt)(sk.N),
		G:          (*types.BigInt)(sk.G),
		Lambda:     (*types.BigInt)(sk.Lambda),
		Mu:         (*types.BigInt)(sk.Mu),
		P:          (*types.BigInt)(sk.P),
		Q:          (*types.BigInt)(sk.Q),
	}
	if err := s.store.PutElectionKeys(keys); err != nil {
		return nil, err
	}

	log.Infow("election created", "electionId", election.ID, "candidates", len(candidates), "keyBits", s.cfg.PaillierKeyBits)

	auditCtx := audit.Context{Actor: actor}
	if err := s.audit.Record(&election.ID, types.AuditElectionCreated, auditCtx, true, map[string]any{
		"candidates": len(candidates),
	}); err != nil {
		return nil, err
	}
	return election, nil
}
