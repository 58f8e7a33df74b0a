package tally

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/ballotvector"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/metrics"
	"github.com/vocdoni/tallyvault/paillier"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// StartTallying reads every untallied ballot for ctx.ElectionID, aggregates
// them homomorphically into one ciphertext vector, and pins it into a fresh
// TallySession in the Aggregating state (spec.md §4.F). Idempotent by
// election_id: a replay returns the prior success verbatim (spec.md §4.F
// "Idempotence").
func (s *Service) StartTallying(ctx RequestContext) (*StartTallyingResult, error) {
	electionID := ctx.ElectionID
	unlock := s.store.Lock(electionID)
	defer unlock()

	idemKey := "start_tallying:" + electionID.String()
	var cached StartTallyingResult
	if found, err := s.store.GetIdempotent(idemKey, &cached); err != nil {
		return nil, err
	} else if found {
		return &cached, nil
	}

	if _, err := s.store.GetSession(electionID); err == nil {
		return nil, tallyerr.New(tallyerr.InvalidState, "tally: session already exists for election %s", electionID)
	} else if tallyerr.KindOf(err) != tallyerr.NotFound {
		return nil, err
	}

	election, err := s.store.GetElection(electionID)
	if err != nil {
		return nil, err
	}

	ballots, err := s.store.ListUntalliedBallots(electionID)
	if err != nil {
		return nil, err
	}
	if len(ballots) == 0 {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "tally: election %s has no votes to tally", electionID)
	}

	pk := publicKeyFromParams(election.Params.N.ToInt())
	aggVector, err := s.aggregateBallots(pk, ballots)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(ballots))
	for i, b := range ballots {
		ids[i] = b.ID
	}

	now := time.Now().UTC()
	session := &types.TallySession{
		ID:                uuid.New(),
		ElectionID:        electionID,
		Status:            types.SessionAggregating,
		Aggregate:         vectorToCiphertexts(aggVector),
		TotalBallots:      len(ballots),
		RequiredTrustees:  s.cfg.ThresholdT,
		CompletedTrustees: 0,
		StartedAt:         now,
	}
	if err := s.store.PutSession(session); err != nil {
		return nil, err
	}
	if err := s.store.MarkBallotsTallied(electionID, ids); err != nil {
		return nil, err
	}
	if err := s.store.UpdateElectionStatus(electionID, types.ElectionTallying); err != nil {
		return nil, err
	}

	metrics.SessionsStarted.Inc()
	log.Infow("tallying started", "electionId", electionID, "sessionId", session.ID, "ballots", len(ballots))

	if err := s.audit.Record(&electionID, types.AuditStartTallying, ctx.Audit, true, map[string]any{
		"sessionId":  session.ID.String(),
		"totalVotes": len(ballots),
	}); err != nil {
		return nil, err
	}

	result := StartTallyingResult{
		SessionID:        session.ID,
		TotalVotes:       len(ballots),
		RequiredTrustees: session.RequiredTrustees,
	}
	if err := s.store.PutIdempotent(idemKey, result); err != nil {
		return nil, err
	}
	return &result, nil
}

// aggregateBallots sums ballots' ciphertext vectors elementwise under pk,
// fanning the work out across s.cfg.WorkerParallelism goroutines and
// combining each worker's partial aggregate sequentially (spec.md §5: bulk
// ballot aggregation is "embarrassingly parallel" and should use a bounded
// worker pool sized to hardware threads by default). Grounded on
// processor/ballot.go's worker-pool pattern, generalized from a
// queue-draining ticker loop to a one-shot fan-out/fan-in since
// start_tallying aggregates a fixed, already-known batch.
func (s *Service) aggregateBallots(pk *paillier.PublicKey, ballots []*types.EncryptedBallot) (*ballotvector.Vector, error) {
	workers := s.cfg.WorkerParallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(ballots) {
		workers = len(ballots)
	}

	chunks := make([][]*types.EncryptedBallot, workers)
	for i, b := range ballots {
		chunks[i%workers] = append(chunks[i%workers], b)
	}

	partials := make([]*ballotvector.Vector, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		if len(chunks[w]) == 0 {
			continue
		}
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			vectors := make([]*ballotvector.Vector, len(chunks[w]))
			for i, b := range chunks[w] {
				vectors[i] = &ballotvector.Vector{Ciphertexts: ciphertextsToBigInts(b.Vector)}
			}
			agg, err := ballotvector.Aggregate(pk, vectors...)
			partials[w] = agg
			errs[w] = err
		}(w)
	}
	wg.Wait()

	var toCombine []*ballotvector.Vector
	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			return nil, errs[w]
		}
		if partials[w] != nil {
			toCombine = append(toCombine, partials[w])
		}
	}
	return ballotvector.Aggregate(pk, toCombine...)
}

func publicKeyFromParams(n *big.Int) *paillier.PublicKey {
	return &paillier.PublicKey{
		N:        n,
		G:        new(big.Int).Add(n, big.NewInt(1)),
		NSquared: new(big.Int).Mul(n, n),
	}
}

func ciphertextsToBigInts(v types.CiphertextVector) []*big.Int {
	out := make([]*big.Int, len(v))
	for i, c := range v {
		out[i] = c.ToInt()
	}
	return out
}

func vectorToCiphertexts(v *ballotvector.Vector) types.CiphertextVector {
	out := make(types.CiphertextVector, len(v.Ciphertexts))
	for i, c := range v.Ciphertexts {
		out[i] = (*types.BigInt)(c)
	}
	return out
}
