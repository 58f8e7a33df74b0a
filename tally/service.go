// Package tally is the tally session state machine (spec.md §4.F): the
// request/response orchestrator tying bigmath/paillier/ballotvector/shamir/
// threshold together with storage.Port and the audit log, exactly the
// wiring spec.md §2's data-flow diagram describes (A->B->C into persistence;
// start_tallying/partial_decrypt/finalize_tally driving E against the
// aggregate pinned by F).
//
// Grounded on the teacher's ticker-driven worker loop style in
// processor/ballot.go (startBallotProcessor) for the bulk-aggregation worker
// pool (SPEC_FULL.md §4.F), generalized into a synchronous request/response
// Service since spec.md's eight operations are RPC-shaped, not queue-driven.
package tally

import (
	"crypto/rand"
	"io"

	"github.com/vocdoni/tallyvault/audit"
	"github.com/vocdoni/tallyvault/config"
	"github.com/vocdoni/tallyvault/storage"
)

// Service is the application context spec.md §9's design notes call for in
// place of the source's global service singletons: one value, built once at
// startup, passed explicitly to every HTTP handler (or any other caller)
// instead of being looked up from package-level state.
type Service struct {
	store storage.Port
	cfg   config.Config
	audit *audit.Recorder
	rnd   io.Reader
}

// New builds a Service over store and cfg. Its randomness source is always
// crypto/rand.Reader.
func New(store storage.Port, cfg config.Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		audit: audit.NewRecorder(store),
		rnd:   rand.Reader,
	}
}

// AuditTrail returns electionID's audit entries, most recent first,
// paginated by limit/offset (spec.md §6 audit_trail). Read-only and
// idempotent; it writes no audit entry of its own.
func (s *Service) AuditTrail(ctx RequestContext, limit, offset int) ([]*AuditEntryView, error) {
	entries, err := s.audit.Trail(ctx.ElectionID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*AuditEntryView, len(entries))
	for i, e := range entries {
		out[i] = &AuditEntryView{
			ID:        e.ID,
			Operation: string(e.Operation),
			Actor:     e.Actor,
			Success:   e.Success,
			CreatedAt: e.CreatedAt,
			Details:   e.Details,
		}
	}
	return out, nil
}
