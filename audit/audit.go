// Package audit is the thin recording layer in front of storage.Port's
// append-only audit log (spec.md §4.H): it shapes a types.AuditEntry from
// the calling operation's context and actor, and exposes the paginated
// read path tally.Service's audit_trail operation returns verbatim.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/storage"
	"github.com/vocdoni/tallyvault/types"
)

// Context carries the caller-identifying fields every audit entry records,
// supplemented from original_source/'s AuditLog.ip_address/user_agent
// (SPEC_FULL.md §3). The HTTP binding populates IPAddress/UserAgent; direct
// core callers leave them empty.
type Context struct {
	Actor     string
	IPAddress string
	UserAgent string
}

// Recorder appends entries to and reads from one storage.Port's audit log.
type Recorder struct {
	store storage.Port
}

// NewRecorder wraps store's audit methods.
func NewRecorder(store storage.Port) *Recorder {
	return &Recorder{store: store}
}

// Record appends one audit entry. storage.Port's AppendAudit commits it as
// its own write, separate from the state mutation it records; callers hold
// the election's Lock while doing both.
func (r *Recorder) Record(electionID *uuid.UUID, op types.AuditOperation, ctx Context, success bool, details map[string]any) error {
	entry := &types.AuditEntry{
		ID:         uuid.New(),
		ElectionID: electionID,
		Operation:  op,
		Actor:      ctx.Actor,
		Details:    details,
		Success:    success,
		IPAddress:  ctx.IPAddress,
		UserAgent:  ctx.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}
	return r.store.AppendAudit(entry)
}

// Trail returns electionID's audit entries, most recent first, paginated
// by limit/offset (spec.md §6 audit_trail).
func (r *Recorder) Trail(electionID uuid.UUID, limit, offset int) ([]*types.AuditEntry, error) {
	return r.store.ListAudit(electionID, limit, offset)
}
