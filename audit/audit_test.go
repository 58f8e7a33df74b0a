package audit

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/storage"
	"github.com/vocdoni/tallyvault/storage/memstore"
	"github.com/vocdoni/tallyvault/types"
)

func TestRecordAndTrail(t *testing.T) {
	c := qt.New(t)
	st := storage.New(memstore.New())
	defer st.Close()

	rec := NewRecorder(st)
	electionID := uuid.New()
	ctx := Context{Actor: "trustee@example.org", IPAddress: "127.0.0.1", UserAgent: "test-agent"}

	c.Assert(rec.Record(&electionID, types.AuditSubmitBallot, ctx, true, map[string]any{"nonce": "abc"}), qt.IsNil)
	c.Assert(rec.Record(&electionID, types.AuditStartTallying, ctx, true, nil), qt.IsNil)

	trail, err := rec.Trail(electionID, 10, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(trail, qt.HasLen, 2)
	c.Assert(trail[0].Operation, qt.Equals, types.AuditStartTallying)
	c.Assert(trail[1].Operation, qt.Equals, types.AuditSubmitBallot)
	c.Assert(trail[0].Actor, qt.Equals, "trustee@example.org")
}
