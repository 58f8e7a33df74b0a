package tally

import (
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/tallyvault/audit"
)

// RequestContext carries the caller-identifying fields every mutating
// operation needs: which election it targets, plus the actor/IP/user-agent
// audit.Context wants. It replaces the source's implicit per-request
// globals with an explicit value threaded through every Service method
// (spec.md §9 design notes).
type RequestContext struct {
	ElectionID uuid.UUID
	Audit      audit.Context
}

// AuditEntryView is the read-shape audit_trail returns: the same fields as
// types.AuditEntry minus the nullable ElectionID (callers already know it,
// since audit_trail is scoped to one election) and the internal Sequence
// tie-breaker.
type AuditEntryView struct {
	ID        uuid.UUID      `json:"id"`
	Operation string         `json:"operation"`
	Actor     string         `json:"actor"`
	Success   bool           `json:"success"`
	CreatedAt time.Time      `json:"createdAt"`
	Details   map[string]any `json:"details,omitempty"`
}

// RegisterTrusteeResult is register_trustee's response (spec.md §6):
// {name, email} -> Trustee{id, index}. PrivateKeyHex is the one-time
// Lamport private key handed back to the caller out-of-band; the core never
// persists it (SPEC_FULL.md §2.2, §4.E).
type RegisterTrusteeResult struct {
	TrusteeID     uuid.UUID `json:"trusteeId"`
	Index         int       `json:"index"`
	PrivateKeyHex string    `json:"privateKeyHex"`
}

// StartTallyingResult is start_tallying's response (spec.md §6).
type StartTallyingResult struct {
	SessionID        uuid.UUID `json:"sessionId"`
	TotalVotes       int       `json:"totalVotes"`
	RequiredTrustees int       `json:"requiredTrustees"`
}

// PartialDecryptResult is partial_decrypt's response (spec.md §6).
type PartialDecryptResult struct {
	Completed   int  `json:"completed"`
	Required    int  `json:"required"`
	CanFinalize bool `json:"canFinalize"`
}

// FinalizeTallyResult is finalize_tally's response (spec.md §6).
type FinalizeTallyResult struct {
	ResultID         uuid.UUID        `json:"resultId"`
	FinalTally       map[string]int64 `json:"finalTally"`
	Total            int64            `json:"total"`
	VerificationHash string           `json:"verificationHash"`
}

// VerifyResultResult is verify_result's response (spec.md §6).
type VerifyResultResult struct {
	IsValid        bool   `json:"isValid"`
	RecomputedHash string `json:"recomputedHash"`
	StoredHash     string `json:"storedHash"`
}
