package types

import (
	"time"

	"github.com/google/uuid"
)

// AuditOperation identifies the kind of public operation an AuditEntry
// records, one per spec.md §6 operation plus every terminal Failed
// transition.
type AuditOperation string

const (
	// AuditElectionCreated records election creation (Paillier keygen plus
	// the Election row being persisted). It is not one of spec.md §6's
	// eight named operations, since election creation is assumed to be
	// administrative setup external to the tallying flow, but the core
	// still needs a constructor to produce elections for the other
	// operations to act on, and it is audited on the same terms as every
	// other state-mutating call (spec.md §4.H: "every public operation").
	AuditElectionCreated AuditOperation = "election_created"

	AuditRegisterTrustee AuditOperation = "register_trustee"
	AuditIssueKeyShares  AuditOperation = "issue_key_shares"
	AuditSubmitBallot    AuditOperation = "submit_ballot"
	AuditStartTallying   AuditOperation = "start_tallying"
	AuditPartialDecrypt  AuditOperation = "partial_decrypt"
	AuditFinalizeTally   AuditOperation = "finalize_tally"
	AuditVerifyResult    AuditOperation = "verify_result"
	AuditSessionFailed   AuditOperation = "session_failed"
)

// AuditEntry is one append-only record of the audit log. Entries are never
// updated or deleted; the log is ordered by CreatedAt and is the
// authoritative event history the verification digest and external
// observers consume (spec.md §4.H).
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"         cbor:"0,keyasint,omitempty"`
	ElectionID *uuid.UUID     `json:"electionId,omitempty" cbor:"1,keyasint,omitempty"`
	Operation  AuditOperation `json:"operation"  cbor:"2,keyasint,omitempty"`
	Actor      string         `json:"actor"      cbor:"3,keyasint,omitempty"`
	Details    map[string]any `json:"details,omitempty" cbor:"4,keyasint,omitempty"`
	Success    bool           `json:"success"    cbor:"5,keyasint,omitempty"`

	// IPAddress/UserAgent are populated by the HTTP binding and left empty
	// by direct core callers (supplemented from original_source/'s
	// AuditLog.ip_address/user_agent, SPEC_FULL.md §3); no invariant
	// depends on them.
	IPAddress string `json:"ipAddress,omitempty" cbor:"6,keyasint,omitempty"`
	UserAgent string `json:"userAgent,omitempty" cbor:"7,keyasint,omitempty"`

	CreatedAt time.Time `json:"createdAt" cbor:"8,keyasint,omitempty"`

	// Sequence is the entry's global monotonic number; storage orders an
	// election's entries by it alone (SPEC_FULL.md §4.H).
	Sequence uint64 `json:"sequence" cbor:"9,keyasint,omitempty"`
}
