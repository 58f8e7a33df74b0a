package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a TallySession (spec.md §4.F):
// Aggregating -> Decrypting -> Combining -> Completed. start_tallying
// creates the session directly in Aggregating; no code path assigns
// Initiated. Failed is entered only from finalize_tally, when combining or
// validating the counts fails; errors in earlier steps leave the session's
// state unchanged.
type SessionStatus string

const (
	SessionInitiated  SessionStatus = "Initiated"
	SessionAggregating SessionStatus = "Aggregating"
	SessionDecrypting SessionStatus = "Decrypting"
	SessionCombining  SessionStatus = "Combining"
	SessionCompleted  SessionStatus = "Completed"
	SessionFailed     SessionStatus = "Failed"
)

// TallySession is the one-to-one tallying process for an Election.
// Invariant: CompletedTrustees always equals the number of persisted
// PartialDecryption rows for ElectionID (storage.Port.PutPartial increments
// it right after the insert, as a separate write under the election's Lock).
type TallySession struct {
	ID                uuid.UUID        `json:"id"                cbor:"0,keyasint,omitempty"`
	ElectionID        uuid.UUID        `json:"electionId"        cbor:"1,keyasint,omitempty"`
	Status            SessionStatus    `json:"status"            cbor:"2,keyasint,omitempty"`
	Aggregate         CiphertextVector `json:"aggregate,omitempty" cbor:"3,keyasint,omitempty"`
	TotalBallots      int              `json:"totalBallots"     cbor:"4,keyasint,omitempty"`
	RequiredTrustees  int              `json:"requiredTrustees" cbor:"5,keyasint,omitempty"`
	CompletedTrustees int              `json:"completedTrustees" cbor:"6,keyasint,omitempty"`
	StartedAt         time.Time        `json:"startedAt"         cbor:"7,keyasint,omitempty"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty" cbor:"8,keyasint,omitempty"`
	ErrorMessage      string           `json:"errorMessage,omitempty" cbor:"9,keyasint,omitempty"`
}

// CanFinalize reports whether enough trustees have submitted partials to
// attempt finalize_tally.
func (s *TallySession) CanFinalize() bool {
	return s.CompletedTrustees >= s.RequiredTrustees
}
