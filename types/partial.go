package types

import (
	"time"

	"github.com/google/uuid"
)

// PartialDecryption is one trustee's contribution toward decrypting a
// TallySession's aggregate. Invariant: at most one row per (ElectionID,
// TrusteeID) pair; storage.Port.PutPartial rejects a second insert with
// tallyerr.DuplicateTrustee.
type PartialDecryption struct {
	ID          uuid.UUID `json:"id"          cbor:"0,keyasint,omitempty"`
	ElectionID  uuid.UUID `json:"electionId"  cbor:"1,keyasint,omitempty"`
	TrusteeID   uuid.UUID `json:"trusteeId"   cbor:"2,keyasint,omitempty"`
	TrusteeIndex int      `json:"trusteeIndex" cbor:"3,keyasint,omitempty"`

	// Values is the partial plaintext vector, one entry per candidate. In
	// this core's simplified threshold model (spec.md §4.E.3) every
	// trustee's partial carries the full decryption of the aggregate;
	// associativity is achieved at Combine time via modular Lagrange
	// weighting rather than by withholding information per trustee (see
	// DESIGN.md for the full rationale).
	Values []*BigInt `json:"values" cbor:"4,keyasint,omitempty"`

	// Proof is the decryption proof: a Lamport one-time signature (see
	// types.Trustee.LamportPublicKey) over threshold.ProofInput's message:
	// {election_id, trustee_id, aggregate_digest}.
	Proof    HexBytes `json:"proof"    cbor:"5,keyasint,omitempty"`
	Verified bool     `json:"verified" cbor:"6,keyasint,omitempty"`

	CreatedAt time.Time `json:"createdAt" cbor:"7,keyasint,omitempty"`
}
