package types

import (
	"time"

	"github.com/google/uuid"
)

// TrusteeShare is one trustee's Shamir share of an election's key-material
// handle, issued by issue_key_shares (spec.md §4.D, §6). SharePayload is the
// opaque byte blob owned by the trustee; the core stores it and checks that
// a share row exists for a trustee, but never decodes or reconstructs it.
type TrusteeShare struct {
	ID           uuid.UUID `json:"id"           cbor:"0,keyasint,omitempty"`
	ElectionID   uuid.UUID `json:"electionId"   cbor:"1,keyasint,omitempty"`
	TrusteeID    uuid.UUID `json:"trusteeId"    cbor:"2,keyasint,omitempty"`
	TrusteeIndex int       `json:"trusteeIndex" cbor:"3,keyasint,omitempty"`
	SharePayload HexBytes  `json:"sharePayload" cbor:"4,keyasint,omitempty"`
	CreatedAt    time.Time `json:"createdAt"    cbor:"5,keyasint,omitempty"`
}

// ElectionKeys holds an election's full Paillier keypair, including the
// private material (Lambda, Mu, P, Q). It lives in its own storage prefix
// (see storage.Port) and is never returned by any read operation exposed to
// API callers (spec.md §9 design notes: "Private-key material MUST live on
// a separate table ... and MUST NOT be returned by any read operation").
type ElectionKeys struct {
	ElectionID uuid.UUID `json:"electionId"`
	N          *BigInt   `json:"n"`
	G          *BigInt   `json:"g"`
	Lambda     *BigInt   `json:"lambda"`
	Mu         *BigInt   `json:"mu"`
	P          *BigInt   `json:"p"`
	Q          *BigInt   `json:"q"`

	// SecretCommitment is SHA-256(secret-handle-bytes derived from the
	// private key) as shared via shamir.Split at issue_key_shares time. It
	// is recorded here only; no code path reads it back
	// (spec.md §9 Open Question 2: shares commit to H(key), not the raw
	// key; the real key used to decrypt always comes from this record,
	// internal to the core and never serialized to a read response).
	SecretCommitment HexBytes `json:"secretCommitment"`
}
