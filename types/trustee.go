package types

import (
	"time"

	"github.com/google/uuid"
)

// TrusteeStatus is the lifecycle status of a Trustee.
type TrusteeStatus string

const (
	TrusteeActive   TrusteeStatus = "Active"
	TrusteeInactive TrusteeStatus = "Inactive"
)

// Trustee is an independent party holding one share of an election's
// decryption key. The share itself is not a field of Trustee: it is a
// TrusteeShare stored per (election, trustee), see storage.Port.PutShare.
//
// LamportPublicKey is the one-time signature public key issued at
// registration (SPEC_FULL.md §2.2, resolving spec.md §9 Open Question 1
// toward a verifiable decryption proof); the matching private key is
// handed back to the trustee out-of-band by register_trustee's response
// and is never persisted by the core.
type Trustee struct {
	ID    uuid.UUID     `json:"id"    cbor:"0,keyasint,omitempty"`
	Name  string        `json:"name"  cbor:"1,keyasint,omitempty"`
	Email string        `json:"email" cbor:"2,keyasint,omitempty"`
	Index int           `json:"index" cbor:"3,keyasint,omitempty"`
	Status TrusteeStatus `json:"status" cbor:"4,keyasint,omitempty"`

	// LamportPublicKey is the serialized one-time signature public key that
	// partial_decrypt proofs are verified against.
	LamportPublicKey HexBytes `json:"lamportPublicKey,omitempty" cbor:"5,keyasint,omitempty"`

	CreatedAt time.Time `json:"createdAt" cbor:"6,keyasint,omitempty"`
}
