package types

import (
	"time"

	"github.com/google/uuid"
)

// ElectionStatus is the lifecycle status of an Election.
type ElectionStatus string

const (
	ElectionActive    ElectionStatus = "Active"
	ElectionTallying  ElectionStatus = "Tallying"
	ElectionCompleted ElectionStatus = "Completed"
	ElectionFailed    ElectionStatus = "Failed"
)

// Candidate is one entry of an election's ordered candidate list.
type Candidate struct {
	Index uint16 `json:"index" cbor:"0,keyasint,omitempty"`
	Name  string `json:"name"  cbor:"1,keyasint,omitempty"`
}

// CandidateList is the ordered, typed candidate roster of an Election,
// replacing the dynamic JSON blob a less structured implementation would
// use (see SPEC_FULL.md §9 design notes).
type CandidateList []Candidate

// PaillierParams is the public-only encryption parameter set attached to an
// Election. It never carries private key material: lambda, mu, p and q live
// exclusively in the storage adapter's dedicated key prefix.
type PaillierParams struct {
	N       *BigInt `json:"n"       cbor:"0,keyasint,omitempty"`
	KeyBits int     `json:"keyBits" cbor:"1,keyasint,omitempty"`
}

// Election is the root entity owning ballots, its tally session, partial
// decryptions, result and audit entries.
type Election struct {
	ID         uuid.UUID      `json:"id"                   cbor:"0,keyasint,omitempty"`
	Candidates CandidateList  `json:"candidates"           cbor:"1,keyasint,omitempty"`
	Params     PaillierParams `json:"params"               cbor:"2,keyasint,omitempty"`
	Status     ElectionStatus `json:"status"               cbor:"3,keyasint,omitempty"`

	// TotalVoters is an informational upper bound on turnout, supplemented
	// from the original models' Election.total_voters. It is not enforced
	// by any invariant.
	TotalVoters int `json:"totalVoters,omitempty" cbor:"4,keyasint,omitempty"`

	CreatedAt time.Time `json:"createdAt" cbor:"5,keyasint,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" cbor:"6,keyasint,omitempty"`
}
