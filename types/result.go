package types

import (
	"time"

	"github.com/google/uuid"
)

// ElectionResult is the published outcome of a completed tally. Invariant:
// the sum of FinalTally's values equals TotalVotes, which equals the number
// of ballots present in the session's aggregate at Combining time.
type ElectionResult struct {
	ID               uuid.UUID      `json:"id"               cbor:"0,keyasint,omitempty"`
	ElectionID       uuid.UUID      `json:"electionId"       cbor:"1,keyasint,omitempty"`
	FinalTally       map[string]int64 `json:"finalTally"     cbor:"2,keyasint,omitempty"`
	TotalVotes       int64          `json:"totalVotes"       cbor:"3,keyasint,omitempty"`
	VerificationHash string         `json:"verificationHash" cbor:"4,keyasint,omitempty"`
	IsVerified       bool           `json:"isVerified"       cbor:"5,keyasint,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"        cbor:"6,keyasint,omitempty"`

	// PublishedAt distinguishes "result computed" from "result externally
	// published" (supplemented from original_source/'s
	// ElectionResult.published_at, SPEC_FULL.md §3). The tallying core never
	// sets it; it is left nil for the out-of-scope external publisher.
	PublishedAt *time.Time `json:"publishedAt,omitempty" cbor:"7,keyasint,omitempty"`
}

// VerificationProofType identifies what a VerificationProof row attests to.
type VerificationProofType string

const (
	ProofLamportPartial VerificationProofType = "lamport_partial"
	ProofResultDigest   VerificationProofType = "result_digest"
)

// VerificationProof is an append-only record of a verification outcome,
// generalizing ElectionResult.verification_hash into a queryable trail
// (supplemented from original_source/'s VerificationProof model,
// SPEC_FULL.md §3). The tallying core writes one row per Lamport
// signature check performed during partial_decrypt, and one row per
// verify_result call.
type VerificationProof struct {
	ID         uuid.UUID             `json:"id"         cbor:"0,keyasint,omitempty"`
	ElectionID uuid.UUID             `json:"electionId" cbor:"1,keyasint,omitempty"`
	ProofType  VerificationProofType `json:"proofType"  cbor:"2,keyasint,omitempty"`
	ProofData  HexBytes              `json:"proofData"  cbor:"3,keyasint,omitempty"`
	IsValid    bool                  `json:"isValid"    cbor:"4,keyasint,omitempty"`
	VerifiedAt time.Time             `json:"verifiedAt" cbor:"5,keyasint,omitempty"`
}
