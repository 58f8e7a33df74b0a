package types

import (
	"time"

	"github.com/google/uuid"
)

// CiphertextVector is a length-k vector of Paillier ciphertext digits, the
// typed wire shape shared by EncryptedBallot.Vector and TallySession.Aggregate.
// It lives in this package (rather than ballotvector, which depends on
// types) purely to avoid an import cycle; ballotvector.Vector converts to
// and from it at the package boundary.
type CiphertextVector []*BigInt

// EncryptedBallot is one cast, encrypted vote.
type EncryptedBallot struct {
	ID         uuid.UUID        `json:"id"                cbor:"0,keyasint,omitempty"`
	ElectionID uuid.UUID        `json:"electionId"        cbor:"1,keyasint,omitempty"`
	Vector     CiphertextVector `json:"vector"            cbor:"2,keyasint,omitempty"`
	Proof      HexBytes         `json:"proof,omitempty"   cbor:"3,keyasint,omitempty"`
	Nonce      string           `json:"nonce"             cbor:"4,keyasint,omitempty"`
	Tallied    bool             `json:"tallied"           cbor:"5,keyasint,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"         cbor:"6,keyasint,omitempty"`
}
