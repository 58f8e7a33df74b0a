package tally

import (
	"crypto/sha256"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/luxfi/lamport/primitives"

	"github.com/vocdoni/tallyvault/audit"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/shamir"
	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/threshold"
	"github.com/vocdoni/tallyvault/types"
)

// RegisterTrustee enrolls a new trustee, assigning it the next stable index
// and a fresh one-time Lamport keypair (SPEC_FULL.md §2.2, resolving spec.md
// §9 Open Question 1 toward a verifiable partial-decryption proof). The
// private key is returned once and never persisted by the core; losing it
// means the trustee can no longer produce a verifiable partial_decrypt
// proof and must be re-registered under a new identity. Not idempotent
// (spec.md §6: "No (email unique)") — a duplicate email fails with
// InvalidArgument via storage.Port.PutTrustee.
func (s *Service) RegisterTrustee(actor, name, email string) (*RegisterTrusteeResult, error) {
	if name == "" || email == "" {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "tally: register_trustee requires a name and email")
	}

	index, err := s.store.NextTrusteeIndex()
	if err != nil {
		return nil, err
	}

	kp, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}

	trustee := &types.Trustee{
		ID:               uuid.New(),
		Name:             name,
		Email:            email,
		Index:            index,
		Status:           types.TrusteeActive,
		LamportPublicKey: kp.Public.Bytes(),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.PutTrustee(trustee); err != nil {
		return nil, err
	}

	log.Infow("trustee registered", "trusteeId", trustee.ID, "index", index, "email", email)

	if err := s.audit.Record(nil, types.AuditRegisterTrustee, audit.Context{Actor: actor}, true, map[string]any{
		"trusteeId": trustee.ID.String(),
		"index":     index,
	}); err != nil {
		return nil, err
	}

	return &RegisterTrusteeResult{
		TrusteeID:     trustee.ID,
		Index:         index,
		PrivateKeyHex: types.HexBytes(threshold.PrivateKeyBytes(kp.Private)).String(),
	}, nil
}

// IssueKeyShares splits electionID's Paillier private key material handle
// into a (t, n) Shamir sharing across its active trustees and persists one
// TrusteeShare per trustee (spec.md §4.D, §6). Idempotent by election_id:
// a replay returns the same trustee_id -> share_id mapping without
// re-splitting.
func (s *Service) IssueKeyShares(actor string, electionID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	unlock := s.store.Lock(electionID)
	defer unlock()

	idemKey := "issue_key_shares:" + electionID.String()
	var cached map[uuid.UUID]uuid.UUID
	if found, err := s.store.GetIdempotent(idemKey, &cached); err != nil {
		return nil, err
	} else if found {
		return cached, nil
	}

	if _, err := s.store.GetElection(electionID); err != nil {
		return nil, err
	}
	keys, err := s.store.GetElectionKeys(electionID)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListTrustees()
	if err != nil {
		return nil, err
	}
	var active []*types.Trustee
	for _, t := range all {
		if t.Status == types.TrusteeActive {
			active = append(active, t)
		}
	}
	n := s.cfg.ThresholdN
	t := s.cfg.ThresholdT
	if len(active) < n {
		return nil, tallyerr.New(tallyerr.InvalidArgument, "tally: election %s needs %d active trustees to issue shares, have %d", electionID, n, len(active))
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Index < active[j].Index })
	active = active[:n]

	secret := secretHandleBytes(keys)
	shares, err := shamir.Split(secret, t, n)
	if err != nil {
		return nil, err
	}

	commitment := sha256.Sum256(secret)
	keys.SecretCommitment = commitment[:]
	if err := s.store.PutElectionKeys(keys); err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]uuid.UUID, n)
	now := time.Now().UTC()
	for i, trustee := range active {
		share := shares[i]
		shareID := uuid.New()
		ts := &types.TrusteeShare{
			ID:           shareID,
			ElectionID:   electionID,
			TrusteeID:    trustee.ID,
			TrusteeIndex: trustee.Index,
			SharePayload: encodeSharePayload(share),
			CreatedAt:    now,
		}
		if err := s.store.PutShare(ts); err != nil {
			return nil, err
		}
		result[trustee.ID] = shareID
	}

	log.Infow("key shares issued", "electionId", electionID, "t", t, "n", n)

	if err := s.audit.Record(&electionID, types.AuditIssueKeyShares, audit.Context{Actor: actor}, true, map[string]any{
		"t": t, "n": n,
	}); err != nil {
		return nil, err
	}

	if err := s.store.PutIdempotent(idemKey, result); err != nil {
		return nil, err
	}
	return result, nil
}

// secretHandleBytes derives the byte string Shamir shares for electionKeys:
// the concatenation of the private exponent lambda and its inverse mu,
// canonical and deterministic for a given keypair. shamir.Split hashes this
// with SHA-256 before sharing (spec.md §9 Open Question 2: shares commit to
// H(key), not the raw key). The bytes themselves are returned to the caller
// but never persisted; only their SHA-256 is shared and stored.
func secretHandleBytes(keys *types.ElectionKeys) []byte {
	out := append([]byte{}, keys.Lambda.ToInt().Bytes()...)
	return append(out, keys.Mu.ToInt().Bytes()...)
}

// encodeSharePayload packs a shamir.Share into the opaque byte blob handed
// to its trustee (spec.md §3: "a share payload (opaque byte blob owned by
// the trustee)"): 1 byte X, then Y zero-padded to 32 bytes.
func encodeSharePayload(sh shamir.Share) []byte {
	out := make([]byte, 1+32)
	out[0] = byte(sh.X)
	sh.Y.FillBytes(out[1:])
	return out
}

