// Package storage is the storage-agnostic persistence port of the tallying
// core (spec.md §4.G): get/put for each entity kind and predicated queries
// such as "ballots where election=E and tallied=false". Every put commits
// its own write transaction; operations that update more than one entity
// kind (partial_decrypt, finalize_tally, every Failed transition) are
// serialized per election by Lock, but their writes are not committed
// atomically together.
//
// Grounded on the teacher's own prefixed-key-value idiom
// (storage/storage.go's setArtifact/getArtifact, storage/census/censusdb.go's
// direct db.Database.Get/db.WriteTx.Set usage), generalized from the
// teacher's gob-encoded `any` artifacts to encoding/json-encoded typed
// entities, since this core's entities are externally observed as JSON
// (spec.md §6) and gob would require a parallel JSON projection anyway.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.vocdoni.io/dvote/db"

	"github.com/vocdoni/tallyvault/tallyerr"
	"github.com/vocdoni/tallyvault/types"
)

// Port is the storage-agnostic persistence contract the tallying core
// depends on. Two adapters satisfy it: storage/memstore (arbo/memdb-backed,
// for tests) and storage/pebblestore (go.vocdoni.io/dvote/db/metadb-backed,
// for production).
type Port interface {
	PutElection(e *types.Election) error
	GetElection(id uuid.UUID) (*types.Election, error)
	UpdateElectionStatus(id uuid.UUID, status types.ElectionStatus) error

	PutElectionKeys(k *types.ElectionKeys) error
	GetElectionKeys(electionID uuid.UUID) (*types.ElectionKeys, error)

	PutTrustee(t *types.Trustee) error
	GetTrustee(id uuid.UUID) (*types.Trustee, error)
	FindTrusteeByEmail(email string) (*types.Trustee, error)
	ListTrustees() ([]*types.Trustee, error)
	NextTrusteeIndex() (int, error)

	PutShare(s *types.TrusteeShare) error
	GetShare(electionID, trusteeID uuid.UUID) (*types.TrusteeShare, error)
	ListShares(electionID uuid.UUID) ([]*types.TrusteeShare, error)

	PutBallot(b *types.EncryptedBallot) error
	FindBallotByNonce(electionID uuid.UUID, nonce string) (*types.EncryptedBallot, error)
	ListUntalliedBallots(electionID uuid.UUID) ([]*types.EncryptedBallot, error)
	MarkBallotsTallied(electionID uuid.UUID, ids []uuid.UUID) error

	PutSession(s *types.TallySession) error
	GetSession(electionID uuid.UUID) (*types.TallySession, error)
	UpdateSession(s *types.TallySession) error

	PutPartial(p *types.PartialDecryption) (*types.TallySession, error)
	ListPartials(electionID uuid.UUID) ([]*types.PartialDecryption, error)

	PutResult(r *types.ElectionResult) error
	GetResult(electionID uuid.UUID) (*types.ElectionResult, error)

	PutVerificationProof(p *types.VerificationProof) error
	ListVerificationProofs(electionID uuid.UUID) ([]*types.VerificationProof, error)

	AppendAudit(entry *types.AuditEntry) error
	ListAudit(electionID uuid.UUID, limit, offset int) ([]*types.AuditEntry, error)

	// GetIdempotent reports whether a prior successful call is recorded
	// under key, decoding it into out if so.
	GetIdempotent(key string, out any) (bool, error)
	PutIdempotent(key string, value any) error

	// Lock acquires the per-election logical lock (spec.md §5) and returns
	// a function that releases it.
	Lock(electionID uuid.UUID) func()

	Close()
}

// Storage is the concrete Port implementation shared by both adapters; only
// the underlying db.Database differs between storage/memstore and
// storage/pebblestore.
type Storage struct {
	db db.Database

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// New wraps an arbitrary db.Database into a Port. Adapter packages call
// this after constructing their specific db.Database implementation.
func New(database db.Database) *Storage {
	return &Storage{
		db:    database,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Close releases the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}

// Lock acquires the per-election logical lock that serializes all mutating
// operations for one election (spec.md §5), generalized from the teacher's
// single global ballotLock sync.Mutex (storage/storage.go) to one mutex per
// election, since spec.md requires elections to proceed concurrently with
// each other.
func (s *Storage) Lock(electionID uuid.UUID) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[electionID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[electionID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// --- generic encode/decode helpers -----------------------------------------

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, fmt.Errorf("storage: encode: %w", err))
	}
	return data, nil
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return tallyerr.Wrap(tallyerr.Internal, fmt.Errorf("storage: decode: %w", err))
	}
	return nil
}

func (s *Storage) get(key []byte, out any) error {
	data, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return tallyerr.New(tallyerr.NotFound, "storage: key not found")
		}
		return tallyerr.Wrap(tallyerr.Internal, err)
	}
	return decode(data, out)
}

func (s *Storage) set(key []byte, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	wtx := s.db.WriteTx()
	defer wtx.Discard()
	if err := wtx.Set(key, data); err != nil {
		return tallyerr.Wrap(tallyerr.Internal, err)
	}
	if err := wtx.Commit(); err != nil {
		return tallyerr.Wrap(tallyerr.Internal, err)
	}
	return nil
}

func (s *Storage) exists(key []byte) bool {
	_, err := s.db.Get(key)
	return err == nil
}

// --- Election ---------------------------------------------------------------

func (s *Storage) PutElection(e *types.Election) error {
	return s.set(electionKey(e.ID.String()), e)
}

func (s *Storage) GetElection(id uuid.UUID) (*types.Election, error) {
	var e types.Election
	if err := s.get(electionKey(id.String()), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Storage) UpdateElectionStatus(id uuid.UUID, status types.ElectionStatus) error {
	e, err := s.GetElection(id)
	if err != nil {
		return err
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return s.PutElection(e)
}

// --- ElectionKeys (private material) ----------------------------------------

func (s *Storage) PutElectionKeys(k *types.ElectionKeys) error {
	return s.set(electionKeysKey(k.ElectionID.String()), k)
}

func (s *Storage) GetElectionKeys(electionID uuid.UUID) (*types.ElectionKeys, error) {
	var k types.ElectionKeys
	if err := s.get(electionKeysKey(electionID.String()), &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// --- Trustee -----------------------------------------------------------------

func (s *Storage) PutTrustee(t *types.Trustee) error {
	if s.exists(trusteeEmailKey(t.Email)) {
		return tallyerr.New(tallyerr.InvalidArgument, "storage: trustee email %q already registered", t.Email)
	}
	if err := s.set(trusteeKey(t.ID.String()), t); err != nil {
		return err
	}
	return s.set(trusteeEmailKey(t.Email), t.ID.String())
}

func (s *Storage) GetTrustee(id uuid.UUID) (*types.Trustee, error) {
	var t types.Trustee
	if err := s.get(trusteeKey(id.String()), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) FindTrusteeByEmail(email string) (*types.Trustee, error) {
	var idStr string
	if err := s.get(trusteeEmailKey(email), &idStr); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return s.GetTrustee(id)
}

func (s *Storage) ListTrustees() ([]*types.Trustee, error) {
	var out []*types.Trustee
	err := s.db.Iterate([]byte(trusteePrefix), func(_, v []byte) bool {
		var t types.Trustee
		if decErr := decode(v, &t); decErr == nil {
			out = append(out, &t)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return out, nil
}

// NextTrusteeIndex atomically assigns the next stable trustee index
// (spec.md §3: "stable index i in [1, n_trustees]").
func (s *Storage) NextTrusteeIndex() (int, error) {
	var n int
	if err := s.get([]byte(trusteeIndexCounter), &n); err != nil {
		if tallyerr.KindOf(err) != tallyerr.NotFound {
			return 0, err
		}
		n = 0
	}
	n++
	if err := s.set([]byte(trusteeIndexCounter), n); err != nil {
		return 0, err
	}
	return n, nil
}

// --- TrusteeShare -------------------------------------------------------------

func (s *Storage) PutShare(sh *types.TrusteeShare) error {
	return s.set(shareKey(sh.ElectionID.String(), sh.TrusteeID.String()), sh)
}

func (s *Storage) GetShare(electionID, trusteeID uuid.UUID) (*types.TrusteeShare, error) {
	var sh types.TrusteeShare
	if err := s.get(shareKey(electionID.String(), trusteeID.String()), &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *Storage) ListShares(electionID uuid.UUID) ([]*types.TrusteeShare, error) {
	var out []*types.TrusteeShare
	err := s.db.Iterate(sharePrefixForElection(electionID.String()), func(_, v []byte) bool {
		var sh types.TrusteeShare
		if decErr := decode(v, &sh); decErr == nil {
			out = append(out, &sh)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return out, nil
}

// --- EncryptedBallot -----------------------------------------------------------

func (s *Storage) PutBallot(b *types.EncryptedBallot) error {
	nonceKey := ballotNonceKey(b.ElectionID.String(), b.Nonce)
	if s.exists(nonceKey) {
		return tallyerr.New(tallyerr.DuplicateBallot, "storage: ballot nonce %q already submitted for election %s", b.Nonce, b.ElectionID)
	}
	if err := s.set(ballotKey(b.ElectionID.String(), b.ID.String()), b); err != nil {
		return err
	}
	return s.set(nonceKey, b.ID.String())
}

func (s *Storage) FindBallotByNonce(electionID uuid.UUID, nonce string) (*types.EncryptedBallot, error) {
	var idStr string
	if err := s.get(ballotNonceKey(electionID.String(), nonce), &idStr); err != nil {
		return nil, err
	}
	var b types.EncryptedBallot
	if err := s.get(ballotKey(electionID.String(), idStr), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Storage) ListUntalliedBallots(electionID uuid.UUID) ([]*types.EncryptedBallot, error) {
	var out []*types.EncryptedBallot
	err := s.db.Iterate(ballotPrefixForElection(electionID.String()), func(_, v []byte) bool {
		var b types.EncryptedBallot
		if decErr := decode(v, &b); decErr == nil && !b.Tallied {
			out = append(out, &b)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return out, nil
}

func (s *Storage) MarkBallotsTallied(electionID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		var b types.EncryptedBallot
		key := ballotKey(electionID.String(), id.String())
		if err := s.get(key, &b); err != nil {
			return err
		}
		b.Tallied = true
		if err := s.set(key, &b); err != nil {
			return err
		}
	}
	return nil
}

// --- TallySession --------------------------------------------------------------

func (s *Storage) PutSession(sess *types.TallySession) error {
	if s.exists(sessionKey(sess.ElectionID.String())) {
		return tallyerr.New(tallyerr.InvalidState, "storage: tally session already exists for election %s", sess.ElectionID)
	}
	return s.set(sessionKey(sess.ElectionID.String()), sess)
}

func (s *Storage) GetSession(electionID uuid.UUID) (*types.TallySession, error) {
	var sess types.TallySession
	if err := s.get(sessionKey(electionID.String()), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) UpdateSession(sess *types.TallySession) error {
	return s.set(sessionKey(sess.ElectionID.String()), sess)
}

// --- PartialDecryption -----------------------------------------------------------

// PutPartial rejects a second insert for the same (election, trustee) pair
// with DuplicateTrustee, otherwise persists p and then increments the
// session's CompletedTrustees counter, returning the updated session
// (spec.md §3 invariant: CompletedTrustees == count of persisted partials).
// The two writes commit separately; callers hold the election's Lock.
func (s *Storage) PutPartial(p *types.PartialDecryption) (*types.TallySession, error) {
	key := partialKey(p.ElectionID.String(), p.TrusteeID.String())
	if s.exists(key) {
		return nil, tallyerr.New(tallyerr.DuplicateTrustee, "storage: trustee %s already submitted a partial for election %s", p.TrusteeID, p.ElectionID)
	}
	if err := s.set(key, p); err != nil {
		return nil, err
	}
	sess, err := s.GetSession(p.ElectionID)
	if err != nil {
		return nil, err
	}
	sess.CompletedTrustees++
	if err := s.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Storage) ListPartials(electionID uuid.UUID) ([]*types.PartialDecryption, error) {
	var out []*types.PartialDecryption
	err := s.db.Iterate(partialPrefixForElection(electionID.String()), func(_, v []byte) bool {
		var p types.PartialDecryption
		if decErr := decode(v, &p); decErr == nil {
			out = append(out, &p)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return out, nil
}

// --- ElectionResult -----------------------------------------------------------

func (s *Storage) PutResult(r *types.ElectionResult) error {
	return s.set(resultKey(r.ElectionID.String()), r)
}

func (s *Storage) GetResult(electionID uuid.UUID) (*types.ElectionResult, error) {
	var r types.ElectionResult
	if err := s.get(resultKey(electionID.String()), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- VerificationProof ---------------------------------------------------------

func (s *Storage) PutVerificationProof(p *types.VerificationProof) error {
	return s.set(proofKey(p.ElectionID.String(), p.ID.String()), p)
}

func (s *Storage) ListVerificationProofs(electionID uuid.UUID) ([]*types.VerificationProof, error) {
	var out []*types.VerificationProof
	err := s.db.Iterate(proofPrefixForElection(electionID.String()), func(_, v []byte) bool {
		var p types.VerificationProof
		if decErr := decode(v, &p); decErr == nil {
			out = append(out, &p)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	return out, nil
}

// --- AuditEntry (append-only) ---------------------------------------------------

// AppendAudit assigns the entry the next monotonic sequence number and
// persists it under a key ordered by election id and that sequence number
// alone, so ListAudit's
// pagination is a plain prefix/range scan rather than a sort
// (SPEC_FULL.md §4.H).
func (s *Storage) AppendAudit(entry *types.AuditEntry) error {
	var seq uint64
	if err := s.get([]byte(auditSeqCounter), &seq); err != nil {
		if tallyerr.KindOf(err) != tallyerr.NotFound {
			return err
		}
		seq = 0
	}
	seq++
	entry.Sequence = seq
	if err := s.set([]byte(auditSeqCounter), seq); err != nil {
		return err
	}
	var electionKeyStr string
	if entry.ElectionID != nil {
		electionKeyStr = entry.ElectionID.String()
	}
	return s.set(auditKey(electionKeyStr, seq), entry)
}

// ListAudit returns entries for electionID ordered by timestamp (the
// sequence-ordered key) descending, most recent first, paginated by
// limit/offset.
func (s *Storage) ListAudit(electionID uuid.UUID, limit, offset int) ([]*types.AuditEntry, error) {
	var all []*types.AuditEntry
	err := s.db.Iterate(auditPrefixForElection(electionID.String()), func(_, v []byte) bool {
		var e types.AuditEntry
		if decErr := decode(v, &e); decErr == nil {
			all = append(all, &e)
		}
		return true
	})
	if err != nil {
		return nil, tallyerr.Wrap(tallyerr.Internal, err)
	}
	// Reverse: keys iterate in ascending sequence order, descending is the
	// spec'd read order (spec.md §4.H).
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// --- Idempotence -----------------------------------------------------------------

func (s *Storage) GetIdempotent(key string, out any) (bool, error) {
	if err := s.get(idempotencyKey(key), out); err != nil {
		if tallyerr.KindOf(err) == tallyerr.NotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Storage) PutIdempotent(key string, value any) error {
	return s.set(idempotencyKey(key), value)
}

var _ Port = (*Storage)(nil)
