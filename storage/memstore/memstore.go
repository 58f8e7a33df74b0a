// Package memstore provides an in-memory db.Database for tests and local
// development, backed by the same arbo/memdb key-value store the teacher
// uses for its own in-memory test fixtures (cmd/e2eTest/main.go,
// api/test.go: storage.New(memdb.New())).
package memstore

import (
	"github.com/vocdoni/arbo/memdb"
	"go.vocdoni.io/dvote/db"
)

// New returns a fresh in-memory db.Database. Every call returns an
// independent store; there is no persistence across calls.
func New() db.Database {
	return memdb.New()
}
