// Package pebblestore provides the production db.Database backend: a Pebble
// LSM tree on local disk, via the same go.vocdoni.io/dvote/db/metadb
// constructor the teacher uses for its own persistent storage
// (storage/db/metadb/metadb.go, cmd/*/main.go wiring).
package pebblestore

import (
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

// New opens (or creates) a Pebble-backed db.Database rooted at dir.
func New(dir string) (db.Database, error) {
	return metadb.New(db.TypePebble, dir)
}
