// Command tallyvault starts the tallying core's HTTP API, wiring together
// config, a storage adapter and the tally.Service orchestrator, following
// the teacher's cmd/e2eTest/main.go wiring style (flag parsing, log.Init,
// storage construction, service construction, server start), generalized
// from the teacher's web3/contracts/process-monitor wiring to this core's
// storage/tally/api wiring.
package main

import (
	"flag"

	"go.vocdoni.io/dvote/db"

	"github.com/vocdoni/tallyvault/api"
	"github.com/vocdoni/tallyvault/config"
	"github.com/vocdoni/tallyvault/log"
	"github.com/vocdoni/tallyvault/storage"
	"github.com/vocdoni/tallyvault/storage/memstore"
	"github.com/vocdoni/tallyvault/storage/pebblestore"
	"github.com/vocdoni/tallyvault/tally"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API listen host")
	port := flag.Int("port", 8080, "API listen port")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if err := log.Init(*logLevel, "stdout", nil); err != nil {
		panic(err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("configuration loaded", "config", cfg.String())

	var database db.Database
	if cfg.DatabaseURL == "" {
		database = memstore.New()
		log.Infow("using in-memory storage adapter")
	} else {
		database, err = pebblestore.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		log.Infow("using pebble storage adapter", "dir", cfg.DatabaseURL)
	}
	store := storage.New(database)
	defer store.Close()

	svc := tally.New(store, cfg)

	if _, err := api.New(&api.Config{Host: *host, Port: *port, Service: svc}); err != nil {
		log.Fatal(err)
	}

	select {}
}
