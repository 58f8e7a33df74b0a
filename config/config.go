// Package config defines the tallying core's single typed configuration
// struct, populated from environment variables with no parsing framework,
// following the teacher's explicit-struct style (api.APIConfig,
// sequencer.New(stg, batchTimeWindow)) rather than a generic env/flag
// library.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/vocdoni/tallyvault/tallyerr"
)

// Config is the tallying core's full set of environment-driven options
// (spec.md §6).
type Config struct {
	// DatabaseURL is the persistence adapter's endpoint. An empty value
	// selects the in-memory adapter (storage/memstore); anything else is
	// treated as a filesystem directory for storage/pebblestore.
	DatabaseURL string

	// PaillierKeyBits is the bit length of each election's Paillier modulus
	// n; each of its two prime factors is half as long. Must be >= 1024 and
	// even.
	PaillierKeyBits int

	// ThresholdT and ThresholdN are the default (t, n) parameters new
	// elections are issued key shares under. 1 <= ThresholdT <= ThresholdN.
	ThresholdT int
	ThresholdN int

	// WorkerParallelism bounds the worker pool used for bulk ballot
	// aggregation (SPEC_FULL.md §5). Keygen's safe-prime search does not
	// read it; it always runs on two goroutines.
	WorkerParallelism int

	// CanonicalJSONStrict is loaded from the environment, but no component
	// reads it: the digest package has no float-rejecting pass,
	// and its input carries only int64 counts.
	CanonicalJSONStrict bool
}

// Default returns the configuration's documented defaults (spec.md §6),
// before any environment overrides are applied.
func Default() Config {
	return Config{
		PaillierKeyBits:     2048,
		ThresholdT:          3,
		ThresholdN:          5,
		WorkerParallelism:   runtime.NumCPU(),
		CanonicalJSONStrict: true,
	}
}

// FromEnv builds a Config starting from Default and overriding each field
// whose corresponding environment variable is set, validating the result.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if v, ok := os.LookupEnv("PAILLIER_KEY_BITS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, tallyerr.New(tallyerr.InvalidArgument, "config: PAILLIER_KEY_BITS: %v", err)
		}
		cfg.PaillierKeyBits = n
	}
	if v, ok := os.LookupEnv("THRESHOLD_T"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, tallyerr.New(tallyerr.InvalidArgument, "config: THRESHOLD_T: %v", err)
		}
		cfg.ThresholdT = n
	}
	if v, ok := os.LookupEnv("THRESHOLD_N"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, tallyerr.New(tallyerr.InvalidArgument, "config: THRESHOLD_N: %v", err)
		}
		cfg.ThresholdN = n
	}
	if v, ok := os.LookupEnv("WORKER_PARALLELISM"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, tallyerr.New(tallyerr.InvalidArgument, "config: WORKER_PARALLELISM: %v", err)
		}
		cfg.WorkerParallelism = n
	}
	if v, ok := os.LookupEnv("CANONICAL_JSON_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, tallyerr.New(tallyerr.InvalidArgument, "config: CANONICAL_JSON_STRICT: %v", err)
		}
		cfg.CanonicalJSONStrict = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the documented constraints on every field (spec.md §6).
func (c Config) Validate() error {
	if c.PaillierKeyBits < 1024 || c.PaillierKeyBits%2 != 0 {
		return tallyerr.New(tallyerr.InvalidArgument, "config: PAILLIER_KEY_BITS must be >= 1024 and even, got %d", c.PaillierKeyBits)
	}
	if c.ThresholdT < 1 || c.ThresholdT > c.ThresholdN {
		return tallyerr.New(tallyerr.InvalidArgument, "config: require 1 <= THRESHOLD_T <= THRESHOLD_N, got t=%d n=%d", c.ThresholdT, c.ThresholdN)
	}
	if c.WorkerParallelism < 1 {
		return tallyerr.New(tallyerr.InvalidArgument, "config: WORKER_PARALLELISM must be positive, got %d", c.WorkerParallelism)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Config{db=%q keyBits=%d t=%d n=%d workers=%d strictJSON=%t}",
		c.DatabaseURL, c.PaillierKeyBits, c.ThresholdT, c.ThresholdN, c.WorkerParallelism, c.CanonicalJSONStrict)
}
