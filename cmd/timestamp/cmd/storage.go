package cmd

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-timestamp/module"
	bstorage "github.com/onflow/flow-timestamp/storage/badger"
)

// openTimestamps opens the badger database in dir and returns the timestamp
// store on top of it. The caller closes the database.
func openTimestamps(dir string, collector module.StorageMetrics) (*badger.DB, *bstorage.Timestamps[uint64], error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("missing data directory")
	}
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open badger db at %s: %w", dir, err)
	}
	return db, bstorage.NewTimestamps[uint64](collector, db), nil
}
