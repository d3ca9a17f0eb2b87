package operation

import (
	"errors"
	"syscall"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/storage"
)

// SkipNonExist ignores storage.ErrNotFound returned by the wrapped operation.
func SkipNonExist(op func(*badger.Txn) error) func(tx *badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := op(tx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
}

// RetryOnConflict runs the action until it does not fail with a transaction
// conflict.
func RetryOnConflict(metrics module.StorageMetrics, action func(func(*badger.Txn) error) error, op func(tx *badger.Txn) error) error {
	for {
		err := action(op)
		if errors.Is(err, badger.ErrConflict) {
			metrics.RetryOnConflict()
			continue
		}
		return err
	}
}

// TerminateOnFullDisk helper function to crash node if write failed because disk is full
func TerminateOnFullDisk(err error) error {
	// using panic so any deferred functions can still execute
	if err != nil && errors.Is(err, syscall.ENOSPC) {
		panic("disk full, terminating node...")
	}
	return err
}
