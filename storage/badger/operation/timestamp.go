package operation

import (
	"github.com/dgraph-io/badger/v2"
)

// InsertTimestampNow stores the agreed time at genesis.
func InsertTimestampNow(now interface{}) func(*badger.Txn) error {
	return insert(makePrefix(codeTimestampNow), now)
}

// UpdateTimestampNow overwrites the agreed time.
func UpdateTimestampNow(now interface{}) func(*badger.Txn) error {
	return upsert(makePrefix(codeTimestampNow), now)
}

// RetrieveTimestampNow reads the agreed time into the given pointer.
func RetrieveTimestampNow(now interface{}) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTimestampNow), now)
}

// InsertTimestampPeriod stores the minimum period configured at genesis.
func InsertTimestampPeriod(period interface{}) func(*badger.Txn) error {
	return insert(makePrefix(codeTimestampPeriod), period)
}

// RetrieveTimestampPeriod reads the minimum period into the given pointer.
func RetrieveTimestampPeriod(period interface{}) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTimestampPeriod), period)
}

// SetTimestampDidUpdate marks the timestamp as set in the current block.
func SetTimestampDidUpdate() func(*badger.Txn) error {
	return upsert(makePrefix(codeTimestampDidUpdate), true)
}

// HasTimestampDidUpdate checks whether the timestamp was set in the current block.
func HasTimestampDidUpdate(didUpdate *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeTimestampDidUpdate), didUpdate)
}

// RemoveTimestampDidUpdate clears the per-block update flag.
func RemoveTimestampDidUpdate() func(*badger.Txn) error {
	return remove(makePrefix(codeTimestampDidUpdate))
}
