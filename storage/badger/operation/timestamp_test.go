package operation

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/storage"
	"github.com/onflow/flow-timestamp/utils/unittest"
)

func TestTimestampNow(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var actual uint64
		err := db.View(RetrieveTimestampNow(&actual))
		require.ErrorIs(t, err, storage.ErrNotFound)

		expected := unittest.TimestampFixture()
		require.NoError(t, db.Update(InsertTimestampNow(expected)))
		require.NoError(t, db.View(RetrieveTimestampNow(&actual)))
		assert.Equal(t, expected, actual)

		err = db.Update(InsertTimestampNow(expected + 1))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		require.NoError(t, db.Update(UpdateTimestampNow(expected+5)))
		require.NoError(t, db.View(RetrieveTimestampNow(&actual)))
		assert.Equal(t, expected+5, actual)
	})
}

func TestTimestampPeriod_NarrowType(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		require.NoError(t, db.Update(InsertTimestampPeriod(uint32(5))))

		var period uint32
		require.NoError(t, db.View(RetrieveTimestampPeriod(&period)))
		assert.Equal(t, uint32(5), period)
	})
}

func TestTimestampDidUpdate(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var didUpdate bool
		require.NoError(t, db.View(HasTimestampDidUpdate(&didUpdate)))
		assert.False(t, didUpdate)

		require.NoError(t, db.Update(SetTimestampDidUpdate()))
		require.NoError(t, db.View(HasTimestampDidUpdate(&didUpdate)))
		assert.True(t, didUpdate)

		require.NoError(t, db.Update(RemoveTimestampDidUpdate()))
		require.NoError(t, db.View(HasTimestampDidUpdate(&didUpdate)))
		assert.False(t, didUpdate)

		// removing a missing flag is a no-op
		require.NoError(t, db.Update(RemoveTimestampDidUpdate()))
	})
}

func TestSkipNonExist(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var now uint64
		require.NoError(t, db.View(SkipNonExist(RetrieveTimestampNow(&now))))
		assert.Zero(t, now)
	})
}

func TestRetryOnConflict(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		attempts := 0
		action := func(op func(*badger.Txn) error) error {
			attempts++
			if attempts < 3 {
				return badger.ErrConflict
			}
			return db.Update(op)
		}

		err := RetryOnConflict(metrics.NewNoopCollector(), action, UpdateTimestampNow(uint64(42)))
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)

		var now uint64
		require.NoError(t, db.View(RetrieveTimestampNow(&now)))
		assert.Equal(t, uint64(42), now)
	})
}

func TestRetryOnConflict_OtherError(t *testing.T) {
	failure := errors.New("failure")
	attempts := 0
	err := RetryOnConflict(metrics.NewNoopCollector(), func(func(*badger.Txn) error) error {
		attempts++
		return failure
	}, nil)
	require.ErrorIs(t, err, failure)
	assert.Equal(t, 1, attempts)
}

func TestDecodeValue_Corrupted(t *testing.T) {
	var now uint64
	err := decodeValue([]byte{0xff, 0xff, 0xff}, &now)
	require.ErrorIs(t, err, errUncompressedValue)
	require.True(t, irrecoverable.IsException(err))
}
