package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrBeforeEpoch is returned when the host clock reports a time before the
// unix epoch.
var ErrBeforeEpoch = errors.New("current time is before unix epoch")

// Reader samples a wall clock and returns the whole seconds elapsed since the
// unix epoch. Readers are non-deterministic and must only be used on the
// block production and block verification paths.
type Reader interface {
	Now() (uint64, error)
}

// SecondsSinceEpoch converts a wall clock time into the reading format.
func SecondsSinceEpoch(t time.Time) (uint64, error) {
	secs := t.Unix()
	if secs < 0 {
		return 0, fmt.Errorf("could not read clock (%s): %w", t.UTC().Format(time.RFC3339), ErrBeforeEpoch)
	}
	return uint64(secs), nil
}

// SystemReader reads the host clock.
type SystemReader struct {
	clock clockwork.Clock
}

var _ Reader = (*SystemReader)(nil)

func NewSystemReader() *SystemReader {
	return NewSystemReaderWithClock(clockwork.NewRealClock())
}

// NewSystemReaderWithClock creates a reader on top of the given clock, which
// allows tests to freeze time.
func NewSystemReaderWithClock(clock clockwork.Clock) *SystemReader {
	return &SystemReader{
		clock: clock,
	}
}

func (r *SystemReader) Now() (uint64, error) {
	return SecondsSinceEpoch(r.clock.Now())
}

// SkewedReader shifts the readings of another reader by a fixed offset. It
// is used to simulate nodes whose clocks disagree.
type SkewedReader struct {
	reader Reader
	skew   time.Duration
}

var _ Reader = (*SkewedReader)(nil)

func NewSkewedReader(reader Reader, skew time.Duration) *SkewedReader {
	return &SkewedReader{
		reader: reader,
		skew:   skew,
	}
}

func (r *SkewedReader) Now() (uint64, error) {
	reading, err := r.reader.Now()
	if err != nil {
		return 0, err
	}
	skewed := int64(reading) + int64(r.skew/time.Second)
	if skewed < 0 {
		return 0, fmt.Errorf("could not apply clock skew %s: %w", r.skew, ErrBeforeEpoch)
	}
	return uint64(skewed), nil
}
