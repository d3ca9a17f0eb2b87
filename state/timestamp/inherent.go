package timestamp

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/clock"
	"github.com/onflow/flow-timestamp/module/inherents"
	"github.com/onflow/flow-timestamp/state/timestamp/blocktimer"
)

// InherentIdentifier is the inherent data slot of the timestamp.
var InherentIdentifier = inherents.Identifier(tsmodel.Identifier)

// Call is the `set` call placed in a block body.
type Call[M tsmodel.Moment] struct {
	Now M
}

// Encode serializes the call payload.
func (c Call[M]) Encode() []byte {
	return tsmodel.EncodeCall(c.Now)
}

func DecodeCall[M tsmodel.Moment](raw []byte) (Call[M], error) {
	now, err := tsmodel.DecodeCall[M](raw)
	if err != nil {
		return Call[M]{}, fmt.Errorf("could not decode timestamp call: %w", err)
	}
	return Call[M]{Now: now}, nil
}

// ExtractInherentData returns the clock reading stored in the inherent data.
func ExtractInherentData(data *inherents.Data) (tsmodel.InherentType, error) {
	raw, ok := data.Get(InherentIdentifier)
	if !ok {
		return 0, fmt.Errorf("timestamp inherent data is not provided")
	}
	reading, err := tsmodel.DecodeInherent(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp inherent data encoding: %w", err)
	}
	return reading, nil
}

// InherentDataProvider supplies the local clock reading as inherent data.
type InherentDataProvider struct {
	log    zerolog.Logger
	reader clock.Reader
}

var _ inherents.Provider = (*InherentDataProvider)(nil)

func NewInherentDataProvider(log zerolog.Logger, reader clock.Reader) *InherentDataProvider {
	return &InherentDataProvider{
		log:    log.With().Str("component", "timestamp_inherent_provider").Logger(),
		reader: reader,
	}
}

func (p *InherentDataProvider) Identifier() inherents.Identifier {
	return InherentIdentifier
}

func (p *InherentDataProvider) ProvideInherentData(data *inherents.Data) error {
	now, err := p.reader.Now()
	if err != nil {
		return fmt.Errorf("could not read local clock: %w", err)
	}
	p.log.Debug().Uint64("reading", now).Msg("providing timestamp inherent data")
	return data.Put(InherentIdentifier, tsmodel.EncodeInherent(now))
}

func (p *InherentDataProvider) ErrorToString(raw []byte) (string, bool) {
	inherentErr, err := DecodeInherentError(raw)
	if err != nil {
		return "", false
	}
	return inherentErr.Error(), true
}

// CreateInherent derives the call a block producer puts into its block from
// the local clock reading in the inherent data.
func (m *Module[M]) CreateInherent(data *inherents.Data) (Call[M], error) {
	reading, err := ExtractInherentData(data)
	if err != nil {
		return Call[M]{}, err
	}
	prev, err := m.Get()
	if err != nil {
		return Call[M]{}, err
	}
	period, err := m.Period()
	if err != nil {
		return Call[M]{}, err
	}

	now := m.timer.Build(tsmodel.FromInherent[M](reading), prev, period)
	m.log.Debug().
		Uint64("reading", reading).
		Uint64("previous", uint64(prev)).
		Uint64("timestamp", uint64(now)).
		Msg("created timestamp inherent")
	return Call[M]{Now: now}, nil
}

// CheckInherent validates a submitted call against the verifying node's own
// inherent data.
// Expected errors during normal operations:
//   - InherentError of kind Other (fatal) if the timestamp is too far in the
//     future or the inherent data is missing or malformed
//   - InherentError of kind ValidAtTimestamp (non-fatal) if the timestamp is
//     below the minimum required by the previous block
func (m *Module[M]) CheckInherent(call Call[M], data *inherents.Data) error {
	reading, err := ExtractInherentData(data)
	if err != nil {
		return NewOtherError("%s", err)
	}
	prev, err := m.Get()
	if err != nil {
		return err
	}
	period, err := m.Period()
	if err != nil {
		return err
	}

	outcome := m.timer.Validate(call.Now, tsmodel.FromInherent[M](reading), prev, period)
	m.metrics.InherentChecked(outcome.Verdict.String())
	m.metrics.InherentDrift(drift(uint64(call.Now), reading))

	switch outcome.Verdict {
	case blocktimer.RejectedFatal:
		m.log.Warn().
			Uint64("timestamp", uint64(call.Now)).
			Uint64("reading", reading).
			Msg("timestamp too far in future")
		return NewOtherError("%s", outcome.Reason)
	case blocktimer.DeferNonFatal:
		return NewValidAtTimestampError(tsmodel.ToInherent(outcome.ValidAt))
	default:
		return nil
	}
}

const maxDriftSeconds = uint64(math.MaxInt64 / int64(time.Second))

// drift returns how far submitted leads reading, clamped to the range of
// time.Duration.
func drift(submitted, reading uint64) time.Duration {
	if submitted >= reading {
		diff := submitted - reading
		if diff > maxDriftSeconds {
			return time.Duration(math.MaxInt64)
		}
		return time.Duration(diff) * time.Second
	}
	diff := reading - submitted
	if diff > maxDriftSeconds {
		return time.Duration(math.MinInt64)
	}
	return -time.Duration(diff) * time.Second
}
