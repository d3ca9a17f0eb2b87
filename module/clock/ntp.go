package clock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
)

var validate = validator.New()

// NTPConfig configures the NTP backed reader.
type NTPConfig struct {
	// Server is the host of the NTP server to query.
	Server string `validate:"required"`
	// Timeout bounds a single query.
	Timeout time.Duration `validate:"gt=0"`
	// Retries is the number of additional queries after a failed one.
	Retries uint64
	// Backoff is the initial wait between retries, growing exponentially.
	Backoff time.Duration `validate:"gt=0"`
	// BreakerFailures is the number of consecutive failed queries after which
	// the server is no longer queried until BreakerTimeout has passed.
	BreakerFailures uint32 `validate:"gt=0"`
	// BreakerTimeout is how long an open breaker rejects queries.
	BreakerTimeout time.Duration `validate:"gt=0"`
}

func DefaultNTPConfig() NTPConfig {
	return NTPConfig{
		Server:          "pool.ntp.org",
		Timeout:         3 * time.Second,
		Retries:         3,
		Backoff:         100 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Validate returns an error naming every invalid field of the config.
func (c NTPConfig) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid ntp config: %w", err)
	}
	return nil
}

type queryFunc func(host string, opts ntp.QueryOptions) (*ntp.Response, error)

// NTPReader reads the time from an NTP server instead of the host clock. The
// reading is the local clock corrected by the offset the server reports.
type NTPReader struct {
	log     zerolog.Logger
	config  NTPConfig
	clock   clockwork.Clock
	query   queryFunc
	breaker *gobreaker.CircuitBreaker
}

var _ Reader = (*NTPReader)(nil)

func NewNTPReader(log zerolog.Logger, config NTPConfig) (*NTPReader, error) {
	return NewNTPReaderWithClock(log, config, clockwork.NewRealClock())
}

// NewNTPReaderWithClock creates a reader correcting the given local clock.
func NewNTPReaderWithClock(log zerolog.Logger, config NTPConfig, clock clockwork.Clock) (*NTPReader, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	log = log.With().Str("component", "ntp_reader").Str("server", config.Server).Logger()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    config.Server,
		Timeout: config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("ntp circuit breaker changed state")
		},
	})

	return &NTPReader{
		log:     log,
		config:  config,
		clock:   clock,
		query:   ntp.QueryWithOptions,
		breaker: breaker,
	}, nil
}

func (r *NTPReader) Now() (uint64, error) {
	now, err := r.NowWithContext(context.Background())
	if err != nil {
		return 0, err
	}
	return now, nil
}

// NowWithContext queries the configured server, retrying failed queries with
// exponential backoff until the retries are exhausted or ctx is done. While
// the circuit breaker is open no query is sent and gobreaker.ErrOpenState is
// returned.
func (r *NTPReader) NowWithContext(ctx context.Context) (uint64, error) {
	backoff, err := retry.NewExponential(r.config.Backoff)
	if err != nil {
		return 0, fmt.Errorf("could not create ntp backoff: %w", err)
	}
	backoff = retry.WithMaxRetries(r.config.Retries, backoff)

	var response *ntp.Response
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := r.breaker.Execute(func() (interface{}, error) {
			res, err := r.query(r.config.Server, ntp.QueryOptions{Timeout: r.config.Timeout})
			if err != nil {
				return nil, err
			}
			err = res.Validate()
			if err != nil {
				return nil, err
			}
			return res, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			return err
		}
		if err != nil {
			r.log.Warn().Err(err).Msg("ntp query failed, retrying")
			return retry.RetryableError(err)
		}
		response = res.(*ntp.Response)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not query ntp server %s: %w", r.config.Server, err)
	}

	r.log.Debug().
		Dur("offset", response.ClockOffset).
		Dur("rtt", response.RTT).
		Uint8("stratum", response.Stratum).
		Msg("ntp time read")

	return SecondsSinceEpoch(r.clock.Now().Add(response.ClockOffset))
}
