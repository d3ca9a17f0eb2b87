package util

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// LogProgressFunc adds to the progress. It can be called concurrently.
type LogProgressFunc func(add uint64)

// LogProgress returns a function that logs the progress towards total each
// time another tenth of it is reached.
func LogProgress(log zerolog.Logger, msg string, total uint64) LogProgressFunc {
	start := time.Now()
	current := atomic.NewUint64(0)

	step := total / 10
	if step == 0 {
		step = 1
	}

	var mu sync.Mutex
	logProgress := func(done uint64) {
		mu.Lock()
		defer mu.Unlock()

		percentage := float64(100)
		if total > 0 {
			percentage = float64(done) / float64(total) * 100
		}
		log.Info().
			Uint64("done", done).
			Uint64("total", total).
			Dur("elapsed", time.Since(start).Round(time.Millisecond)).
			Msgf("%s progress %.1f%%", msg, percentage)
	}

	return func(add uint64) {
		if add == 0 {
			return
		}
		now := current.Add(add)
		if now/step != (now-add)/step || now == total {
			logProgress(now)
		}
	}
}
