package timestamp

import (
	"fmt"
)

// Genesis is the initial configuration of the timestamp state.
type Genesis[M Moment] struct {
	// Period is the minimum period between the timestamps of two consecutive
	// blocks. A zero period only enforces non-decreasing timestamps.
	Period M `json:"period" mapstructure:"period"`
}

// DefaultGenesis returns the genesis configuration with the default period.
func DefaultGenesis[M Moment]() Genesis[M] {
	return Genesis[M]{
		Period: DefaultPeriod,
	}
}

func (g Genesis[M]) String() string {
	return fmt.Sprintf("timestamp genesis (period=%d)", uint64(g.Period))
}
