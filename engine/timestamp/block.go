package timestamp

import (
	"fmt"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	tsstate "github.com/onflow/flow-timestamp/state/timestamp"
)

// Block is a produced block. Its payload is the encoded timestamp call.
type Block struct {
	Height   uint64
	Proposer string
	Payload  []byte
}

func newBlock[M tsmodel.Moment](height uint64, proposer string, call tsstate.Call[M]) *Block {
	return &Block{
		Height:   height,
		Proposer: proposer,
		Payload:  call.Encode(),
	}
}

// applyBlock runs the state transitions of a block body: the timestamp
// inherent followed by finalization.
func applyBlock[M tsmodel.Moment](module *tsstate.Module[M], call tsstate.Call[M]) error {
	err := module.Set(tsstate.OriginInherent, call.Now)
	if err != nil {
		return fmt.Errorf("could not apply timestamp: %w", err)
	}
	return module.Finalize()
}
