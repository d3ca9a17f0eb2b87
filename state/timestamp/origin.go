package timestamp

import (
	"fmt"
)

// Origin classifies the caller of a state transition.
type Origin int

const (
	// OriginInherent is an operation supplied by the block producer itself.
	OriginInherent Origin = iota
	// OriginSigned is a user submitted, signed transaction.
	OriginSigned
	// OriginRoot is a privileged governance call.
	OriginRoot
)

func (o Origin) IsInherent() bool {
	return o == OriginInherent
}

func (o Origin) String() string {
	switch o {
	case OriginInherent:
		return "inherent"
	case OriginSigned:
		return "signed"
	case OriginRoot:
		return "root"
	default:
		return fmt.Sprintf("unknown origin (%d)", int(o))
	}
}
