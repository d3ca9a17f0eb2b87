package timestamp

import (
	"golang.org/x/exp/constraints"
)

// Moment is the scalar used to express the agreed time of a block. Runtimes
// pick the concrete width; the inherent payload itself is always a uint64.
type Moment interface {
	constraints.Unsigned
}

// MaxMoment returns the largest value representable by M.
func MaxMoment[M Moment]() M {
	return ^M(0)
}

// SaturatingAdd returns a + b, clamped to the largest value of M on overflow.
func SaturatingAdd[M Moment](a, b M) M {
	sum := a + b
	if sum < a {
		return MaxMoment[M]()
	}
	return sum
}

// FromInherent converts a raw clock reading into M. Readings that do not fit
// into M are clamped to its largest value.
func FromInherent[M Moment](raw InherentType) M {
	if uint64(MaxMoment[M]()) < raw {
		return MaxMoment[M]()
	}
	return M(raw)
}

// ToInherent widens a moment into the inherent representation.
func ToInherent[M Moment](m M) InherentType {
	return InherentType(m)
}
