package timestamp

const (
	// MaxDrift is the largest amount (in seconds) a submitted timestamp may
	// lead the validating node's local clock reading.
	MaxDrift InherentType = 60

	// DefaultPeriod is the minimum period between blocks used when genesis
	// does not configure one.
	DefaultPeriod = 5
)

// InherentType is the encoding of the timestamp inherent: seconds since the
// unix epoch.
type InherentType = uint64

// Identifier is the 8 byte tag of the timestamp inherent data slot.
var Identifier = [8]byte{'t', 'i', 'm', 's', 't', 'a', 'p', '0'}
