package timestamp

import (
	"encoding/binary"
	"fmt"

	"github.com/multiformats/go-varint"
)

// inherentSize is the encoded size of the timestamp inherent payload.
const inherentSize = 8

// EncodeInherent encodes a clock reading as the inherent payload.
func EncodeInherent(reading InherentType) []byte {
	buf := make([]byte, inherentSize)
	binary.LittleEndian.PutUint64(buf, reading)
	return buf
}

// DecodeInherent decodes an inherent payload produced by EncodeInherent.
func DecodeInherent(raw []byte) (InherentType, error) {
	if len(raw) != inherentSize {
		return 0, fmt.Errorf("invalid inherent payload length (got=%d, want=%d)", len(raw), inherentSize)
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// EncodeCall encodes the submitted time of a `set` call using the compact
// variable-length integer encoding.
func EncodeCall[M Moment](now M) []byte {
	return varint.ToUvarint(uint64(now))
}

// DecodeCall decodes a call payload produced by EncodeCall. Trailing bytes
// and values that do not fit into M are rejected.
func DecodeCall[M Moment](raw []byte) (M, error) {
	value, n, err := varint.FromUvarint(raw)
	if err != nil {
		return 0, fmt.Errorf("could not decode compact moment: %w", err)
	}
	if n != len(raw) {
		return 0, fmt.Errorf("trailing bytes after compact moment (%d of %d consumed)", n, len(raw))
	}
	if value > uint64(MaxMoment[M]()) {
		return 0, fmt.Errorf("compact moment %d overflows target type", value)
	}
	return M(value), nil
}
