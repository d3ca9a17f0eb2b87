package timestamp

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/inherents"
)

// InherentErrorKind is the variant tag of an InherentError. It is the first
// byte of the encoded error.
type InherentErrorKind uint8

const (
	// ValidAtTimestamp reports that the timestamp is valid in the future.
	// It does not stop checking the remaining inherents.
	ValidAtTimestamp InherentErrorKind = 0
	// Other reports any other problem and invalidates the block.
	Other InherentErrorKind = 1
)

// InherentError is returned by CheckInherent.
type InherentError struct {
	Kind InherentErrorKind
	// ValidAt is the earliest timestamp the call becomes valid at, set for
	// ValidAtTimestamp.
	ValidAt tsmodel.InherentType
	// Message describes an Other error.
	Message string
}

var _ inherents.FatalError = InherentError{}

func NewValidAtTimestampError(validAt tsmodel.InherentType) InherentError {
	return InherentError{
		Kind:    ValidAtTimestamp,
		ValidAt: validAt,
	}
}

func NewOtherError(msg string, args ...interface{}) InherentError {
	return InherentError{
		Kind:    Other,
		Message: fmt.Sprintf(msg, args...),
	}
}

func (e InherentError) Error() string {
	switch e.Kind {
	case ValidAtTimestamp:
		return fmt.Sprintf("timestamp becomes valid at %d", e.ValidAt)
	case Other:
		return e.Message
	default:
		return fmt.Sprintf("unknown timestamp inherent error (kind=%d)", e.Kind)
	}
}

// IsFatal returns false for ValidAtTimestamp errors only.
func (e InherentError) IsFatal() bool {
	return e.Kind != ValidAtTimestamp
}

func IsInherentError(err error) bool {
	var inherentErr InherentError
	return errors.As(err, &inherentErr)
}

// Encode serializes the error: the kind tag, followed by the 8 byte little
// endian timestamp for ValidAtTimestamp or the uvarint length prefixed
// message for Other.
func (e InherentError) Encode() []byte {
	switch e.Kind {
	case ValidAtTimestamp:
		buf := make([]byte, 9)
		buf[0] = byte(ValidAtTimestamp)
		binary.LittleEndian.PutUint64(buf[1:], e.ValidAt)
		return buf
	default:
		buf := []byte{byte(Other)}
		buf = append(buf, varint.ToUvarint(uint64(len(e.Message)))...)
		return append(buf, e.Message...)
	}
}

// DecodeInherentError deserializes an error produced by Encode.
func DecodeInherentError(raw []byte) (InherentError, error) {
	if len(raw) == 0 {
		return InherentError{}, fmt.Errorf("empty inherent error")
	}
	switch InherentErrorKind(raw[0]) {
	case ValidAtTimestamp:
		if len(raw) != 9 {
			return InherentError{}, fmt.Errorf("invalid length of valid-at error (got=%d, want=9)", len(raw))
		}
		return NewValidAtTimestampError(binary.LittleEndian.Uint64(raw[1:])), nil
	case Other:
		size, n, err := varint.FromUvarint(raw[1:])
		if err != nil {
			return InherentError{}, fmt.Errorf("could not decode message length: %w", err)
		}
		body := raw[1+n:]
		if uint64(len(body)) != size {
			return InherentError{}, fmt.Errorf("invalid message length (got=%d, want=%d)", len(body), size)
		}
		return InherentError{Kind: Other, Message: string(body)}, nil
	default:
		return InherentError{}, fmt.Errorf("unknown inherent error kind %d", raw[0])
	}
}

// IsFatalEncoded reports whether an encoded error is fatal by inspecting its
// tag only.
func IsFatalEncoded(raw []byte) (bool, error) {
	if len(raw) == 0 {
		return false, fmt.Errorf("empty inherent error")
	}
	switch InherentErrorKind(raw[0]) {
	case ValidAtTimestamp:
		return false, nil
	case Other:
		return true, nil
	default:
		return false, fmt.Errorf("unknown inherent error kind %d", raw[0])
	}
}

// TryDecodeInherentError decodes the error if it was reported for the
// timestamp inherent identifier.
func TryDecodeInherentError(id inherents.Identifier, raw []byte) (InherentError, bool) {
	if id != inherents.Identifier(tsmodel.Identifier) {
		return InherentError{}, false
	}
	inherentErr, err := DecodeInherentError(raw)
	if err != nil {
		return InherentError{}, false
	}
	return inherentErr, true
}
