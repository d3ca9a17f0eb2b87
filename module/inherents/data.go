package inherents

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrAlreadyExists is returned when inherent data is put twice for the same
// identifier.
var ErrAlreadyExists = errors.New("inherent data already exists")

// Identifier names an inherent data slot.
type Identifier [8]byte

func (id Identifier) String() string {
	for _, b := range id {
		if b < 0x20 || b > 0x7e {
			return hex.EncodeToString(id[:])
		}
	}
	return string(id[:])
}

// Data carries the encoded inherent data a block producer supplies alongside
// a block, keyed by identifier. It is not safe for concurrent use.
type Data struct {
	entries map[Identifier][]byte
}

func NewData() *Data {
	return &Data{
		entries: make(map[Identifier][]byte),
	}
}

// Put stores the encoded value under the given identifier.
// Expected errors during normal operations:
//   - ErrAlreadyExists if the identifier is already present
func (d *Data) Put(id Identifier, value []byte) error {
	if _, ok := d.entries[id]; ok {
		return fmt.Errorf("could not put inherent data %s: %w", id, ErrAlreadyExists)
	}
	d.entries[id] = append([]byte(nil), value...)
	return nil
}

// Replace stores the encoded value under the given identifier, overwriting
// any previous value.
func (d *Data) Replace(id Identifier, value []byte) {
	d.entries[id] = append([]byte(nil), value...)
}

// Get returns the encoded value stored for the identifier.
func (d *Data) Get(id Identifier) ([]byte, bool) {
	value, ok := d.entries[id]
	return value, ok
}

func (d *Data) Len() int {
	return len(d.entries)
}
