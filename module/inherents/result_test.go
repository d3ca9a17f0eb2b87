package inherents

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkError struct {
	fatal bool
}

func (e checkError) Error() string {
	if e.fatal {
		return "fatal"
	}
	return "non-fatal"
}

func (e checkError) IsFatal() bool {
	return e.fatal
}

var (
	first  = Identifier{'f', 'i', 'r', 's', 't', '0', '0', '0'}
	second = Identifier{'s', 'e', 'c', 'o', 'n', 'd', '0', '0'}
	third  = Identifier{'t', 'h', 'i', 'r', 'd', '0', '0', '0'}
)

func TestCheckResult_NonFatalContinues(t *testing.T) {
	result := NewCheckResult()
	visited := 0

	require.True(t, result.Check(first, func() error {
		visited++
		return checkError{fatal: false}
	}))
	require.True(t, result.Check(second, func() error {
		visited++
		return nil
	}))

	assert.Equal(t, 2, visited)
	assert.False(t, result.Ok())
	assert.False(t, result.FatalError())
	assert.Equal(t, checkError{fatal: false}, result.ErrorFor(first))
	assert.Nil(t, result.ErrorFor(second))
}

func TestCheckResult_FatalStops(t *testing.T) {
	result := NewCheckResult()
	visited := 0

	require.False(t, result.Check(first, func() error {
		visited++
		return checkError{fatal: true}
	}))
	require.False(t, result.Check(second, func() error {
		visited++
		return nil
	}))

	assert.Equal(t, 1, visited)
	assert.True(t, result.FatalError())
	assert.False(t, result.PutError(third, checkError{fatal: false}))
	assert.Nil(t, result.ErrorFor(third))
}

func TestCheckResult_PlainErrorsAreFatal(t *testing.T) {
	result := NewCheckResult()
	result.PutError(first, errors.New("boom"))
	assert.True(t, result.FatalError())
	assert.ErrorContains(t, result.Err(), "boom")
}

func TestCheckResult_Empty(t *testing.T) {
	result := NewCheckResult()
	assert.True(t, result.Ok())
	assert.NoError(t, result.Err())
}

func TestData(t *testing.T) {
	data := NewData()
	require.NoError(t, data.Put(first, []byte{1, 2, 3}))
	err := data.Put(first, []byte{4})
	require.ErrorIs(t, err, ErrAlreadyExists)

	value, ok := data.Get(first)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, value)

	data.Replace(first, []byte{4})
	value, _ = data.Get(first)
	assert.Equal(t, []byte{4}, value)

	_, ok = data.Get(second)
	assert.False(t, ok)
	assert.Equal(t, 1, data.Len())
}

func TestIdentifier_String(t *testing.T) {
	assert.Equal(t, "first000", first.String())
	assert.Equal(t, "00ff000000000000", Identifier{0x00, 0xff}.String())
}

type staticProvider struct {
	id    Identifier
	value []byte
	err   error
}

func (p staticProvider) Identifier() Identifier { return p.id }

func (p staticProvider) ProvideInherentData(data *Data) error {
	if p.err != nil {
		return p.err
	}
	return data.Put(p.id, p.value)
}

func (p staticProvider) ErrorToString(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func TestProviders(t *testing.T) {
	providers := NewProviders()
	require.NoError(t, providers.Register(staticProvider{id: first, value: []byte{1}}))
	require.NoError(t, providers.Register(staticProvider{id: second, value: []byte{2}}))
	require.Error(t, providers.Register(staticProvider{id: first}))

	data, err := providers.CreateInherentData()
	require.NoError(t, err)
	assert.Equal(t, 2, data.Len())

	assert.Equal(t, "too late", providers.ErrorToString(first, []byte("too late")))
	assert.Contains(t, providers.ErrorToString(first, nil), "could not be decoded")
	assert.Contains(t, providers.ErrorToString(third, []byte("x")), "unhandled")

	failing := NewProviders()
	require.NoError(t, failing.Register(staticProvider{id: third, err: errors.New("clock broken")}))
	_, err = failing.CreateInherentData()
	require.ErrorContains(t, err, "clock broken")
}
