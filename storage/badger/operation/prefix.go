package operation

const (
	// codes for timestamp state slots
	codeTimestampNow       = 10
	codeTimestampPeriod    = 11
	codeTimestampDidUpdate = 12
)

func makePrefix(code byte) []byte {
	return []byte{code}
}
