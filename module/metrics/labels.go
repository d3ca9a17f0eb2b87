package metrics

const (
	LabelInvariant = "invariant"
	LabelVerdict   = "verdict"
)

const (
	namespaceTimestamp = "timestamp"
	namespaceStorage   = "storage"
)

const (
	subsystemState    = "state"
	subsystemInherent = "inherent"
	subsystemBadger   = "badger"
)
