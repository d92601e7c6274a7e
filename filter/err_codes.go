package filter

const (
	CodeUnknownField       = "UNKNOWN_FILTER_FIELD"
	CodeUnsupportedDialect = "UNSUPPORTED_DIALECT"
)
