package fixtures

const (
	// CodeInvalidFixture is returned when the document or one of its entries cannot be decoded.
	CodeInvalidFixture = "INVALID_FIXTURE"
	// CodeUnknownKind is returned when the document names a kind nothing was registered for.
	CodeUnknownKind = "UNKNOWN_FIXTURE_KIND"
)
