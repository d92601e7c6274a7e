package repogen

const (
	// CodeConflict is returned by Create when the entity already exists.
	CodeConflict = "CONFLICT"
	// CodeIllegalState is returned by Update for nil input or an unknown id.
	CodeIllegalState = "ILLEGAL_STATE"
	// CodeTechnicalFailure wraps store and mapping failures.
	CodeTechnicalFailure = "TECHNICAL_FAILURE"
	// CodeInvalidProjection is returned when an excluded field is unknown or cannot be excluded.
	CodeInvalidProjection = "INVALID_PROJECTION"
)
