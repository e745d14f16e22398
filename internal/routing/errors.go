package routing

import "errors"

var (
	// ErrNoRules is returned when the configuration declares no rules
	ErrNoRules = errors.New("route configuration has no rules")

	// ErrMissingTarget is returned when a rule declares no target URL
	ErrMissingTarget = errors.New("rule has no target URL")

	// ErrInvalidTarget is returned when a rule target does not parse as a URL
	ErrInvalidTarget = errors.New("rule target is not a valid URL")

	// ErrInvalidStatus is returned when a rule status is not a redirect code
	ErrInvalidStatus = errors.New("rule status is not a valid HTTP status code")

	// ErrUnsupportedParamType is returned when an extra parameter value is
	// not a string, number, or boolean
	ErrUnsupportedParamType = errors.New("unsupported extra parameter value type")

	// ErrReservedParamShape is returned when a reserved "__" directive holds
	// a non-string value
	ErrReservedParamShape = errors.New("reserved extra parameter must be a string")
)
