package routing

import (
	"fmt"
	"strconv"

	"redirect-router/internal/classifier"
)

// RouteConfig is the complete routing configuration: an ordered rule list
// plus the response to synthesize when no rule matches. It is loaded once at
// startup and never mutated afterwards; concurrent requests share it
// read-only without synchronization.
type RouteConfig struct {
	Rules    []RouteRule
	Fallback *FallbackConfig
}

// RouteRule pairs a match predicate with a redirect recipe. Rule order in
// RouteConfig is significant: the first satisfied rule wins.
type RouteRule struct {
	// ID identifies the rule in logs and metrics. Optional.
	ID string

	// Match is the predicate deciding whether this rule applies.
	Match MatchRule

	// Target is the base URL template of the redirect destination.
	// A target that does not parse as a URL is a configuration defect
	// rejected at load time.
	Target string

	// Status is the redirect status code. Defaults to 302.
	Status int

	// ForwardQuery copies the original request's query parameters onto the
	// target, overwriting same-named keys already present.
	ForwardQuery bool

	// AppendPath concatenates the original pathname onto the target's path
	// with exactly one separating slash.
	AppendPath bool

	// ExtraParams are additional query parameters set on the target. Keys
	// prefixed with "__" are reserved builder directives; the loader lifts
	// them into PathToParam and they are never emitted literally.
	ExtraParams map[string]ParamValue

	// PathToParam, when present, extracts the first pathname segment (after
	// stripping StripPrefix) into the query parameter named Param.
	PathToParam *PathToParam

	// TrackingParam and TrackingValue, when both set, are assigned as a
	// query parameter last so tracking is never silently overwritten.
	TrackingParam string
	TrackingValue string
}

// MatchRule is the conjunction of per-dimension constraints. A field that is
// absent or empty imposes no constraint on its dimension.
type MatchRule struct {
	// Path holds simple patterns: a trailing "*" makes a prefix match,
	// otherwise exact string equality.
	Path []string `json:"path,omitempty"`

	// Pattern holds regular expression sources matched against the pathname.
	Pattern []string `json:"pattern,omitempty"`

	// Countries holds ISO-3166-1 alpha-2 codes; membership is required when
	// non-empty.
	Countries []string `json:"countries,omitempty"`

	// Devices holds device tags (mobile, tablet, desktop). The wildcard
	// "any" disables the constraint.
	Devices []string `json:"devices,omitempty"`

	// Bot is a tri-state crawler constraint: true matches only crawlers,
	// false excludes crawlers, nil does not care.
	Bot *bool `json:"bot,omitempty"`
}

// PathToParam directs the builder to turn the leading pathname segment into
// a query parameter. It is the typed form of the reserved "__pathToParam" /
// "__stripPrefix" extraParams keys.
type PathToParam struct {
	Param       string `json:"param"`
	StripPrefix string `json:"stripPrefix,omitempty"`
}

// FallbackConfig describes the response returned when no rule matches.
type FallbackConfig struct {
	Response *FallbackResponse `json:"response,omitempty"`
}

// FallbackResponse is a synthesized local response. Status defaults to 204
// with an empty body.
type FallbackResponse struct {
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// RequestContext holds the per-request attributes the matcher consumes. It
// is derived fresh for every request and never persisted.
type RequestContext struct {
	// Path is the request pathname, excluding the query string.
	Path string
	// Country is the normalized uppercase country code, empty if the edge
	// layer did not supply one.
	Country string
	// Device is the classified device tag.
	Device classifier.Device
	// Bot reports whether the User-Agent matched a known crawler signature.
	Bot bool
}

// paramKind discriminates the scalar stored in a ParamValue.
type paramKind int

const (
	paramString paramKind = iota
	paramNumber
	paramBool
)

// ParamValue is a scalar extra-parameter value: string, number, or boolean.
// Stringification happens once, at the point of query-parameter assembly.
type ParamValue struct {
	kind paramKind
	str  string
	num  float64
	b    bool
}

// StringParam wraps a string value.
func StringParam(s string) ParamValue { return ParamValue{kind: paramString, str: s} }

// NumberParam wraps a numeric value.
func NumberParam(n float64) ParamValue { return ParamValue{kind: paramNumber, num: n} }

// BoolParam wraps a boolean value.
func BoolParam(b bool) ParamValue { return ParamValue{kind: paramBool, b: b} }

// paramValueOf converts a decoded configuration scalar into a ParamValue.
func paramValueOf(v interface{}) (ParamValue, error) {
	switch value := v.(type) {
	case string:
		return StringParam(value), nil
	case bool:
		return BoolParam(value), nil
	case float64:
		return NumberParam(value), nil
	case float32:
		return NumberParam(float64(value)), nil
	case int:
		return NumberParam(float64(value)), nil
	case int64:
		return NumberParam(float64(value)), nil
	default:
		return ParamValue{}, fmt.Errorf("%w: %T", ErrUnsupportedParamType, v)
	}
}

// String renders the scalar as it appears in the query string. Numbers are
// rendered without a trailing fraction when integral.
func (p ParamValue) String() string {
	switch p.kind {
	case paramNumber:
		return strconv.FormatFloat(p.num, 'f', -1, 64)
	case paramBool:
		return strconv.FormatBool(p.b)
	default:
		return p.str
	}
}
