package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Reserved extraParams keys carrying builder directives. They are consumed
// at load time and never emitted as query parameters.
const (
	reservedPathToParam = "__pathToParam"
	reservedStripPrefix = "__stripPrefix"
	reservedPrefix      = "__"
)

// rawRule mirrors the wire shape of a rule. extraParams arrives as an open
// scalar map and is split into typed ExtraParams plus the lifted PathToParam
// directive during conversion.
type rawRule struct {
	ID            string                 `json:"id"`
	Match         MatchRule              `json:"match"`
	Target        string                 `json:"target"`
	Status        int                    `json:"status"`
	ForwardQuery  bool                   `json:"forwardQuery"`
	AppendPath    bool                   `json:"appendPath"`
	ExtraParams   map[string]interface{} `json:"extraParams"`
	PathToParam   *PathToParam           `json:"pathToParam"`
	TrackingParam string                 `json:"trackingParam"`
	TrackingValue string                 `json:"trackingValue"`
}

type rawConfig struct {
	Rules    []rawRule       `json:"rules"`
	Fallback *FallbackConfig `json:"fallback"`
}

// LoadConfig reads and converts the route document at path. The document is
// JSON per the deployment contract; keys keep their exact case because extra
// parameter names are emitted verbatim as query parameters.
//
// Conversion lifts the reserved "__pathToParam"/"__stripPrefix" keys out of
// extraParams into the typed PathToParam directive. An explicitly declared
// pathToParam field wins over the reserved keys. Any other "__"-prefixed key
// is a service key and is discarded.
func LoadConfig(path string) (*RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig converts a raw route document into an immutable RouteConfig.
func ParseConfig(data []byte) (*RouteConfig, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing route config: %w", err)
	}

	cfg := &RouteConfig{
		Rules:    make([]RouteRule, 0, len(raw.Rules)),
		Fallback: raw.Fallback,
	}
	for i, rr := range raw.Rules {
		rule, err := convertRule(rr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", ruleLabel(&RouteRule{ID: rr.ID}, i), err)
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	return cfg, nil
}

func convertRule(raw rawRule) (RouteRule, error) {
	rule := RouteRule{
		ID:            raw.ID,
		Match:         raw.Match,
		Target:        raw.Target,
		Status:        raw.Status,
		ForwardQuery:  raw.ForwardQuery,
		AppendPath:    raw.AppendPath,
		PathToParam:   raw.PathToParam,
		TrackingParam: raw.TrackingParam,
		TrackingValue: raw.TrackingValue,
	}

	var lifted PathToParam
	for key, value := range raw.ExtraParams {
		if strings.HasPrefix(key, reservedPrefix) {
			str, ok := value.(string)
			if !ok {
				return rule, fmt.Errorf("%w: %s", ErrReservedParamShape, key)
			}
			switch key {
			case reservedPathToParam:
				lifted.Param = str
			case reservedStripPrefix:
				lifted.StripPrefix = str
			}
			// Unknown "__" keys are service keys: consumed, never emitted.
			continue
		}

		param, err := paramValueOf(value)
		if err != nil {
			return rule, fmt.Errorf("extraParams[%s]: %w", key, err)
		}
		if rule.ExtraParams == nil {
			rule.ExtraParams = make(map[string]ParamValue)
		}
		rule.ExtraParams[key] = param
	}

	if rule.PathToParam == nil && lifted.Param != "" {
		rule.PathToParam = &lifted
	}

	return rule, nil
}
