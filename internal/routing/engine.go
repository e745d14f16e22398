package routing

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"redirect-router/internal/classifier"
	"redirect-router/internal/common/logging"
)

// DefaultRedirectStatus is used when a rule declares no status.
const DefaultRedirectStatus = http.StatusFound

// DefaultFallbackStatus is used when no fallback response is configured.
const DefaultFallbackStatus = http.StatusNoContent

// compiledRule carries a rule together with its pre-processed match data so
// per-request evaluation does no parsing or compilation.
type compiledRule struct {
	rule *RouteRule

	// patterns are the successfully compiled Match.Pattern sources.
	// hasPatterns remembers whether any sources were declared, so a rule
	// whose sources all failed to compile still rejects (a non-empty
	// pattern set with nothing matching), while an absent set imposes no
	// constraint.
	patterns    []*regexp.Regexp
	hasPatterns bool

	// countries and devices are normalized copies of the match sets.
	countries map[string]struct{}
	devices   map[string]struct{}
	anyDevice bool

	// target is the parsed, validated target URL template.
	target *url.URL
}

// Decision is the outcome of routing one request: either a redirect or the
// configured fallback response.
type Decision struct {
	// Redirect reports whether a rule matched.
	Redirect bool
	// Location is the built destination URL; only set for redirects.
	Location string
	// Status is the response status code.
	Status int
	// RuleID identifies the matched rule, empty on fallback or when the
	// rule declares no ID.
	RuleID string
	// Headers and Body describe the fallback response; empty for redirects.
	Headers map[string]string
	Body    string
}

// Engine evaluates an immutable rule list against classified requests. It is
// stateless per request and safe for unsynchronized concurrent use.
type Engine struct {
	rules    []*compiledRule
	fallback FallbackResponse
	log      logging.Logger
}

// NewEngine compiles a RouteConfig into an Engine. Malformed rule targets
// are configuration defects and fail here rather than per-request; malformed
// regex sources are dropped with a warning and never match.
func NewEngine(cfg *RouteConfig, log logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.GetGlobalLogger()
	}
	if len(cfg.Rules) == 0 {
		return nil, ErrNoRules
	}

	rules := make([]*compiledRule, 0, len(cfg.Rules))
	for i := range cfg.Rules {
		compiled, err := compileRule(&cfg.Rules[i], log)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", ruleLabel(&cfg.Rules[i], i), err)
		}
		rules = append(rules, compiled)
	}

	fallback := FallbackResponse{Status: DefaultFallbackStatus}
	if cfg.Fallback != nil && cfg.Fallback.Response != nil {
		fallback = *cfg.Fallback.Response
		if fallback.Status == 0 {
			fallback.Status = DefaultFallbackStatus
		}
	}

	return &Engine{rules: rules, fallback: fallback, log: log}, nil
}

func compileRule(rule *RouteRule, log logging.Logger) (*compiledRule, error) {
	if rule.Target == "" {
		return nil, ErrMissingTarget
	}
	target, err := url.Parse(rule.Target)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, rule.Target)
	}
	if rule.Status != 0 && (rule.Status < 100 || rule.Status > 599) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, rule.Status)
	}

	compiled := &compiledRule{
		rule:        rule,
		hasPatterns: len(rule.Match.Pattern) > 0,
		target:      target,
	}

	var invalid []string
	compiled.patterns, invalid = compilePatterns(rule.Match.Pattern)
	for _, source := range invalid {
		log.Warn("dropping regex pattern that does not compile",
			logging.String("rule", rule.ID),
			logging.String("pattern", source),
		)
	}

	if len(rule.Match.Countries) > 0 {
		compiled.countries = make(map[string]struct{}, len(rule.Match.Countries))
		for _, country := range rule.Match.Countries {
			compiled.countries[strings.ToUpper(country)] = struct{}{}
		}
	}
	if len(rule.Match.Devices) > 0 {
		compiled.devices = make(map[string]struct{}, len(rule.Match.Devices))
		for _, device := range rule.Match.Devices {
			tag := strings.ToLower(device)
			if tag == "any" {
				compiled.anyDevice = true
			}
			compiled.devices[tag] = struct{}{}
		}
	}

	return compiled, nil
}

// Route maps one classified request to a Decision. reqURL is the original
// request URL; it is read, never mutated.
func (e *Engine) Route(ctx *RequestContext, reqURL *url.URL) *Decision {
	for _, compiled := range e.rules {
		if !compiled.matches(ctx) {
			continue
		}
		status := compiled.rule.Status
		if status == 0 {
			status = DefaultRedirectStatus
		}
		return &Decision{
			Redirect: true,
			Location: buildRedirect(compiled, reqURL),
			Status:   status,
			RuleID:   compiled.rule.ID,
		}
	}

	return &Decision{
		Status:  e.fallback.Status,
		Headers: e.fallback.Headers,
		Body:    e.fallback.Body,
	}
}

// matches evaluates the five match constraints in their fixed order,
// short-circuiting on the first failure.
func (c *compiledRule) matches(ctx *RequestContext) bool {
	match := &c.rule.Match

	if len(match.Path) > 0 && !matchAnySimple(match.Path, ctx.Path) {
		return false
	}
	if c.hasPatterns && !matchAnyRegexp(c.patterns, ctx.Path) {
		return false
	}
	if c.countries != nil {
		if _, ok := c.countries[ctx.Country]; !ok {
			return false
		}
	}
	if c.devices != nil && !c.anyDevice {
		if _, ok := c.devices[string(ctx.Device)]; !ok {
			return false
		}
	}
	if match.Bot != nil && *match.Bot != ctx.Bot {
		return false
	}
	return true
}

// Context derives the RequestContext for a request from its classified
// attributes.
func Context(path, rawCountry string, result classifier.Result) *RequestContext {
	return &RequestContext{
		Path:    path,
		Country: classifier.NormalizeCountry(rawCountry),
		Device:  result.Device,
		Bot:     result.Bot,
	}
}

func ruleLabel(rule *RouteRule, index int) string {
	if rule.ID != "" {
		return rule.ID
	}
	return fmt.Sprintf("#%d", index)
}
