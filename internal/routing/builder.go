package routing

import (
	"net/url"
	"sort"
	"strings"
)

// buildRedirect composes the destination URL for a matched rule. The
// transformation order is load-bearing: later steps overwrite earlier ones
// when they set the same query key, and the tracking parameter goes last so
// nothing can clobber it.
func buildRedirect(c *compiledRule, reqURL *url.URL) string {
	rule := c.rule

	dst := *c.target
	if rule.AppendPath {
		dst.Path = joinPath(dst.Path, reqURL.Path)
		dst.RawPath = ""
	}

	query := parseQuery(dst.RawQuery)

	if rule.ForwardQuery {
		for _, pair := range parseQuery(reqURL.RawQuery).pairs {
			query.setPair(pair)
		}
	}

	for _, key := range sortedParamKeys(rule.ExtraParams) {
		query.set(key, rule.ExtraParams[key].String())
	}

	if p := rule.PathToParam; p != nil && p.Param != "" {
		if segment := firstSegment(reqURL.Path, p.StripPrefix); segment != "" {
			query.set(p.Param, segment)
		}
	}

	if rule.TrackingParam != "" && rule.TrackingValue != "" {
		query.set(rule.TrackingParam, rule.TrackingValue)
	}

	dst.RawQuery = query.encode()
	return dst.String()
}

// joinPath concatenates two URL paths with exactly one separating slash,
// regardless of trailing/leading slashes on either side.
func joinPath(base, suffix string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(suffix, "/")
}

// firstSegment strips prefix from the pathname when present, then returns
// the first non-empty slash-separated segment of the remainder. Returns ""
// when nothing remains.
func firstSegment(pathname, prefix string) string {
	remainder := pathname
	if prefix != "" {
		remainder = strings.TrimPrefix(pathname, prefix)
	}
	for _, segment := range strings.Split(remainder, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}

func sortedParamKeys(params map[string]ParamValue) []string {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// queryPair is one query-string entry. hasValue distinguishes a valueless
// flag such as "?4" from an empty value such as "?4=".
type queryPair struct {
	key      string
	value    string
	hasValue bool
}

// queryString is an order-preserving query-string assembler. Unlike
// url.Values it keeps the target's original parameter order and valueless
// flags intact, while set applies last-write-wins semantics by key.
type queryString struct {
	pairs []queryPair
}

// parseQuery splits a raw query string into ordered pairs. Components that
// fail to unescape are kept verbatim rather than dropped.
func parseQuery(raw string) *queryString {
	q := &queryString{}
	for _, chunk := range strings.Split(raw, "&") {
		if chunk == "" {
			continue
		}
		pair := queryPair{}
		if idx := strings.Index(chunk, "="); idx >= 0 {
			pair.key = unescapeOrRaw(chunk[:idx])
			pair.value = unescapeOrRaw(chunk[idx+1:])
			pair.hasValue = true
		} else {
			pair.key = unescapeOrRaw(chunk)
		}
		q.pairs = append(q.pairs, pair)
	}
	return q
}

// set assigns key=value, overwriting the first existing entry for the key
// and dropping any duplicates, so repeated sets never accumulate.
func (q *queryString) set(key, value string) {
	q.setPair(queryPair{key: key, value: value, hasValue: true})
}

func (q *queryString) setPair(pair queryPair) {
	replaced := false
	kept := q.pairs[:0]
	for _, existing := range q.pairs {
		if existing.key != pair.key {
			kept = append(kept, existing)
			continue
		}
		if !replaced {
			kept = append(kept, pair)
			replaced = true
		}
	}
	q.pairs = kept
	if !replaced {
		q.pairs = append(q.pairs, pair)
	}
}

// encode renders the pairs back into a raw query string.
func (q *queryString) encode() string {
	var b strings.Builder
	for i, pair := range q.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.key))
		if pair.hasValue {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(pair.value))
		}
	}
	return b.String()
}

func unescapeOrRaw(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return s
}
