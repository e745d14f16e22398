// Package routing implements the redirect decision pipeline: rule matching
// over a classified request context and construction of the destination URL
// for the matched rule.
//
// The package operates on an immutable RouteConfig loaded once at startup
// (see LoadConfig). Rules are evaluated strictly in declared order and the
// first rule whose match predicate is satisfied wins; there is no priority
// field and no overlap resolution beyond order.
//
// A match predicate is the conjunction of up to five constraints, evaluated
// in a fixed order with short-circuiting:
//
//  1. path      - simple patterns (exact, or prefix via a trailing "*")
//  2. pattern   - regular expressions, at least one must match
//  3. countries - ISO-3166-1 alpha-2 membership
//  4. devices   - device class membership ("any" is a wildcard)
//  5. bot       - tri-state crawler constraint
//
// A constraint that is absent or empty imposes nothing. A regex source that
// fails to compile behaves as "this pattern never matches" and is reported
// once at load time; it never aborts matching or dispatch.
//
// For a matched rule the destination URL is built by a fixed transformation
// sequence: append the original path, forward the original query (set
// semantics, last write wins by key), add extra parameters, extract a path
// segment into a parameter, and finally assign the tracking parameter so it
// can never be overwritten. The target's literal query string is preserved,
// including valueless flags such as "?4".
//
// Everything here is a pure function of (request context, config). The
// Engine keeps no per-request state and is safe for unsynchronized
// concurrent use.
package routing
