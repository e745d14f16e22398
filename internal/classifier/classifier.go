// Package classifier derives request attributes from the User-Agent header
// and edge metadata: the device class (mobile, tablet, desktop), whether the
// requester is a known search crawler, and the normalized country code.
//
// Classification is a pure function of its inputs. The Classifier wraps the
// classification functions with an LRU memo keyed by the raw User-Agent
// string, since real traffic repeats a small set of UA strings heavily; cache
// hits are semantically identical to recomputation.
package classifier

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Device is the resolved device class for a request.
type Device string

const (
	// DeviceMobile is a phone-class device
	DeviceMobile Device = "mobile"
	// DeviceTablet is a tablet-class device
	DeviceTablet Device = "tablet"
	// DeviceDesktop is everything that is neither mobile nor tablet
	DeviceDesktop Device = "desktop"
)

// Result holds the derived attributes for a single User-Agent string.
type Result struct {
	Device Device
	Bot    bool
}

// crawlerSignatures lists lower-cased substrings identifying major search
// engine crawlers and well-known SEO/crawling tools. Matching is substring
// containment on the lower-cased UA, no regex.
var crawlerSignatures = []string{
	"googlebot",
	"adsbot-google",
	"mediapartners-google",
	"bingbot",
	"msnbot",
	"slurp",
	"duckduckbot",
	"baiduspider",
	"yandexbot",
	"yandeximages",
	"applebot",
	"sogou",
	"exabot",
	"seznambot",
	"ia_archiver",
	"ahrefsbot",
	"semrushbot",
	"mj12bot",
	"dotbot",
	"petalbot",
	"screaming frog",
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
}

var (
	// phoneTokens match UA fragments that only ever appear on phones.
	phoneTokens = regexp.MustCompile(`(?i)(iphone|ipod|windows phone|iemobile|blackberry|opera mini)`)

	// mobileWord matches "mobile" as a standalone token.
	mobileWord = regexp.MustCompile(`(?i)\bmobile\b`)
)

// IsSearchBot reports whether the User-Agent belongs to a known search
// crawler. The check is case-insensitive substring containment against a
// fixed signature list.
func IsSearchBot(ua string) bool {
	lower := strings.ToLower(ua)
	for _, sig := range crawlerSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// IsTabletUA reports whether the User-Agent looks like a tablet. Android
// tablets typically omit the "Mobile" token, so an Android UA without
// "mobile" counts as a tablet.
func IsTabletUA(ua string) bool {
	lower := strings.ToLower(ua)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return true
	}
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}

// IsMobileUA reports whether the User-Agent looks like a phone. Android UAs
// are mobile only when they carry the "Mobile" token.
func IsMobileUA(ua string) bool {
	if phoneTokens.MatchString(ua) {
		return true
	}
	lower := strings.ToLower(ua)
	if strings.Contains(lower, "android") {
		return strings.Contains(lower, "mobile")
	}
	return mobileWord.MatchString(ua)
}

// DeviceFor resolves the device class for a User-Agent. Tablet detection runs
// first: an Android tablet must never classify as mobile even though loose
// mobile heuristics could match it.
func DeviceFor(ua string) Device {
	if IsTabletUA(ua) {
		return DeviceTablet
	}
	if IsMobileUA(ua) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// NormalizeCountry uppercases an edge-supplied ISO-3166-1 alpha-2 country
// code. Returns the empty string when the edge layer did not provide one.
func NormalizeCountry(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Classifier memoizes UA classification results in a fixed-size LRU cache.
// Safe for concurrent use.
type Classifier struct {
	cache *lru.Cache[string, Result]
}

// DefaultCacheSize is used when New receives a non-positive size.
const DefaultCacheSize = 4096

// New creates a Classifier with an LRU memo of the given size.
func New(cacheSize int) *Classifier {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	// lru.New only fails on a non-positive size, which is guarded above.
	cache, _ := lru.New[string, Result](cacheSize)
	return &Classifier{cache: cache}
}

// Classify returns the device class and bot flag for a User-Agent string.
func (c *Classifier) Classify(ua string) Result {
	if cached, ok := c.cache.Get(ua); ok {
		return cached
	}
	result := Result{
		Device: DeviceFor(ua),
		Bot:    IsSearchBot(ua),
	}
	c.cache.Add(ua, result)
	return result
}
