// Package pattern implements ant-style path patterns for access rules.
package pattern

import (
	"regexp"
	"strings"
	"sync"
)

// Pattern is a compiled ant-style path pattern.
//
// Supported syntax:
//   - `?` matches exactly one character within a path segment
//   - `*` matches zero or more characters within a path segment
//   - `**` matches zero or more characters across segment boundaries
//
// All other characters match literally. Patterns are anchored: the whole
// request path must match.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
}

// cacheMaxSize is the maximum number of entries in the compiled pattern cache.
const cacheMaxSize = 1000

// cacheEntry holds a compiled regex and its access order for LRU eviction.
type cacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

// cache is a bounded LRU cache of compiled patterns. Access-rule sets repeat
// patterns across services, so compilation is shared process-wide.
var (
	cache         = make(map[string]*cacheEntry)
	cacheMu       sync.RWMutex
	accessCounter int64
)

// Compile compiles an ant-style pattern, reusing a cached compilation when
// the same pattern was seen before.
func Compile(raw string) (*Pattern, error) {
	metrics := GetCacheMetrics()

	cacheMu.Lock()
	entry, ok := cache[raw]
	if ok {
		// Cache hit: update access order for LRU tracking
		accessCounter++
		entry.accessOrder = accessCounter
		cacheMu.Unlock()

		metrics.cacheHits.Inc()

		return &Pattern{raw: raw, regex: entry.regex}, nil
	}
	cacheMu.Unlock()

	metrics.cacheMisses.Inc()

	// Compile outside the lock (expensive operation)
	regex, err := regexp.Compile(toRegex(raw))
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	// Double-check after acquiring lock (another goroutine may have added it)
	if existing, exists := cache[raw]; exists {
		accessCounter++
		existing.accessOrder = accessCounter
		cacheMu.Unlock()
		return &Pattern{raw: raw, regex: existing.regex}, nil
	}

	// Evict LRU entry if cache is at capacity
	if len(cache) >= cacheMaxSize {
		evictLRUEntry()
		metrics.cacheEvictions.Inc()
	}

	accessCounter++
	cache[raw] = &cacheEntry{
		regex:       regex,
		accessOrder: accessCounter,
	}
	metrics.cacheSize.Set(float64(len(cache)))
	cacheMu.Unlock()

	return &Pattern{raw: raw, regex: regex}, nil
}

// evictLRUEntry removes the least recently used entry from the cache.
// Must be called with cacheMu held.
func evictLRUEntry() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range cache {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(cache, lruKey)
	}
}

// toRegex converts an ant-style pattern to an anchored regex pattern.
func toRegex(pattern string) string {
	var result strings.Builder
	result.WriteString("^")

	i := 0
	for i < len(pattern) {
		switch {
		case i+1 < len(pattern) && pattern[i:i+2] == "**":
			result.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			result.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			result.WriteString("[^/]")
			i++
		default:
			result.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}

	result.WriteString("$")
	return result.String()
}

// Match reports whether the request path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return p.regex.MatchString(path)
}

// String returns the original pattern text.
func (p *Pattern) String() string {
	return p.raw
}
