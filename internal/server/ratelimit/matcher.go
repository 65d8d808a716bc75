package ratelimit

import (
	"strings"
)

// Match returns the rule for a request. Exact paths win over prefixes, and
// longer prefixes win over shorter ones.
func Match(method, path string, rules []Rule) (Rule, bool) {
	for _, r := range rules {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}

	best := -1
	for i, r := range rules {
		if r.Method != method || !strings.HasSuffix(r.Path, "/") || !strings.HasPrefix(path, r.Path) {
			continue
		}
		if best < 0 || len(r.Path) > len(rules[best].Path) {
			best = i
		}
	}
	if best < 0 {
		return Rule{}, false
	}
	return rules[best], true
}
