package ratelimit

import (
	"strings"
)

// MatchEndpoint finds the configuration for a request. Config paths use the
// same syntax as the server's routes: "{name}" matches exactly one non-empty
// segment. When several configs match, the one with the fewest wildcards
// wins, so "/extractions/stream" beats "/extractions/{sourceId}".
// Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	segments := splitPath(path)

	var (
		best      *EndpointConfig
		bestWilds int
	)
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		wilds, ok := matchSegments(splitPath(config.Path), segments)
		if !ok {
			continue
		}
		if best == nil || wilds < bestWilds {
			best, bestWilds = config, wilds
		}
	}
	return best
}

// routeKey identifies the bucket for a request: the matched pattern when
// there is one, otherwise the raw path.
func routeKey(path, method string, matched *EndpointConfig) string {
	if matched != nil {
		return method + " " + matched.Path
	}
	return method + " " + path
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// matchSegments reports whether pattern matches segments and how many
// wildcard segments it used.
func matchSegments(pattern, segments []string) (int, bool) {
	if len(pattern) != len(segments) {
		return 0, false
	}
	wilds := 0
	for i, p := range pattern {
		if isWildcard(p) {
			if segments[i] == "" {
				return 0, false
			}
			wilds++
			continue
		}
		if p != segments[i] {
			return 0, false
		}
	}
	return wilds, true
}

func isWildcard(segment string) bool {
	return len(segment) > 2 && segment[0] == '{' && segment[len(segment)-1] == '}'
}
