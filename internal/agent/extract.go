package agent

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

var fenceRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// ExtractJSON pulls a JSON object out of free-form agent output. It tries a
// fenced code block first, then falls back to scanning for balanced {...}
// spans, longest first. Returns ok=false when nothing parses; absence is a
// normal outcome, never an error.
func ExtractJSON(output string) (map[string]any, bool) {
	if output == "" {
		return nil, false
	}

	if m := fenceRe.FindStringSubmatch(output); m != nil {
		if obj, ok := tryParse(strings.TrimSpace(m[1])); ok {
			return obj, true
		}
	}

	candidates := balancedSpans(output)
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})
	for _, c := range candidates {
		if obj, ok := tryParse(c); ok {
			return obj, true
		}
	}

	return nil, false
}

// balancedSpans collects every top-level {...} span in the text.
func balancedSpans(s string) []string {
	var spans []string
	depth := 0
	start := -1
	for i, ch := range s {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					spans = append(spans, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return spans
}

func tryParse(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
