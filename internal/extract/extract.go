// Package extract locates the structured payload embedded in a model's
// free-text reply. Replies are inherently unstructured: the extractor is
// permissive about surrounding prose but strict about requiring a
// syntactically valid JSON candidate.
package extract

import (
	"encoding/json"
	"regexp"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)\\s*\n?(.*?)```")

// A strategy is total: it always returns a candidate-or-nothing, never an error.
type strategy func(reply string) (json.RawMessage, bool)

var strategies = []strategy{fromLabeledFence, fromBareSpan}

// Find returns the first valid JSON payload found in reply. Strategies are
// tried in order: a ```json fenced block first, then the first top-level
// brace/bracket span that parses. ok=false means the reply is conversational
// prose, which is a valid outcome, not an error.
func Find(reply string) (json.RawMessage, bool) {
	for _, s := range strategies {
		if payload, ok := s(reply); ok {
			return payload, true
		}
	}
	return nil, false
}

func fromLabeledFence(reply string) (json.RawMessage, bool) {
	m := fenceRe.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	if candidate := m[1]; json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), true
	}
	return nil, false
}

func fromBareSpan(reply string) (json.RawMessage, bool) {
	for i := 0; i < len(reply); i++ {
		if reply[i] != '{' && reply[i] != '[' {
			continue
		}
		end, ok := spanEnd(reply, i)
		if !ok {
			continue
		}
		if candidate := reply[i:end]; json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), true
		}
	}
	return nil, false
}

// spanEnd returns the index just past the balanced close of the brace or
// bracket opening at start, tracking string literals and escapes.
func spanEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
