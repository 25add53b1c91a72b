// Package extract pulls a structured response envelope out of free-form
// model output. Models are asked to emit the envelope as inline JSON;
// anything that cannot be parsed degrades to raw text with default
// metadata. Extraction never fails.
package extract

import "encoding/json"

const (
	DefaultType     = "inquiry"
	DefaultCategory = "general"
	DefaultPriority = "low"
)

type Meta struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

type Structured struct {
	Response string `json:"response"`
	Meta     Meta   `json:"meta"`
}

type envelope struct {
	Response string `json:"response"`
	Meta     *Meta  `json:"meta"`
}

// Parse scans raw for the first balanced {...} span that decodes to an
// envelope with a non-empty response field. Prose braces and malformed
// spans are skipped rather than guessed at; if no span qualifies, the
// entire raw text becomes the response.
func Parse(raw string) Structured {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		end, ok := balancedSpan(raw, i)
		if !ok {
			// No balanced close ahead of this brace; later opens are
			// inside the same unterminated span, so stop scanning.
			break
		}

		var env envelope
		if err := json.Unmarshal([]byte(raw[i:end+1]), &env); err == nil && env.Response != "" {
			return withDefaults(env)
		}
		i = end
	}

	return Structured{
		Response: raw,
		Meta:     Meta{Type: DefaultType, Category: DefaultCategory, Priority: DefaultPriority},
	}
}

// FirstJSON decodes the first balanced {...} span in raw that unmarshals
// cleanly into v. It reports whether any span did.
func FirstJSON(raw string, v any) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		end, ok := balancedSpan(raw, i)
		if !ok {
			break
		}
		if err := json.Unmarshal([]byte(raw[i:end+1]), v); err == nil {
			return true
		}
		i = end
	}
	return false
}

// balancedSpan returns the index of the brace closing the span opened at
// start, honoring JSON string literals and escapes.
func balancedSpan(s string, start int) (int, bool) {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func withDefaults(env envelope) Structured {
	meta := Meta{Type: DefaultType, Category: DefaultCategory, Priority: DefaultPriority}
	if env.Meta != nil {
		if env.Meta.Type != "" {
			meta.Type = env.Meta.Type
		}
		if env.Meta.Category != "" {
			meta.Category = env.Meta.Category
		}
		if env.Meta.Priority != "" {
			meta.Priority = env.Meta.Priority
		}
	}
	return Structured{Response: env.Response, Meta: meta}
}
