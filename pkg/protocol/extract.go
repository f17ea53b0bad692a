package protocol

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNoJSON        = errors.New("no JSON object found in model output")
	ErrUnbalanced    = errors.New("JSON object is not balanced")
	thinkSpanPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ExtractJSON pulls a single JSON object out of raw model output. It
// tolerates <think> spans, markdown code fences, and prose before or after
// the object; trailing garbage is dropped at the last balanced brace.
func ExtractJSON(raw string) (string, error) {
	cleaned := thinkSpanPattern.ReplaceAllString(raw, "")
	cleaned = stripFences(cleaned)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}
	return "", ErrUnbalanced
}

// stripFences removes markdown code fences around the payload, with or
// without a language tag.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && len(strings.TrimSpace(rest[:nl])) <= 8 {
			// Opening fence with an optional language tag on the same line.
			rest = rest[nl+1:]
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return rest
	}
	return trimmed
}
