// Package json recovers JSON objects from model-generated text.
//
// The backend forwards quiz payloads as raw model output when it cannot
// parse them itself. Such text is often fenced in a markdown code block or
// surrounded by commentary.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract returns the JSON object contained in text. It accepts, in order:
// a bare object, an object inside a ``` or ```json fence, and the span from
// the first '{' to the last '}'.
func Extract(text string) (string, error) {
	body := unfence(text)
	if json.Valid([]byte(body)) {
		return body, nil
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start != -1 && end > start {
		candidate := body[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	preview := strings.TrimSpace(text)
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return "", fmt.Errorf("no JSON object found in %q", preview)
}

// unfence strips one surrounding markdown code fence, with or without a
// language tag.
func unfence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Decode extracts the JSON object in text and unmarshals it into T.
func Decode[T any](text string) (T, error) {
	var out T
	raw, err := Extract(text)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return out, nil
}
