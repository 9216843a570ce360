package stages

import (
	"encoding/json"
	"fmt"
)

// extractJSONObject parses a JSON object from a provider reply. Replies
// often wrap the object in prose or code fences, so after a direct parse
// fails the first balanced brace span is tried.
func extractJSONObject(text string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return result, nil
	}

	start := -1
	braceCount := 0
	for i, c := range text {
		if c == '{' {
			if start == -1 {
				start = i
			}
			braceCount++
		} else if c == '}' {
			braceCount--
			if braceCount == 0 && start != -1 {
				jsonStr := text[start : i+1]
				if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
					return result, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no valid JSON object found in response")
}

// jsonString renders a value as compact JSON for prompt interpolation.
func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
