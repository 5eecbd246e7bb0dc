package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content holds no JSON value,
// either directly or inside a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Extract returns the JSON document carried by content. Plain JSON is
// returned as-is; otherwise the first markdown code fence is unwrapped.
func Extract(content string) (string, error) {
	content = strings.TrimSpace(content)

	if json.Valid([]byte(content)) {
		return content, nil
	}

	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if json.Valid([]byte(cleaned)) {
			return cleaned, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrParseFailed, content)
}

// Parse extracts JSON from content and unmarshals it into T.
func Parse[T any](content string) (T, error) {
	var result T

	raw, err := Extract(content)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return result, nil
}
