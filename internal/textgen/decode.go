package textgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a JSON completion into v.
// Markdown code fences around the document are tolerated.
func DecodeJSON(content string, v any) error {
	content = StripCodeFence(strings.TrimSpace(content))
	if content == "" {
		return ErrEmptyContent
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("unmarshal generated json: %w", err)
	}
	return nil
}

func StripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		// drop the language tag, e.g. ```json
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
