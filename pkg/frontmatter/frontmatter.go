package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?(.*)`)

// Metadata is the decoded YAML block at the top of a document. Values keep
// the shape YAML gives them: scalars, lists and nested mappings.
type Metadata map[string]any

// Parse extracts frontmatter from content and returns the metadata and the
// body. Content without frontmatter yields nil metadata and no error.
func Parse(content string) (Metadata, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(matches[1]), &meta); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = Metadata{}
	}
	return normalize(meta).(Metadata), matches[2], nil
}

// normalize converts the map types yaml.v3 may produce for nested mappings
// into map[string]any so that every consumer sees one object shape.
func normalize(v any) any {
	switch t := v.(type) {
	case Metadata:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}

// ParseTimestamp parses a "2006-01-02 15:04:05" frontmatter timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

// ExtractTitle returns the first H1 heading of a body, or "".
func ExtractTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
