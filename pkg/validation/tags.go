package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tagRegex       = regexp.MustCompile(`^[a-z0-9-]{2,30}$`)
	tagCollapse    = regexp.MustCompile(`[\s_]+`)
	tagStripRegexp = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeTag converts a course tag to a lowercase slug and validates format.
// Valid tags are 2-30 characters containing only lowercase letters, numbers, and hyphens.
func NormalizeTag(value string) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	normalized = tagCollapse.ReplaceAllString(normalized, "-")
	normalized = tagStripRegexp.ReplaceAllString(normalized, "")
	normalized = strings.Trim(normalized, "-")

	if !tagRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid tag %q. Use 2-30 lowercase characters (letters, numbers, hyphens)", value)
	}
	return normalized, nil
}

// NormalizeTags normalizes a tag list, dropping duplicates while preserving order.
func NormalizeTags(values []string) ([]string, error) {
	seen := make(map[string]struct{}, len(values))
	tags := make([]string, 0, len(values))

	for _, value := range values {
		tag, err := NormalizeTag(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags, nil
}
