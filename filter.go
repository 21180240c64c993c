package exif_scanner

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultImageExtensions are matched when no extension list is configured.
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// KeyFilter selects object keys by case-insensitive file extension.
type KeyFilter struct {
	pattern *regexp.Regexp
}

func NewKeyFilter(extensions []string) (*KeyFilter, error) {
	quoted := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(ext))
	}
	if len(quoted) == 0 {
		return nil, errors.New("no image extensions configured")
	}
	pattern, err := regexp.Compile(`(?i)\.(` + strings.Join(quoted, "|") + `)$`)
	if err != nil {
		return nil, err
	}
	return &KeyFilter{pattern: pattern}, nil
}

func (f *KeyFilter) Match(key string) bool {
	return f.pattern.MatchString(key)
}
