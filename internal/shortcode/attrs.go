package shortcode

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Attrs maps lowercased attribute names to their unquoted values. A bare flag
// such as `open` maps to the empty string.
type Attrs map[string]string

// ParseAttrs lexes the attribute list of a shortcode opener, e.g.
// ` title="My file.go" open`. Words are split with shell quoting rules, so
// double- and single-quoted values may contain spaces. Backslashes are
// literal, so `title="C:\"` is the value `C:\`. The first occurrence of a
// repeated name wins.
func ParseAttrs(raw string) (Attrs, error) {
	words, err := shellquote.Split(literalBackslashes(raw))
	if err != nil {
		return nil, fmt.Errorf("parse attributes %q: %w", raw, err)
	}
	attrs := make(Attrs, len(words))
	for _, w := range words {
		key, val, _ := strings.Cut(w, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, dup := attrs[key]; dup {
			continue
		}
		attrs[key] = val
	}
	return attrs, nil
}

// literalBackslashes doubles every backslash outside single quotes so the
// shell splitter unescapes it back to one.
func literalBackslashes(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var sb strings.Builder
	inSingle, inDouble := false, false
	for _, r := range raw {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '\\' && !inSingle:
			sb.WriteRune(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Get returns the named value and whether the attribute was present.
func (a Attrs) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// Value returns the named value, or "" when absent.
func (a Attrs) Value(key string) string {
	return a[key]
}

// Has reports whether the attribute (or flag) was present.
func (a Attrs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Required returns the named value when it is present and non-empty.
func (a Attrs) Required(key string) (string, bool) {
	v, ok := a[key]
	return v, ok && v != ""
}
