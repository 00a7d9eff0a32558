package driver

import (
	"regexp"
	"strings"
)

// AnyPattern is the nil pattern: it matches every name.
var AnyPattern *string

// Pattern returns a pointer to p, for use as a catalog pattern argument.
func Pattern(p string) *string {
	return &p
}

// likeMatcher matches names against a SQL LIKE pattern, ignoring case.
// '%' matches any run and '_' one character. '\' escapes '%', '_' and
// itself; before any other character it is literal.
type likeMatcher struct {
	any  bool
	none bool
	re   *regexp.Regexp
}

func compileLike(pattern *string) likeMatcher {
	if pattern == nil {
		return likeMatcher{any: true}
	}
	if *pattern == "" {
		return likeMatcher{none: true}
	}

	var b strings.Builder
	b.WriteString(`(?is)^`)
	escaped := false
	for _, r := range *pattern {
		switch {
		case escaped:
			if r != '%' && r != '_' && r != '\\' {
				b.WriteString(`\\`)
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(`.*`)
		case r == '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(`\\`)
	}
	b.WriteString(`$`)
	return likeMatcher{re: regexp.MustCompile(b.String())}
}

func (m likeMatcher) match(name string) bool {
	switch {
	case m.any:
		return true
	case m.none:
		return false
	}
	return m.re.MatchString(name)
}
