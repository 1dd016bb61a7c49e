package filter

import (
	"regexp"
	"strings"
)

// Term is one filtering term. Terms wrapped in /slashes/ are case-insensitive
// regular expressions; anything else is a plain substring.
type Term struct {
	plain string
	regex *regexp.Regexp
}

// IsPattern reports whether raw uses the /regex/ syntax.
func IsPattern(raw string) bool {
	t := strings.TrimSpace(raw)
	return len(t) >= 3 && t[0] == '/' && t[len(t)-1] == '/'
}

// Compile parses raw. A /pattern/ that does not compile returns the error
// together with a plain term for the whole string, which is how the server
// treats it.
func Compile(raw string) (Term, error) {
	trimmed := strings.TrimSpace(raw)
	if IsPattern(trimmed) {
		re, err := regexp.Compile("(?i)" + trimmed[1:len(trimmed)-1])
		if err == nil {
			return Term{regex: re}, nil
		}
		return Term{plain: strings.ToLower(trimmed)}, err
	}
	return Term{plain: strings.ToLower(trimmed)}, nil
}

// InvalidPatterns returns the /pattern/ terms that fail to compile, in input
// order. The server would silently match them as plain text.
func InvalidPatterns(terms []string) []string {
	var bad []string
	for _, raw := range terms {
		if _, err := Compile(raw); err != nil {
			bad = append(bad, strings.TrimSpace(raw))
		}
	}
	return bad
}

// Matches reports whether title contains the term.
func (t Term) Matches(title string) bool {
	if t.regex != nil {
		return t.regex.MatchString(title)
	}
	return t.plain != "" && strings.Contains(strings.ToLower(title), t.plain)
}
