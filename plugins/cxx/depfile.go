package cxx

import "strings"

// parseDepfile returns the prerequisites of the make rule in data, as
// written by the compiler's -MD option. Escaped spaces are part of a
// path and backslash-newline continues the rule.
func parseDepfile(data []byte) []string {
	s := string(data)

	i := strings.IndexByte(s, ':')
	if i < 0 {
		return nil
	}

	s = s[i+1:]

	var (
		deps []string
		cur  strings.Builder
	)

	flush := func() {
		if cur.Len() > 0 {
			deps = append(deps, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == ' ':
			cur.WriteByte(' ')
			i++

		case c == '\\' && i+1 < len(s) && (s[i+1] == '\n' || s[i+1] == '\r'):
			flush()
			i++

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()

		default:
			cur.WriteByte(c)
		}
	}

	flush()

	return deps
}
