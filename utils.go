package gaushala

import "strings"

var newlineEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// EscapeNewlines stores multi-line text as a single line. Backslashes are
// doubled so that text already containing a literal `\n` survives the trip.
func EscapeNewlines(s string) string {
	return newlineEscaper.Replace(s)
}

// UnescapeNewlines reverses EscapeNewlines. Unknown escapes are kept verbatim.
func UnescapeNewlines(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// DisplayName renders a profile name the way verified attesters are listed.
func DisplayName(name string, role Role) string {
	if role == RoleDoctor {
		return "Dr. " + name
	}
	return name
}
