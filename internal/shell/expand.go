package shell

import (
	"strconv"
	"strings"
)

// expandLine substitutes $VAR, ${VAR}, $? and a word-leading ~ before the
// line is split into words. Single-quoted text and backslash escapes are
// copied untouched and ~ is only expanded outside quotes. Substituted
// values are escaped so they stay inside the word they appeared in.
func (s *Shell) expandLine(line string) string {
	if !strings.ContainsAny(line, "$~") {
		return line
	}
	var b strings.Builder
	inSingle, inDouble := false, false
	wordStart := true
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
			b.WriteByte(c)
			i++
		case c == '\\':
			end := min(i+2, len(line))
			b.WriteString(line[i:end])
			i = end
		case c == '\'' && !inDouble:
			inSingle = true
			b.WriteByte(c)
			i++
		case c == '"':
			inDouble = !inDouble
			b.WriteByte(c)
			i++
		case c == '$':
			value, n, ok := s.lookupVar(line[i+1:])
			if !ok {
				b.WriteByte(c)
				i++
				break
			}
			b.WriteString(escapeValue(value, inDouble))
			i += 1 + n
		case c == '~' && wordStart && !inDouble && tildeEnds(line[i+1:]):
			if home := s.Home(); home != "" {
				b.WriteString(escapeValue(home, false))
			} else {
				b.WriteByte(c)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
		wordStart = !inSingle && !inDouble && (c == ' ' || c == '\t')
	}
	return b.String()
}

// lookupVar resolves the reference at the start of rest (the text after a
// '$'). It reports how many bytes of rest were consumed; ok is false when
// rest does not start with a variable reference.
func (s *Shell) lookupVar(rest string) (value string, n int, ok bool) {
	if rest == "" {
		return "", 0, false
	}
	if rest[0] == '?' {
		return strconv.Itoa(s.lastStatus), 1, true
	}
	if rest[0] == '{' {
		end := strings.IndexByte(rest, '}')
		if end < 0 || nameLen(rest[1:end]) != end-1 || end == 1 {
			return "", 0, false
		}
		value, _ = s.env.Get(rest[1:end])
		return value, end + 1, true
	}
	n = nameLen(rest)
	if n == 0 {
		return "", 0, false
	}
	value, _ = s.env.Get(rest[:n])
	return value, n, true
}

// nameLen returns the length of the variable name at the start of str.
func nameLen(str string) int {
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return i
		}
	}
	return len(str)
}

func tildeEnds(rest string) bool {
	return rest == "" || rest[0] == '/' || rest[0] == ' ' || rest[0] == '\t'
}

// escapeValue backslash-escapes the characters the word splitter would
// otherwise treat as separators or quotes.
func escapeValue(value string, inDouble bool) string {
	special := " \t\r\n'\"\\#"
	if inDouble {
		special = "\"\\"
	}
	if !strings.ContainsAny(value, special) {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if strings.IndexByte(special, value[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(value[i])
	}
	return b.String()
}
