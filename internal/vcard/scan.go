package vcard

// cutUnescaped slices s around the first delimiter that is not escaped with a
// backslash. A delimiter in the first position always counts. Escapes are left
// in place.
func cutUnescaped(s string, delim byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != delim {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			continue
		}
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// splitUnescaped splits s on every unescaped delim, keeping empty segments.
func splitUnescaped(s string, delim byte) []string {
	var out []string
	for {
		before, after, ok := cutUnescaped(s, delim)
		out = append(out, before)
		if !ok {
			return out
		}
		s = after
	}
}

// opt is a string that may be absent. Absent and present-but-empty differ.
type opt struct {
	val string
	ok  bool
}

func some(s string) opt { return opt{val: s, ok: true} }

// contentLine is a logical line cut into its four structural segments.
type contentLine struct {
	group  opt
	name   string
	params opt
	value  opt
}

// splitLine decomposes `[group.]name[;params]:value`. The value delimiter is
// located first, then the parameter delimiter within the prefix, then the
// group separator within what remains.
func splitLine(line string) contentLine {
	var cl contentLine

	prefix, value, ok := cutUnescaped(line, ':')
	if ok {
		cl.value = some(value)
	}

	head, params, ok := cutUnescaped(prefix, ';')
	if ok {
		cl.params = some(params)
	}

	group, name, ok := cutUnescaped(head, '.')
	if ok {
		cl.group = some(group)
		cl.name = name
	} else {
		cl.name = head
	}
	return cl
}
