package extract

import (
	"strings"
	"unicode"
)

// blankPreprocessor prepares SCSS, Sass and LESS source for the CSS scanner
// without moving any rune: "//" line comments become spaces and
// interpolations ("#{...}", LESS "@{...}") become dynamicMark runes.
// Strings, block comments and url(...) bodies are left untouched.
func blankPreprocessor(src string, d styleDialect) string {
	r := []rune(src)
	interp := '#'
	if d == dialectLess {
		interp = '@'
	}

	for i := 0; i < len(r); {
		c := r[i]
		next := rune(0)
		if i+1 < len(r) {
			next = r[i+1]
		}

		switch {
		case c == '"' || c == '\'':
			i = skipQuoted(r, i)
		case c == '/' && next == '*':
			i = skipBlockComment(r, i)
		case c == '/' && next == '/':
			for i < len(r) && r[i] != '\n' {
				r[i] = ' '
				i++
			}
		case isURLOpen(r, i):
			for i < len(r) && r[i] != ')' && r[i] != '\n' {
				i++
			}
		case c == interp && next == '{':
			end := matchingBrace(r, i+1)
			if end < 0 {
				i++
				continue
			}
			for k := i; k <= end; k++ {
				if r[k] != '\n' {
					r[k] = dynamicMark
				}
			}
			i = end + 1
		default:
			i++
		}
	}
	return string(r)
}

func skipQuoted(r []rune, i int) int {
	quote := r[i]
	for i++; i < len(r); i++ {
		switch r[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return i
}

func skipBlockComment(r []rune, i int) int {
	for i += 2; i+1 < len(r); i++ {
		if r[i] == '*' && r[i+1] == '/' {
			return i + 2
		}
	}
	return len(r)
}

func isURLOpen(r []rune, i int) bool {
	if i+4 > len(r) || !strings.EqualFold(string(r[i:i+4]), "url(") {
		return false
	}
	return i == 0 || !(unicode.IsLetter(r[i-1]) || unicode.IsDigit(r[i-1]) || r[i-1] == '-' || r[i-1] == '_')
}

// matchingBrace returns the index of the "}" closing the "{" at open, or -1.
func matchingBrace(r []rune, open int) int {
	depth := 0
	for i := open; i < len(r); i++ {
		switch r[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'':
			i = skipQuoted(r, i) - 1
		}
	}
	return -1
}

// sassToBraces rewrites the indented Sass syntax into brace syntax. Only line
// ends are touched, so every token keeps its line and column: a line with
// deeper-indented followers opens a block, other lines end with ";", and
// closing braces are appended to the last line of the block.
func sassToBraces(src string) string {
	lines := strings.Split(src, "\n")

	nextContent := func(from int) int {
		for i := from; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) != "" {
				return i
			}
		}
		return -1
	}

	var stack []int // indentation of open blocks
	prev := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		ind := indentation(line)
		for len(stack) > 0 && stack[len(stack)-1] >= ind {
			lines[prev] += " }"
			stack = stack[:len(stack)-1]
		}

		switch n := nextContent(i + 1); {
		case strings.HasSuffix(trimmed, ","):
			// selector list continues on the next line
		case n >= 0 && indentation(lines[n]) > ind:
			lines[i] += " {"
			stack = append(stack, ind)
		default:
			lines[i] += ";"
		}
		prev = i
	}
	for range stack {
		lines[prev] += " }"
	}
	return strings.Join(lines, "\n")
}

func indentation(line string) int {
	n := 0
	for _, c := range line {
		if c != ' ' && c != '\t' {
			break
		}
		n++
	}
	return n
}
