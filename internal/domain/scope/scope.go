// Package scope bounds regions of JavaScript/TypeScript source text by
// counting delimiter depth. It skips string literals, template literals and
// comments but is not a parser: regex literals are not recognised.
package scope

import "strings"

// walk calls fn with the index of every byte at or after from that is not
// part of a string literal or comment. Iteration stops when fn returns false
// or when an unterminated literal/comment runs to the end of src.
func walk(src string, from int, fn func(i int) bool) {
	for i := from; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return
			}

			i += nl
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return
			}

			i += 2 + end + 1
		case c == '"' || c == '\'' || c == '`':
			end := skipString(src, i)
			if end < 0 {
				return
			}

			i = end
		default:
			if !fn(i) {
				return
			}
		}
	}
}

// skipString returns the index of the quote closing the literal opened at
// src[open], or -1. Single and double quoted strings also end at a newline
// so a stray quote cannot swallow the rest of the file.
func skipString(src string, open int) int {
	quote := src[open]

	for j := open + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			if quote != '`' {
				return j
			}
		}
	}

	return -1
}

func isOpener(c byte) bool {
	return c == '(' || c == '{' || c == '['
}

func isCloser(c byte) bool {
	return c == ')' || c == '}' || c == ']'
}

// MatchingClose returns the index of the delimiter that closes the one at
// src[open]. The second result is false when src[open] is not an opening
// delimiter or depth never returns to zero.
func MatchingClose(src string, open int) (int, bool) {
	if open < 0 || open >= len(src) || !isOpener(src[open]) {
		return -1, false
	}

	depth := 0
	closing := -1

	walk(src, open, func(i int) bool {
		switch {
		case isOpener(src[i]):
			depth++
		case isCloser(src[i]):
			depth--
			if depth == 0 {
				closing = i
				return false
			}
		}

		return true
	})

	return closing, closing >= 0
}

// PropertyEnd returns the index of the first top-level "," at or after from,
// or of the closer ending the enclosing object or call, whichever comes first.
func PropertyEnd(src string, from int) (int, bool) {
	depth := 0
	end := -1

	walk(src, from, func(i int) bool {
		switch c := src[i]; {
		case isOpener(c):
			depth++
		case isCloser(c):
			if depth == 0 {
				end = i
				return false
			}

			depth--
		case c == ',':
			if depth == 0 {
				end = i
				return false
			}
		}

		return true
	})

	return end, end >= 0
}

// CodeEnd returns the index just past the last byte of src[from:to] that is
// neither whitespace nor inside a comment. String literals count as code.
// It returns from when the range holds no code.
func CodeEnd(src string, from, to int) int {
	end := from

	for i := from; i < to; i++ {
		c := src[i]

		switch {
		case c == '/' && i+1 < to && src[i+1] == '/':
			nl := strings.IndexByte(src[i:to], '\n')
			if nl < 0 {
				return end
			}

			i += nl
		case c == '/' && i+1 < to && src[i+1] == '*':
			stop := strings.Index(src[i+2:to], "*/")
			if stop < 0 {
				return end
			}

			i += 2 + stop + 1
		case c == '"' || c == '\'' || c == '`':
			stop := skipString(src, i)
			if stop < 0 || stop >= to {
				return to
			}

			i = stop
			end = stop + 1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			end = i + 1
		}
	}

	return end
}

// InCode reports whether offset lies outside string literals and comments.
func InCode(src string, offset int) bool {
	if offset < 0 || offset >= len(src) {
		return false
	}

	found := false

	walk(src, 0, func(i int) bool {
		if i == offset {
			found = true
		}

		return i < offset
	})

	return found
}

// Line returns the 1-based line number of offset.
func Line(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}

	return strings.Count(src[:offset], "\n") + 1
}

// Indent returns the leading whitespace of the line containing offset.
func Indent(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1

	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}

	return src[start:end]
}
