package shader

import (
	"fmt"
	"strings"
)

// Validate performs the structural checks that do not need a WGSL compiler: bracket balance,
// unterminated block comments, and pre-processor annotations left in assembled source.
//
// Parameters:
//   - source: the WGSL source to check
//
// Returns:
//   - error: an error naming the offending line, or nil
func Validate(source string) error {
	if strings.Count(source, "/*") > strings.Count(source, "*/") {
		return fmt.Errorf("unterminated block comment")
	}

	cleaned := stripComments(source)
	if strings.TrimSpace(cleaned) == "" {
		return fmt.Errorf("empty shader source")
	}

	type open struct {
		ch   byte
		line int
	}
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	var stack []open

	line := 1
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch c {
		case '\n':
			line++
		case '(', '[', '{':
			stack = append(stack, open{c, line})
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].ch != pairs[c] {
				return fmt.Errorf("line %d: unexpected %q", line, c)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Errorf("line %d: unclosed %q", top.line, top.ch)
	}

	for n, l := range strings.Split(source, "\n") {
		if strings.Contains(l, annotationPrefix) {
			return fmt.Errorf("line %d: unprocessed annotation %q", n+1, strings.TrimSpace(l))
		}
	}
	return nil
}
