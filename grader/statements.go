package grader

import "strings"

// statementCount reports how many top-level SQL statements a script
// contains. The executor uses it to pick between the row-returning
// primitive, which accepts exactly one statement, and script execution.
//
// The scanner skips string literals, quoted identifiers and comments,
// and keeps track of CREATE TRIGGER bodies: semicolons between BEGIN and
// the matching END belong to the trigger, not to the script.
func statementCount(script string) int {
	var (
		count      int
		sawContent bool // non-blank content since the last terminator
		inTrigger  bool // TRIGGER keyword seen in the current statement
		bodyDepth  int  // BEGIN/CASE nesting inside a trigger body
	)

	i := 0
	for i < len(script) {
		c := script[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(script, i, c)
			sawContent = true
		case c == '[':
			i = skipPast(script, i+1, ']')
			sawContent = true
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			i = skipPast(script, i+2, '\n')
		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			if end := strings.Index(script[i+2:], "*/"); end >= 0 {
				i += 2 + end + 2
			} else {
				i = len(script)
			}
		case c == ';':
			if bodyDepth > 0 {
				sawContent = true
			} else if sawContent {
				count++
				sawContent = false
				inTrigger = false
			}
			i++
		case isWordByte(c):
			start := i
			for i < len(script) && isWordByte(script[i]) {
				i++
			}
			switch strings.ToUpper(script[start:i]) {
			case "TRIGGER":
				inTrigger = true
			case "BEGIN":
				if inTrigger {
					bodyDepth++
				}
			case "CASE":
				if bodyDepth > 0 {
					bodyDepth++
				}
			case "END":
				if bodyDepth > 0 {
					bodyDepth--
				}
			}
			sawContent = true
		default:
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != '\f' && c != '\v' {
				sawContent = true
			}
			i++
		}
	}
	if sawContent {
		count++
	}
	return count
}

// skipQuoted advances past a literal or quoted identifier opened at i,
// honoring the doubled-quote escape.
func skipQuoted(script string, i int, quote byte) int {
	i++
	for i < len(script) {
		if script[i] != quote {
			i++
			continue
		}
		if i+1 < len(script) && script[i+1] == quote {
			i += 2
			continue
		}
		return i + 1
	}
	return i
}

func skipPast(script string, i int, delim byte) int {
	for i < len(script) && script[i] != delim {
		i++
	}
	if i < len(script) {
		i++
	}
	return i
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
