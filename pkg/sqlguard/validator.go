// Package sqlguard decides whether LLM-generated SQL is safe to execute.
// The gate is textual, not a parser: it only ever needs to admit read-only
// single statements, so a false rejection is an acceptable trade-off over
// a false acceptance.
package sqlguard

import (
	"regexp"
	"strings"
)

// Verdict is the validator's decision for one candidate statement.
// It is transient and never persisted.
type Verdict struct {
	Allowed bool
	// Reason explains a rejection. Empty when Allowed.
	Reason string
	// NormalizedSQL is the statement with the trailing semicolon stripped,
	// ready for execution. Empty when rejected.
	NormalizedSQL string
}

// Statements must read, not write. Any of these appearing as a whole token
// outside string literals blocks execution.
var deniedKeywords = map[string]struct{}{
	"INSERT":   {},
	"UPDATE":   {},
	"DELETE":   {},
	"DROP":     {},
	"ALTER":    {},
	"TRUNCATE": {},
	"CREATE":   {},
	"GRANT":    {},
	"REVOKE":   {},
}

// modifyingCTEPattern matches CTEs that contain data-modifying operations,
// e.g. WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted.
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// Validate inspects a candidate SQL statement and decides whether it is
// safe to run. The checks, in order:
//
//  1. Reject empty or whitespace-only input.
//  2. Strip leading comments, then require a SELECT or WITH prefix.
//  3. Strip one trailing semicolon; any semicolon remaining outside string
//     literals means statement chaining and is rejected.
//  4. Reject deny-listed write/DDL keywords appearing as whole tokens
//     outside string literals.
func Validate(sqlQuery string) Verdict {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return reject("statement is empty")
	}

	body := strings.TrimSpace(stripLeadingComments(sqlQuery))
	if body == "" {
		return reject("statement contains only comments")
	}

	upper := strings.ToUpper(body)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return reject("only SELECT statements are allowed")
	}

	if strings.HasPrefix(upper, "WITH") && modifyingCTEPattern.MatchString(body) {
		return reject("data-modifying CTEs are not allowed")
	}

	normalized := stripTrailingSemicolon(body)

	if hasSemicolonOutsideStrings(normalized) {
		return reject("multiple SQL statements are not allowed")
	}

	if kw, found := findDeniedKeyword(normalized); found {
		return reject("statement contains forbidden keyword " + kw)
	}

	return Verdict{Allowed: true, NormalizedSQL: normalized}
}

func reject(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// stripLeadingComments removes any run of line (--) and block (/* */)
// comments from the front of the statement so the prefix check sees the
// first real keyword.
func stripLeadingComments(sqlQuery string) string {
	s := sqlQuery
	for {
		s = strings.TrimLeft(s, " \t\n\r")
		switch {
		case strings.HasPrefix(s, "--"):
			if idx := strings.IndexByte(s, '\n'); idx >= 0 {
				s = s[idx+1:]
			} else {
				return ""
			}
		case strings.HasPrefix(s, "/*"):
			if idx := strings.Index(s, "*/"); idx >= 0 {
				s = s[idx+2:]
			} else {
				return ""
			}
		default:
			return s
		}
	}
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding
// whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}

const (
	stateNormal = iota
	stateSingleQuote
	stateDoubleQuote
)

// hasSemicolonOutsideStrings reports whether the SQL contains a semicolon
// outside string literals. The trailing semicolon is already stripped, so
// any hit indicates statement chaining.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// For a doubled quote this exits and immediately re-enters on the
			// next quote, which correctly keeps us inside the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// findDeniedKeyword scans word tokens outside string literals and returns
// the first deny-listed keyword it sees. Keywords embedded in identifiers
// (created_at, dropped_items) do not match because the whole token is
// compared.
func findDeniedKeyword(sqlQuery string) (string, bool) {
	state := stateNormal
	prevChar := rune(0)
	var token strings.Builder

	checkToken := func() (string, bool) {
		if token.Len() == 0 {
			return "", false
		}
		word := strings.ToUpper(token.String())
		token.Reset()
		if _, denied := deniedKeywords[word]; denied {
			return word, true
		}
		return "", false
	}

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch {
			case char == '\'':
				if kw, found := checkToken(); found {
					return kw, true
				}
				state = stateSingleQuote
			case char == '"':
				if kw, found := checkToken(); found {
					return kw, true
				}
				state = stateDoubleQuote
			case isWordChar(char):
				token.WriteRune(char)
			default:
				if kw, found := checkToken(); found {
					return kw, true
				}
			}
		case stateSingleQuote:
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return checkToken()
}

func isWordChar(char rune) bool {
	return char == '_' ||
		(char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}
