package llm

import (
	"regexp"
	"strings"
)

// Models wrap their answers in varying decoration: markdown fences,
// "SQLQuery:" prefixes, explanatory prose before or after the statement.
// ExtractSQL recovers the bare statement from that noise.
var (
	fencePattern     = regexp.MustCompile("(?i)```(?:sql)?")
	sqlPrefixPattern = regexp.MustCompile(`(?im)^\s*SQLQuery:\s*`)
	statementPattern = regexp.MustCompile(`(?is)\b((?:SELECT|WITH)\b.*)`)
	whitespaceRun    = regexp.MustCompile(`[ \t]+`)
)

// ExtractSQL pulls the SQL out of a raw model response, starting at the
// first SELECT or WITH. Everything through the final semicolon is kept, so
// a response that chains several statements comes back whole and the
// safety gate sees the chain rather than a truncated prefix. Prose after
// the final semicolon is dropped. Returns the empty string when no
// statement can be found; the caller treats that as a generation failure.
func ExtractSQL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	cleaned := fencePattern.ReplaceAllString(raw, "")
	cleaned = sqlPrefixPattern.ReplaceAllString(cleaned, "")

	match := statementPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return ""
	}

	sqlQuery := match[1]
	if idx := strings.LastIndexByte(sqlQuery, ';'); idx >= 0 {
		sqlQuery = sqlQuery[:idx+1]
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	sqlQuery = strings.TrimSuffix(sqlQuery, ";")
	sqlQuery = strings.TrimSpace(sqlQuery)
	sqlQuery = whitespaceRun.ReplaceAllString(sqlQuery, " ")

	return sqlQuery
}
