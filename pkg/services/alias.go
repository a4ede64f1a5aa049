package services

import (
	"regexp"
	"sort"
)

// AliasMapper rewrites user vocabulary into database vocabulary before a
// question reaches the LLM ("club" -> "team", "rating" -> "ovr"). Matches
// are whole-word and case-insensitive.
type AliasMapper struct {
	rules []aliasRule
}

type aliasRule struct {
	pattern *regexp.Regexp
	actual  string
}

// NewAliasMapper compiles the alias map into replacement rules. Longer
// aliases are applied first so "overall rating" wins over "rating".
func NewAliasMapper(aliases map[string]string) *AliasMapper {
	keys := make([]string, 0, len(aliases))
	for alias := range aliases {
		keys = append(keys, alias)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]aliasRule, 0, len(keys))
	for _, alias := range keys {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
		if err != nil {
			continue
		}
		rules = append(rules, aliasRule{pattern: pattern, actual: aliases[alias]})
	}

	return &AliasMapper{rules: rules}
}

// Apply rewrites all aliases in the question.
func (m *AliasMapper) Apply(question string) string {
	result := question
	for _, rule := range m.rules {
		result = rule.pattern.ReplaceAllString(result, rule.actual)
	}
	return result
}
