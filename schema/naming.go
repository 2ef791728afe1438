package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

var pluralizeClient = pluralizer.NewClient()

// NamingStrategy derives database names from Go names.
type NamingStrategy interface {
	ColumnName(fieldName string) string
	TableName(structName string) string
}

// SnakeCaseStrategy maps fields to snake_case columns and structs to
// snake_case tables, pluralized unless Singular is set.
type SnakeCaseStrategy struct {
	Singular bool
}

func (SnakeCaseStrategy) ColumnName(fieldName string) string {
	return toSnakeCase(fieldName)
}

func (s SnakeCaseStrategy) TableName(structName string) string {
	name := toSnakeCase(structName)
	if s.Singular {
		return name
	}
	return pluralizeLast(name)
}

// DefaultNamingStrategy returns snake_case columns with plural tables.
func DefaultNamingStrategy() NamingStrategy {
	return SnakeCaseStrategy{}
}

// acronyms are matched whole before the general rules.
var acronyms = map[string]string{
	"ID":   "id",
	"UUID": "uuid",
	"URL":  "url",
	"API":  "api",
	"JSON": "json",
	"XML":  "xml",
	"SQL":  "sql",
}

// toSnakeCase converts CamelCase, including runs of capitals such as
// HTTPServer, to snake_case.
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if s, ok := acronyms[name]; ok {
		return s
	}
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// pluralizeLast pluralizes the last word of a snake_case name, so blog_post
// becomes blog_posts.
func pluralizeLast(name string) string {
	if name == "" {
		return ""
	}
	i := strings.LastIndexByte(name, '_')
	return name[:i+1] + pluralize(name[i+1:])
}

func pluralize(word string) string {
	if word == "" || pluralizeClient.IsPlural(word) && !pluralizeClient.IsSingular(word) {
		return word
	}
	return strings.ToLower(pluralizeClient.Plural(word))
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
