package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParsedTag is the decoded form of a `db` struct tag.
//
// Supported tag syntax:
//
//	`db:"column_name"`                       // Basic column mapping
//	`db:"name:custom;primary_key"`           // Explicit name with flags
//	`db:"unique;length:255;comment:e-mail"`  // Constraints and hints
//	`db:"unique:tenant_email"`               // Member of a compound unique index
//	`db:"default:0;type:decimal(10,2)"`      // Default and type override
//	`db:"primary_key;generator:uuid"`        // Generated key
//	`db:"-"`                                 // Skip field entirely
type ParsedTag struct {
	ColumnName    string
	Skip          bool
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	UniqueGroup   string
	Length        int
	Comment       string
	ForeignKey    string
	Default       *string
	Quote         bool
	Generator     string
	Type          string
}

// TagParser reads struct tags under a configurable key, deriving column
// names with a NamingStrategy when the tag omits them.
type TagParser struct {
	key    string
	naming NamingStrategy
}

func NewTagParser(key string, naming NamingStrategy) *TagParser {
	if key == "" {
		key = "db"
	}
	if naming == nil {
		naming = DefaultNamingStrategy()
	}
	return &TagParser{key: key, naming: naming}
}

// ParseTag parses the tag of one field.
func (p *TagParser) ParseTag(fieldName string, tag reflect.StructTag) (*ParsedTag, error) {
	value := strings.TrimSpace(tag.Get(p.key))
	if value == "-" {
		return &ParsedTag{Skip: true}, nil
	}

	parsed := &ParsedTag{ColumnName: p.naming.ColumnName(fieldName)}
	if value == "" {
		return parsed, nil
	}

	options := strings.Split(value, ";")
	// A leading bare word that is not a known flag is the column name.
	if first := strings.TrimSpace(options[0]); first != "" && !strings.Contains(first, ":") && !isFlag(first) {
		parsed.ColumnName = first
		options = options[1:]
	}
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if err := p.parseOption(parsed, option); err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldName, err)
		}
	}
	if parsed.ColumnName == "" {
		return nil, fmt.Errorf("field %s: empty column name", fieldName)
	}
	return parsed, nil
}

func (p *TagParser) parseOption(tag *ParsedTag, option string) error {
	if i := strings.IndexByte(option, ':'); i != -1 {
		return parseKeyValue(tag, strings.TrimSpace(option[:i]), strings.TrimSpace(option[i+1:]))
	}
	return parseFlag(tag, option)
}

var flags = map[string]func(*ParsedTag){
	"primary":        func(t *ParsedTag) { t.PrimaryKey = true },
	"primary_key":    func(t *ParsedTag) { t.PrimaryKey = true },
	"autoincrement":  func(t *ParsedTag) { t.AutoIncrement = true },
	"auto_increment": func(t *ParsedTag) { t.AutoIncrement = true },
	"unique":         func(t *ParsedTag) { t.Unique = true },
	"quote":          func(t *ParsedTag) { t.Quote = true },
}

func isFlag(s string) bool {
	_, ok := flags[s]
	return ok
}

func parseFlag(tag *ParsedTag, flag string) error {
	set, ok := flags[flag]
	if !ok {
		return fmt.Errorf("unknown tag option %q", flag)
	}
	set(tag)
	return nil
}

func parseKeyValue(tag *ParsedTag, key, value string) error {
	switch key {
	case "name", "column":
		tag.ColumnName = value
	case "unique":
		tag.UniqueGroup = value
	case "length", "len":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid length %q: must be a positive integer", value)
		}
		tag.Length = n
	case "comment":
		tag.Comment = value
	case "foreign_key", "fk", "references":
		if i := strings.LastIndexByte(value, '.'); i <= 0 || i == len(value)-1 {
			return fmt.Errorf("invalid foreign key %q: want table.column", value)
		}
		tag.ForeignKey = value
	case "default":
		v := value
		tag.Default = &v
	case "generator", "gen":
		if _, ok := defaultRegistry.Get(value); !ok {
			return fmt.Errorf("unknown generator %q", value)
		}
		tag.Generator = value
	case "type":
		tag.Type = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown tag option %q", key)
	}
	return nil
}
