package schema

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxIdentLength matches PostgreSQL's identifier limit, the tightest
// of the supported dialects.
const DefaultMaxIdentLength = 63

// MinIdentLength is the smallest usable identifier limit: room for one
// character plus a "_nn" de-duplication suffix.
const MinIdentLength = 4

// NamingOptions controls identifier normalization.
type NamingOptions struct {
	// MaxLength truncates identifiers (on a UTF-8 boundary). <= 0 uses
	// DefaultMaxIdentLength; values below MinIdentLength are raised to it.
	MaxLength int
	// SingularTable singularizes the last word of the table name
	// ("employees" -> "employee").
	SingularTable bool
	// QuoteIdentifiers quotes every table and column name per dialect in
	// DDL. Names that are reserved words in a dialect are quoted regardless.
	QuoteIdentifiers bool
}

func (o NamingOptions) maxLength() int {
	switch {
	case o.MaxLength <= 0:
		return DefaultMaxIdentLength
	case o.MaxLength < MinIdentLength:
		return MinIdentLength
	default:
		return o.MaxLength
	}
}

// NormalizeIdentifier converts an arbitrary header or file name into a
// lowercase identifier made of [a-z0-9_].
//
//   - accents are folded ("Café" -> "cafe")
//   - runs of space - . / \ : ; become a single underscore
//   - every other character is dropped
//   - leading/trailing underscores are trimmed
//   - a leading digit gets a "c_" prefix
//
// The result may be empty; callers substitute a positional name.
func NormalizeIdentifier(s string, maxLen int) string {
	s = strings.ToLower(strings.TrimSpace(foldAccents(s)))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '.' || r == '/' || r == '\\' || r == ':' || r == ';' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			lastUnderscore = r == '_'
		}
	}

	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "c_" + out
	}
	return truncateIdentifier(out, maxLen)
}

// foldAccents strips combining marks after canonical decomposition.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncateIdentifier enforces identifier length limits while preserving
// UTF-8 validity.
func truncateIdentifier(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.ValidString(s[:cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], "_")
}

// ColumnNames normalizes headers and makes them unique. Empty results become
// column_<n> (1-based position); repeats get _2, _3, ... suffixes.
func ColumnNames(headers []string, opts NamingOptions) []string {
	maxLen := opts.maxLength()
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, h := range headers {
		base := NormalizeIdentifier(h, maxLen)
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			suffix := "_" + strconv.Itoa(n)
			name = truncateIdentifier(base, max(maxLen-len(suffix), 1)) + suffix
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// TableName normalizes a table name, falling back to "document_table".
func TableName(s string, opts NamingOptions) string {
	name := NormalizeIdentifier(s, opts.maxLength())
	if name == "" {
		name = "document_table"
	}
	if opts.SingularTable {
		name = singularLastWord(name)
	}
	return name
}

func singularLastWord(name string) string {
	i := strings.LastIndexByte(name, '_')
	return name[:i+1] + inflection.Singular(name[i+1:])
}
