// Package infer implements the type-inference core: per-cell classification,
// per-column statistics, and reduction of those statistics into one logical
// SQL type per column.
//
// Everything in this package is pure. Nothing here logs, performs I/O, or
// returns an error for any input string: every string has a defined
// classification, and every ColumnStats value resolves to exactly one
// LogicalType.
package infer

import (
	"fmt"
	"time"
)

// Kind is the atomic kind of a single classified cell.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindDecimal
	KindDateTime
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindDateTime:
		return "datetime"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a classified cell. Only the payload fields matching Kind are set.
type Value struct {
	Kind Kind

	// Text is the trimmed cell text. Empty for KindNull.
	Text string
	// Length is the character (rune) count of Text.
	Length int

	// Int is set for KindInteger.
	Int int64
	// Float is set for KindInteger and KindDecimal.
	Float float64

	// IntegerDigits counts significant digits before the decimal point
	// (leading zeros excluded). Set for KindInteger and KindDecimal.
	IntegerDigits int
	// Precision and Scale are set for KindDecimal.
	Precision int
	Scale     int

	// Time and Layout are set for KindDateTime.
	Time   time.Time
	Layout string
}

// Cell is one raw table cell as handed over by the document reader. A cell
// that was absent from its row (short row) is Null; an empty string is still
// classified as KindNull by Classify.
type Cell struct {
	Raw   string
	Valid bool
}

// TextCell returns a present cell.
func TextCell(s string) Cell { return Cell{Raw: s, Valid: true} }

// NullCell returns an absent cell.
func NullCell() Cell { return Cell{} }

// Column is an ordered run of cells sharing one header. Identity is
// Name + Position; columns are built once and never mutated after profiling.
type Column struct {
	Name     string
	Position int
	Cells    []Cell
}

// KindCounts tallies non-null and null cells per atomic kind.
type KindCounts struct {
	Null     int `json:"null"`
	Integer  int `json:"integer"`
	Decimal  int `json:"decimal"`
	DateTime int `json:"datetime"`
	Text     int `json:"text"`
}

// distinct returns how many different non-null kinds were observed.
func (k KindCounts) distinct() int {
	n := 0
	for _, c := range []int{k.Integer, k.Decimal, k.DateTime, k.Text} {
		if c > 0 {
			n++
		}
	}
	return n
}

// ColumnStats is the reduction of a Column produced by Profile.
//
// Invariants:
//   - NullCount + NonNullCount == TotalCount
//   - Min, Max and MaxMagnitude are meaningful only when Kinds.Integer +
//     Kinds.Decimal > 0 (Min/Max are nil otherwise)
//   - MinLength/MaxLength describe Text-classified cells only;
//     MaxValueLength describes every non-null cell regardless of kind
type ColumnStats struct {
	TotalCount   int        `json:"totalCount"`
	NullCount    int        `json:"nullCount"`
	NonNullCount int        `json:"nonNullCount"`
	Kinds        KindCounts `json:"kinds"`

	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	MaxMagnitude uint64   `json:"maxMagnitude,omitempty"`

	Precision     int `json:"precision,omitempty"`
	Scale         int `json:"scale,omitempty"`
	IntegerDigits int `json:"integerDigits,omitempty"`

	MinLength      int `json:"minLength"`
	MaxLength      int `json:"maxLength"`
	MaxValueLength int `json:"maxValueLength"`

	DateLayout string `json:"dateLayout,omitempty"`

	Distinct       int  `json:"distinctCount"`
	DistinctCapped bool `json:"distinctCapped,omitempty"`
}

// Tag discriminates LogicalType.
type Tag int

const (
	TagUnknown Tag = iota
	TagSmallInt
	TagInt
	TagBigInt
	TagDecimal
	TagTimestamp
	TagShortText
	TagLongText
)

var tagNames = [...]string{
	TagUnknown:   "unknown",
	TagSmallInt:  "smallint",
	TagInt:       "int",
	TagBigInt:    "bigint",
	TagDecimal:   "decimal",
	TagTimestamp: "timestamp",
	TagShortText: "shorttext",
	TagLongText:  "longtext",
}

// String returns the lowercase tag name without parameters.
func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return "unknown"
	}
	return tagNames[t]
}

// LogicalType is a database-agnostic column type. Precision/Scale apply to
// TagDecimal; Length applies to TagShortText (declared width) and TagLongText
// (observed maximum, needed by dialects that size long text by content).
type LogicalType struct {
	Tag       Tag
	Precision int
	Scale     int
	Length    int
}

func SmallInt() LogicalType  { return LogicalType{Tag: TagSmallInt} }
func Int() LogicalType       { return LogicalType{Tag: TagInt} }
func BigInt() LogicalType    { return LogicalType{Tag: TagBigInt} }
func Timestamp() LogicalType { return LogicalType{Tag: TagTimestamp} }

func Decimal(precision, scale int) LogicalType {
	return LogicalType{Tag: TagDecimal, Precision: precision, Scale: scale}
}

func ShortText(n int) LogicalType { return LogicalType{Tag: TagShortText, Length: n} }

func LongText(observed int) LogicalType { return LogicalType{Tag: TagLongText, Length: observed} }

// String renders the descriptive form used in the analysis report,
// e.g. "SmallInt", "Decimal(4,3)", "ShortText(12)".
func (t LogicalType) String() string {
	switch t.Tag {
	case TagSmallInt:
		return "SmallInt"
	case TagInt:
		return "Int"
	case TagBigInt:
		return "BigInt"
	case TagDecimal:
		return fmt.Sprintf("Decimal(%d,%d)", t.Precision, t.Scale)
	case TagTimestamp:
		return "Timestamp"
	case TagShortText:
		return fmt.Sprintf("ShortText(%d)", t.Length)
	case TagLongText:
		return "LongText"
	default:
		return "Unknown"
	}
}
