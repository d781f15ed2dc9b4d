package infer

// Integer width thresholds on the largest absolute value observed.
const (
	smallIntLimit = 32767
	intLimit      = 2147483647
)

// maxShortText is the widest text column still declared with a length.
const maxShortText = 255

// maxDecimalPrecision is the largest precision every supported dialect can
// declare (SQL Server caps DECIMAL at 38). Wider numeric columns are kept as
// text so no digits are lost.
const maxDecimalPrecision = 38

// Resolve reduces a column's statistics to one logical type plus
// nullability. It is a pure function of stats.
//
// Precedence for pure columns (every non-null cell has one kind):
// Integer → SmallInt/Int/BigInt by maximum magnitude, Decimal →
// Decimal(p,s) with the maximum precision and scale seen, DateTime →
// Timestamp, Text → ShortText(n) or LongText.
//
// Integer and Decimal cells together still reduce numerically: integers are
// decimals with scale 0. Any other mix falls back to text sized by the longest
// non-null value of any kind, since every value keeps its original string form.
//
// A column with no non-null cells resolves to nullable ShortText(1).
func Resolve(stats ColumnStats) (LogicalType, bool) {
	nullable := stats.NullCount > 0
	if stats.NonNullCount == 0 {
		return ShortText(1), true
	}

	k := stats.Kinds
	switch {
	case k.distinct() == 1 && k.Integer > 0:
		return integerType(stats.MaxMagnitude), nullable

	case k.distinct() == 1 && k.DateTime > 0:
		return Timestamp(), nullable

	case k.Text == 0 && k.DateTime == 0 && k.Decimal > 0:
		// Pure Decimal, or Decimal mixed with Integer.
		p, s := decimalShape(stats)
		if p > maxDecimalPrecision {
			return textType(stats.MaxValueLength), nullable
		}
		return Decimal(p, s), nullable

	default:
		return textType(stats.MaxValueLength), nullable
	}
}

func integerType(mag uint64) LogicalType {
	switch {
	case mag < smallIntLimit:
		return SmallInt()
	case mag < intLimit:
		return Int()
	default:
		return BigInt()
	}
}

// decimalShape widens precision until the largest integer part and the
// largest scale fit in the same declaration. Taking the maximum precision
// alone could truncate: 12345.1 (6,1) and 0.12345 (5,5) need (10,5).
func decimalShape(stats ColumnStats) (precision, scale int) {
	scale = stats.Scale
	precision = stats.Precision
	if need := stats.IntegerDigits + scale; need > precision {
		precision = need
	}
	if precision < 1 {
		precision = 1
	}
	return precision, scale
}

func textType(maxLen int) LogicalType {
	if maxLen > maxShortText {
		return LongText(maxLen)
	}
	if maxLen < 1 {
		maxLen = 1
	}
	return ShortText(maxLen)
}
