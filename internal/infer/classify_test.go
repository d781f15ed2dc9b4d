package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify verifies the fixed check order and the payload of each kind.
//
// Edge cases validated:
//   - whitespace-only input is null
//   - integers never become decimals, decimals never become dates
//   - numeric-looking strings with stray characters degrade to text
//   - integers outside int64 degrade to text
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		kind      Kind
		precision int
		scale     int
	}{
		{"empty", "", KindNull, 0, 0},
		{"whitespace", "  \t ", KindNull, 0, 0},
		{"integer", "42", KindInteger, 0, 0},
		{"negative integer", "-17", KindInteger, 0, 0},
		{"leading zeros integer", "007", KindInteger, 0, 0},
		{"padded integer", "  12 ", KindInteger, 0, 0},
		{"plus sign is text", "+5", KindText, 0, 0},
		{"int64 overflow is text", "99999999999999999999", KindText, 0, 0},
		{"decimal", "3.125", KindDecimal, 4, 3},
		{"negative decimal", "-12.50", KindDecimal, 4, 2},
		{"leading dot", ".5", KindDecimal, 1, 1},
		{"trailing dot", "10.", KindDecimal, 2, 0},
		{"zero point zero", "0.0", KindDecimal, 1, 1},
		{"zero fraction", "0.05", KindDecimal, 2, 2},
		{"two dots is not decimal", "1.2.3", KindText, 0, 0},
		{"exponent is text", "1.5e3", KindText, 0, 0},
		{"garbage suffix", "12abc", KindText, 0, 0},
		{"thousands separator", "1,000", KindText, 0, 0},
		{"iso date", "2023-01-01", KindDateTime, 0, 0},
		{"iso timestamp", "2023-01-01 10:11:12", KindDateTime, 0, 0},
		{"rfc3339", "2023-01-01T10:11:12Z", KindDateTime, 0, 0},
		{"dotted date", "31.12.2023", KindDateTime, 0, 0},
		{"slash date", "12/31/2023", KindDateTime, 0, 0},
		{"invalid date", "2023-13-45", KindText, 0, 0},
		{"word", "alpha", KindText, 0, 0},
		{"lone minus", "-", KindText, 0, 0},
		{"lone dot", ".", KindText, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.in)
			assert.Equal(t, tt.kind, got.Kind, "Classify(%q).Kind", tt.in)
			if tt.kind == KindDecimal {
				assert.Equal(t, tt.precision, got.Precision, "precision of %q", tt.in)
				assert.Equal(t, tt.scale, got.Scale, "scale of %q", tt.in)
			}
		})
	}
}

// TestClassify_Payload verifies the parsed values carried alongside the kind.
func TestClassify_Payload(t *testing.T) {
	t.Parallel()

	v := Classify(" -40000 ")
	assert.Equal(t, KindInteger, v.Kind)
	assert.Equal(t, int64(-40000), v.Int)
	assert.Equal(t, 5, v.IntegerDigits)
	assert.Equal(t, "-40000", v.Text)
	assert.Equal(t, 6, v.Length)

	d := Classify("2023-06-30")
	assert.Equal(t, KindDateTime, d.Kind)
	assert.Equal(t, "2006-01-02", d.Layout)
	assert.Equal(t, 2023, d.Time.Year())

	s := Classify("héllo")
	assert.Equal(t, KindText, s.Kind)
	assert.Equal(t, 5, s.Length, "length counts characters, not bytes")
}
