package infer

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// distinctCap bounds the per-column distinct-value set.
const distinctCap = 10000

// Profile folds Classify over every cell of col and returns the column's
// statistics. Heterogeneous columns are profiled as-is; reconciling the mix
// is Resolve's job.
func Profile(col Column) ColumnStats {
	acc := newAccumulator()
	for _, c := range col.Cells {
		if !c.Valid {
			acc.add(Value{Kind: KindNull})
			continue
		}
		acc.add(Classify(c.Raw))
	}
	return acc.result()
}

// ProfileColumns profiles every column and returns the stats in column order.
//
// With workers <= 1 the columns are profiled sequentially. Otherwise up to
// workers columns are profiled concurrently; columns share no state, and each
// result is written to its own index so the output order never depends on
// scheduling.
func ProfileColumns(ctx context.Context, cols []Column, workers int) ([]ColumnStats, error) {
	out := make([]ColumnStats, len(cols))
	if workers <= 1 {
		for i := range cols {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = Profile(cols[i])
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range cols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Profile(cols[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// accumulator is the mutable state of the Profile fold. It never escapes
// Profile; callers only see the ColumnStats snapshot from result().
type accumulator struct {
	stats ColumnStats

	haveNumeric bool
	minNum      float64
	maxNum      float64

	haveText bool

	layouts  map[string]int
	distinct map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		layouts:  make(map[string]int),
		distinct: make(map[string]struct{}),
	}
}

func (a *accumulator) add(v Value) {
	s := &a.stats
	s.TotalCount++

	if v.Kind == KindNull {
		s.NullCount++
		s.Kinds.Null++
		return
	}

	s.NonNullCount++
	if v.Length > s.MaxValueLength {
		s.MaxValueLength = v.Length
	}
	a.addDistinct(v.Text)

	switch v.Kind {
	case KindInteger:
		s.Kinds.Integer++
		a.addNumeric(v.Float)
		if m := magnitude(v.Int); m > s.MaxMagnitude {
			s.MaxMagnitude = m
		}
		if v.IntegerDigits > s.IntegerDigits {
			s.IntegerDigits = v.IntegerDigits
		}

	case KindDecimal:
		s.Kinds.Decimal++
		a.addNumeric(v.Float)
		if v.Precision > s.Precision {
			s.Precision = v.Precision
		}
		if v.Scale > s.Scale {
			s.Scale = v.Scale
		}
		if v.IntegerDigits > s.IntegerDigits {
			s.IntegerDigits = v.IntegerDigits
		}

	case KindDateTime:
		s.Kinds.DateTime++
		a.layouts[v.Layout]++

	default:
		s.Kinds.Text++
		if !a.haveText || v.Length < s.MinLength {
			s.MinLength = v.Length
		}
		if v.Length > s.MaxLength {
			s.MaxLength = v.Length
		}
		a.haveText = true
	}
}

func (a *accumulator) addNumeric(f float64) {
	if !a.haveNumeric {
		a.minNum, a.maxNum = f, f
		a.haveNumeric = true
		return
	}
	a.minNum = math.Min(a.minNum, f)
	a.maxNum = math.Max(a.maxNum, f)
}

func (a *accumulator) addDistinct(v string) {
	if a.stats.DistinctCapped {
		return
	}
	a.distinct[v] = struct{}{}
	if len(a.distinct) >= distinctCap {
		a.stats.DistinctCapped = true
		a.distinct = nil
	}
}

func (a *accumulator) result() ColumnStats {
	s := a.stats
	if a.haveNumeric {
		lo, hi := a.minNum, a.maxNum
		s.Min, s.Max = &lo, &hi
	}
	if s.DistinctCapped {
		s.Distinct = distinctCap
	} else {
		s.Distinct = len(a.distinct)
	}

	best, bestN := "", 0
	for lay, n := range a.layouts {
		if n > bestN || (n == bestN && lay < best) {
			best, bestN = lay, n
		}
	}
	s.DateLayout = best
	return s
}

// magnitude returns |n| without overflowing on math.MinInt64.
func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
