package sorting

import "slices"

// Engine orders records by a strategy. It never mutates its input; callers
// get a fresh slice in the requested order.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Sort applies the strategy's descending-first comparison, negated for
// ascending requests. The sort is stable: ties keep their original
// relative order unless the strategy defines its own tiebreak.
func (e *Engine) Sort(records []*Record, strategy *Strategy, direction Direction) ([]*Record, error) {
	if strategy == nil || strategy.Compare == nil {
		return nil, ErrNoComparator
	}

	sorted := make([]*Record, len(records))
	copy(sorted, records)

	compare := strategy.Compare
	if direction == Ascending {
		descending := compare
		compare = func(a, b *Record) int { return -descending(a, b) }
	}

	slices.SortStableFunc(sorted, compare)
	return sorted, nil
}
