package eval

import "errors"

// ErrExhausted is returned by Next when every combination was produced.
var ErrExhausted = errors.New("cartesian product exhausted")

// CartesianProduct enumerates combinations of elements taken one from each
// non-empty input, last input varies fastest. It is single pass and can not
// be restarted.
type CartesianProduct[T any] struct {
	lists   [][]T
	indices []int
	done    bool
}

// NewCartesianProduct creates product over lists. Empty lists are skipped
// and do not take a position in produced combinations.
func NewCartesianProduct[T any](lists [][]T) *CartesianProduct[T] {
	cp := &CartesianProduct[T]{}
	for _, l := range lists {
		if len(l) > 0 {
			cp.lists = append(cp.lists, l)
		}
	}
	cp.indices = make([]int, len(cp.lists))
	cp.done = len(cp.lists) == 0
	return cp
}

// HasNext reports whether Next would produce a combination.
func (cp *CartesianProduct[T]) HasNext() bool {
	return !cp.done
}

// Next returns the next combination.
func (cp *CartesianProduct[T]) Next() ([]T, error) {
	if cp.done {
		return nil, ErrExhausted
	}
	res := make([]T, len(cp.lists))
	for i, l := range cp.lists {
		res[i] = l[cp.indices[i]]
	}
	cp.advance()
	return res, nil
}

func (cp *CartesianProduct[T]) advance() {
	for i := len(cp.indices) - 1; i >= 0; i-- {
		cp.indices[i]++
		if cp.indices[i] < len(cp.lists[i]) {
			return
		}
		cp.indices[i] = 0
	}
	cp.done = true
}

// Product collects all remaining combinations.
func Product[T any](lists [][]T) [][]T {
	cp := NewCartesianProduct(lists)
	var res [][]T
	for cp.HasNext() {
		// Next can not fail while HasNext holds
		c, _ := cp.Next()
		res = append(res, c)
	}
	return res
}
