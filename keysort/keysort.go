// Package keysort sorts parallel key/value arrays by key using a pool of
// workers: runs are sorted concurrently, then merged pairwise in rounds.
//
// The sort is not stable. Values with equal keys may end up in any order.
package keysort

import (
	"fmt"
	"slices"
	"sort"
)

// Runner executes fn over [0, n) split into contiguous chunks and returns
// once every chunk has finished.
type Runner interface {
	Workers() int
	Run(n int, fn func(worker, i0, i1 int))
}

// Serial runs everything on the calling goroutine.
type Serial struct{}

func (Serial) Workers() int { return 1 }

func (Serial) Run(n int, fn func(worker, i0, i1 int)) {
	if n > 0 {
		fn(0, 0, n)
	}
}

// MinRunLength is the smallest run worth sorting on its own worker.
const MinRunLength = 1024

// Sorter owns the scratch space for sorting arrays of a fixed length.
type Sorter struct {
	runner  Runner
	n       int
	runs    int
	keysTmp []int32
	valsTmp []int32
}

// NewSorter prepares a sorter for arrays of length n.
func NewSorter(n int, runner Runner) *Sorter {
	runs := 1
	if runner.Workers() > 1 {
		runs = min(runner.Workers(), max(1, n/MinRunLength))
	}
	s := &Sorter{runner: runner, n: n, runs: runs}
	if runs > 1 {
		s.keysTmp = make([]int32, n)
		s.valsTmp = make([]int32, n)
	}
	return s
}

// Runs returns how many runs the input is split into before merging.
func (s *Sorter) Runs() int { return s.runs }

// Sort orders keys ascending and permutes values identically.
func (s *Sorter) Sort(keys, values []int32) {
	if len(keys) != s.n || len(values) != s.n {
		panic(fmt.Sprintf("keysort: sorter sized for %d, got keys=%d values=%d", s.n, len(keys), len(values)))
	}
	if s.runs == 1 {
		sort.Sort(pairs{keys, values})
		return
	}

	s.runner.Run(s.runs, func(_, r0, r1 int) {
		for r := r0; r < r1; r++ {
			lo, hi := s.runBounds(r)
			sort.Sort(pairs{keys[lo:hi], values[lo:hi]})
		}
	})

	srcK, srcV := keys, values
	dstK, dstV := s.keysTmp, s.valsTmp
	inTmp := false
	for width := 1; width < s.runs; width *= 2 {
		blocks := (s.runs + 2*width - 1) / (2 * width)
		s.runner.Run(blocks, func(_, b0, b1 int) {
			for b := b0; b < b1; b++ {
				lo, _ := s.runBounds(b * 2 * width)
				mid, _ := s.runBounds(min(b*2*width+width, s.runs))
				_, hi := s.runBounds(min(b*2*width+2*width, s.runs) - 1)
				if mid >= hi {
					copy(dstK[lo:hi], srcK[lo:hi])
					copy(dstV[lo:hi], srcV[lo:hi])
					continue
				}
				merge(dstK[lo:hi], dstV[lo:hi], srcK[lo:mid], srcV[lo:mid], srcK[mid:hi], srcV[mid:hi])
			}
		})
		srcK, dstK = dstK, srcK
		srcV, dstV = dstV, srcV
		inTmp = !inTmp
	}

	if inTmp {
		copy(keys, srcK)
		copy(values, srcV)
	}
}

// runBounds returns the slot range of run r. Run s.runs maps to [n, n).
func (s *Sorter) runBounds(r int) (lo, hi int) {
	return r * s.n / s.runs, (r + 1) * s.n / s.runs
}

func merge(dk, dv, ak, av, bk, bv []int32) {
	i, j, o := 0, 0, 0
	for i < len(ak) && j < len(bk) {
		if bk[j] < ak[i] {
			dk[o], dv[o] = bk[j], bv[j]
			j++
		} else {
			dk[o], dv[o] = ak[i], av[i]
			i++
		}
		o++
	}
	for ; i < len(ak); i, o = i+1, o+1 {
		dk[o], dv[o] = ak[i], av[i]
	}
	for ; j < len(bk); j, o = j+1, o+1 {
		dk[o], dv[o] = bk[j], bv[j]
	}
}

// Pairs sorts keys and values on the calling goroutine.
func Pairs(keys, values []int32) {
	NewSorter(len(keys), Serial{}).Sort(keys, values)
}

// pairs implements sort.Interface over parallel key/value slices.
type pairs struct {
	keys, values []int32
}

func (p pairs) Len() int           { return len(p.keys) }
func (p pairs) Less(i, j int) bool { return p.keys[i] < p.keys[j] }
func (p pairs) Swap(i, j int) {
	p.keys[i], p.keys[j] = p.keys[j], p.keys[i]
	p.values[i], p.values[j] = p.values[j], p.values[i]
}

// Verify checks that keys are ascending and that (key, value) pairs are the
// same multiset as (origKeys, origValues).
func Verify(origKeys, origValues, keys, values []int32) error {
	if len(keys) != len(origKeys) || len(values) != len(origValues) || len(keys) != len(values) {
		return fmt.Errorf("length mismatch: keys %d->%d values %d->%d",
			len(origKeys), len(keys), len(origValues), len(values))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			return fmt.Errorf("keys not ascending at %d: %d > %d", i, keys[i-1], keys[i])
		}
	}

	want := pack(origKeys, origValues)
	got := pack(keys, values)
	slices.Sort(want)
	slices.Sort(got)
	for i := range want {
		if want[i] != got[i] {
			k, v := int32(want[i]>>32), int32(uint32(want[i]))
			return fmt.Errorf("pair (key %d, value %d) lost by sort", k, v)
		}
	}
	return nil
}

func pack(keys, values []int32) []int64 {
	out := make([]int64, len(keys))
	for i := range keys {
		out[i] = int64(keys[i])<<32 | int64(uint32(values[i]))
	}
	return out
}
