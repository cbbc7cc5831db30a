// Sortcheck exercises the parallel key/value sort on a fixed example and on
// random inputs, and times it against a single-worker sort.
//
// Usage: go run ./cmd/sortcheck -n 1000000 -workers 8
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/pthm-cable/boids/keysort"
	"github.com/pthm-cable/boids/sim"
)

func main() {
	n := flag.Int("n", 1<<20, "Pairs in the random case")
	maxKey := flag.Int("max-key", 1<<16, "Keys are drawn from [0, max-key)")
	workers := flag.Int("workers", 0, "Worker count (0 = GOMAXPROCS)")
	rounds := flag.Int("rounds", 5, "Random inputs to sort")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	fleet := sim.NewFleet(*workers)
	defer fleet.Stop()

	ok := checkExample(fleet)
	ok = checkRandom(fleet, *n, *maxKey, *rounds, rand.New(rand.NewSource(*seed))) && ok
	if !ok {
		os.Exit(1)
	}
}

// checkExample sorts the small reference input and compares it exactly.
func checkExample(fleet *sim.Fleet) bool {
	keys := []int32{0, 1, 0, 3, 0, 2, 2, 0, 5, 6}
	values := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	origKeys, origValues := slices.Clone(keys), slices.Clone(values)

	keysort.NewSorter(len(keys), fleet).Sort(keys, values)

	want := []int32{0, 0, 0, 0, 1, 2, 2, 3, 5, 6}
	if !slices.Equal(keys, want) {
		slog.Error("example keys wrong", "got", keys, "want", want)
		return false
	}
	if err := keysort.Verify(origKeys, origValues, keys, values); err != nil {
		slog.Error("example pairs wrong", "error", err)
		return false
	}
	slog.Info("example sorted", "keys", keys, "values", values)
	return true
}

// checkRandom sorts random inputs with the fleet and serially, verifying both.
func checkRandom(fleet *sim.Fleet, n, maxKey, rounds int, rng *rand.Rand) bool {
	rounds = max(rounds, 1)
	parallel := keysort.NewSorter(n, fleet)
	serial := keysort.NewSorter(n, keysort.Serial{})

	var parallelTime, serialTime time.Duration
	for r := 0; r < rounds; r++ {
		keys := make([]int32, n)
		values := make([]int32, n)
		for i := range keys {
			keys[i] = int32(rng.Intn(maxKey))
			values[i] = int32(i)
		}
		origKeys, origValues := slices.Clone(keys), slices.Clone(values)
		k2, v2 := slices.Clone(keys), slices.Clone(values)

		start := time.Now()
		parallel.Sort(keys, values)
		parallelTime += time.Since(start)

		start = time.Now()
		serial.Sort(k2, v2)
		serialTime += time.Since(start)

		if err := keysort.Verify(origKeys, origValues, keys, values); err != nil {
			slog.Error("parallel sort failed", "round", r, "error", err)
			return false
		}
		if err := keysort.Verify(origKeys, origValues, k2, v2); err != nil {
			slog.Error("serial sort failed", "round", r, "error", err)
			return false
		}
	}

	slog.Info("random inputs sorted",
		"n", n,
		"rounds", rounds,
		"workers", fleet.Workers(),
		"runs", parallel.Runs(),
		"parallel_avg", (parallelTime / time.Duration(rounds)).String(),
		"serial_avg", (serialTime / time.Duration(rounds)).String(),
		"speedup", float64(serialTime)/float64(max(parallelTime, 1)),
	)
	return true
}
