// Package partition splits a filtered document-ID set into train/dev/test
// subsets. Partitions are pairwise disjoint, their union is exactly the
// input, and the assignment is deterministic for a given configuration.
package partition

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Result holds the three partitions, each in ascending ID order.
type Result struct {
	Train []string
	Dev   []string
	Test  []string
}

// Sizes returns the partition sizes keyed by name.
func (r Result) Sizes() map[string]int {
	return map[string]int{
		"train": len(r.Train),
		"dev":   len(r.Dev),
		"test":  len(r.Test),
	}
}

// ByRatio assigns IDs to partitions by proportion. The IDs are sorted, then
// shuffled with the seeded generator; dev and test take their floor share
// and the remainder goes to train. Ratios must be non-negative and sum to 1.
func ByRatio(ids []string, train, dev, test float64, seed int64) (Result, error) {
	for _, r := range []float64{train, dev, test} {
		if r < 0 || r > 1 {
			return Result{}, fmt.Errorf("partition: ratio %v outside [0,1]", r)
		}
	}
	if sum := train + dev + test; math.Abs(sum-1) > 1e-9 {
		return Result{}, fmt.Errorf("partition: ratios sum to %v, want 1", sum)
	}

	shuffled := append([]string(nil), ids...)
	sort.Strings(shuffled)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	nDev := int(dev * float64(n))
	nTest := int(test * float64(n))

	res := Result{
		Dev:   sorted(shuffled[:nDev]),
		Test:  sorted(shuffled[nDev : nDev+nTest]),
		Train: sorted(shuffled[nDev+nTest:]),
	}
	return res, nil
}

// ByLists assigns IDs to partitions by explicit membership: IDs in dev go to
// dev, IDs in test go to test, and everything else goes to train. The dev
// and test lists must not overlap; listed IDs absent from the input are
// ignored.
func ByLists(ids, dev, test []string) (Result, error) {
	devSet := toSet(dev)
	testSet := toSet(test)
	for id := range devSet {
		if testSet[id] {
			return Result{}, fmt.Errorf("partition: id %q in both dev and test lists", id)
		}
	}

	var res Result
	for _, id := range ids {
		switch {
		case devSet[id]:
			res.Dev = append(res.Dev, id)
		case testSet[id]:
			res.Test = append(res.Test, id)
		default:
			res.Train = append(res.Train, id)
		}
	}
	sort.Strings(res.Train)
	sort.Strings(res.Dev)
	sort.Strings(res.Test)
	return res, nil
}

// ByBoundaries assigns IDs by two ID prefixes, typically date prefixes of
// the YYYY/MM/DD/DOCID layout: IDs below the lower boundary go to train,
// IDs in [lower, upper) to dev, and the rest to test.
func ByBoundaries(ids []string, lower, upper string) (Result, error) {
	if lower == "" || upper == "" {
		return Result{}, fmt.Errorf("partition: both boundaries are required")
	}
	if upper < lower {
		lower, upper = upper, lower
	}

	var res Result
	for _, id := range ids {
		switch {
		case id < lower:
			res.Train = append(res.Train, id)
		case id < upper:
			res.Dev = append(res.Dev, id)
		default:
			res.Test = append(res.Test, id)
		}
	}
	sort.Strings(res.Train)
	sort.Strings(res.Dev)
	sort.Strings(res.Test)
	return res, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
