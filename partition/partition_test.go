package partition

import (
	"fmt"
	"sort"
	"testing"
)

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("2003/01/%02d/%07d", i+1, 1000000+i)
	}
	return ids
}

// checkDisjointCover verifies the two structural invariants every mode must
// hold: the partitions are pairwise disjoint and their union is the input.
func checkDisjointCover(t *testing.T, ids []string, res Result) {
	t.Helper()
	seen := make(map[string]string, len(ids))
	for _, part := range []struct {
		name string
		ids  []string
	}{{"train", res.Train}, {"dev", res.Dev}, {"test", res.Test}} {
		for _, id := range part.ids {
			if prev, ok := seen[id]; ok {
				t.Fatalf("id %q in both %s and %s", id, prev, part.name)
			}
			seen[id] = part.name
		}
	}
	if len(seen) != len(ids) {
		t.Fatalf("partitions cover %d ids, want %d", len(seen), len(ids))
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			t.Fatalf("id %q missing from all partitions", id)
		}
	}
}

func TestByRatio_Sizes(t *testing.T) {
	ids := makeIDs(10)
	res, err := ByRatio(ids, 0.6, 0.2, 0.2, 1)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	checkDisjointCover(t, ids, res)
	if len(res.Train) != 6 || len(res.Dev) != 2 || len(res.Test) != 2 {
		t.Fatalf("sizes = %d/%d/%d, want 6/2/2", len(res.Train), len(res.Dev), len(res.Test))
	}
}

func TestByRatio_RemainderGoesToTrain(t *testing.T) {
	// 7 ids at 60/20/20: dev and test floor to 1 each, train takes the rest.
	ids := makeIDs(7)
	res, err := ByRatio(ids, 0.6, 0.2, 0.2, 1)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	checkDisjointCover(t, ids, res)
	if len(res.Train) != 5 || len(res.Dev) != 1 || len(res.Test) != 1 {
		t.Fatalf("sizes = %d/%d/%d, want 5/1/1", len(res.Train), len(res.Dev), len(res.Test))
	}
}

func TestByRatio_DeterministicPerSeed(t *testing.T) {
	ids := makeIDs(50)
	a, err := ByRatio(ids, 0.8, 0.1, 0.1, 42)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	b, err := ByRatio(ids, 0.8, 0.1, 0.1, 42)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	if !equalIDs(a.Dev, b.Dev) || !equalIDs(a.Test, b.Test) || !equalIDs(a.Train, b.Train) {
		t.Fatalf("same seed produced different partitions")
	}

	c, err := ByRatio(ids, 0.8, 0.1, 0.1, 43)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	if equalIDs(a.Dev, c.Dev) && equalIDs(a.Test, c.Test) {
		t.Fatalf("different seeds produced identical dev and test partitions")
	}
}

func TestByRatio_InputOrderIrrelevant(t *testing.T) {
	ids := makeIDs(20)
	reversed := append([]string(nil), ids...)
	sort.Sort(sort.Reverse(sort.StringSlice(reversed)))

	a, err := ByRatio(ids, 0.6, 0.2, 0.2, 7)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	b, err := ByRatio(reversed, 0.6, 0.2, 0.2, 7)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	if !equalIDs(a.Train, b.Train) || !equalIDs(a.Dev, b.Dev) || !equalIDs(a.Test, b.Test) {
		t.Fatalf("input order changed the partition assignment")
	}
}

func TestByRatio_InvalidRatios(t *testing.T) {
	if _, err := ByRatio(makeIDs(4), 0.5, 0.2, 0.2, 1); err == nil {
		t.Fatal("ratios summing to 0.9 accepted")
	}
	if _, err := ByRatio(makeIDs(4), 1.2, -0.1, -0.1, 1); err == nil {
		t.Fatal("negative ratio accepted")
	}
}

func TestByRatio_SortedOutput(t *testing.T) {
	res, err := ByRatio(makeIDs(30), 0.6, 0.2, 0.2, 3)
	if err != nil {
		t.Fatalf("ByRatio: %v", err)
	}
	for name, part := range map[string][]string{"train": res.Train, "dev": res.Dev, "test": res.Test} {
		if !sort.StringsAreSorted(part) {
			t.Fatalf("%s partition not sorted", name)
		}
	}
}

func TestByLists(t *testing.T) {
	ids := makeIDs(6)
	res, err := ByLists(ids, []string{ids[1]}, []string{ids[4], "2099/01/01/9999999"})
	if err != nil {
		t.Fatalf("ByLists: %v", err)
	}
	checkDisjointCover(t, ids, res)
	if !equalIDs(res.Dev, []string{ids[1]}) {
		t.Fatalf("Dev = %v", res.Dev)
	}
	if !equalIDs(res.Test, []string{ids[4]}) {
		t.Fatalf("Test = %v, listed ids absent from the input must be ignored", res.Test)
	}
	if len(res.Train) != 4 {
		t.Fatalf("Train size = %d, want 4", len(res.Train))
	}
}

func TestByLists_Overlap(t *testing.T) {
	ids := makeIDs(3)
	if _, err := ByLists(ids, []string{ids[0]}, []string{ids[0]}); err == nil {
		t.Fatal("overlapping dev and test lists accepted")
	}
}

func TestByBoundaries(t *testing.T) {
	ids := []string{
		"2003/05/01/0000001",
		"2004/12/31/0000002",
		"2005/01/01/0000003",
		"2005/06/15/0000004",
		"2006/01/01/0000005",
		"2007/03/03/0000006",
	}
	res, err := ByBoundaries(ids, "2005/", "2006/")
	if err != nil {
		t.Fatalf("ByBoundaries: %v", err)
	}
	checkDisjointCover(t, ids, res)
	if !equalIDs(res.Train, ids[:2]) {
		t.Fatalf("Train = %v", res.Train)
	}
	if !equalIDs(res.Dev, ids[2:4]) {
		t.Fatalf("Dev = %v", res.Dev)
	}
	if !equalIDs(res.Test, ids[4:]) {
		t.Fatalf("Test = %v", res.Test)
	}
}

func TestByBoundaries_MissingBoundary(t *testing.T) {
	if _, err := ByBoundaries(makeIDs(2), "", "2006/"); err == nil {
		t.Fatal("empty boundary accepted")
	}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
