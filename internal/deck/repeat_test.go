package deck

import (
	"math/rand"
	"strconv"
	"testing"
)

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: strconv.Itoa(i + 1), Front: "front" + strconv.Itoa(i+1)}
	}
	return items
}

func TestRepeatSmallDeck(t *testing.T) {
	items := makeItems(3)
	seq := Repeat(items, DefaultBlockSize, rand.New(rand.NewSource(7)))

	if len(seq) != 6 {
		t.Fatalf("expected 6 cards, got %d", len(seq))
	}
	counts := map[string]int{}
	for _, c := range seq {
		counts[c.ID]++
	}
	for _, id := range []string{"1", "2", "3"} {
		if counts[id] != 2 {
			t.Errorf("id %s appears %d times, want 2", id, counts[id])
		}
	}
	// one block: second half repeats the first half in the same order
	for i := 0; i < 3; i++ {
		if seq[i].ID != seq[i+3].ID {
			t.Errorf("position %d: %s vs %s", i, seq[i].ID, seq[i+3].ID)
		}
		if seq[i].Rep != 0 || seq[i+3].Rep != 1 {
			t.Errorf("unexpected rep tags at %d: %d/%d", i, seq[i].Rep, seq[i+3].Rep)
		}
	}
}

func TestRepeatInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 2, 19, 20, 21, 39, 40, 41, 137} {
		for _, block := range []int{1, 5, 20, 500} {
			seq := Repeat(makeItems(n), block, rnd)
			if len(seq) != 2*n {
				t.Fatalf("n=%d block=%d: len %d, want %d", n, block, len(seq), 2*n)
			}
			first := map[string]int{}
			keys := map[string]bool{}
			for i, c := range seq {
				if keys[c.Key()] {
					t.Fatalf("n=%d block=%d: duplicate key %s", n, block, c.Key())
				}
				keys[c.Key()] = true
				if j, ok := first[c.ID]; ok {
					if d := i - j; d > 2*block-1 {
						t.Fatalf("n=%d block=%d: occurrences of %s are %d apart", n, block, c.ID, d)
					}
					if c.Rep != 1 {
						t.Fatalf("second occurrence of %s has rep %d", c.ID, c.Rep)
					}
					continue
				}
				first[c.ID] = i
			}
			if len(first) != n {
				t.Fatalf("n=%d block=%d: %d distinct ids", n, block, len(first))
			}
		}
	}
}

func TestRepeatEmptyAndInputUntouched(t *testing.T) {
	if seq := Repeat(nil, 20, nil); len(seq) != 0 {
		t.Fatalf("expected empty sequence, got %d", len(seq))
	}
	items := makeItems(30)
	Repeat(items, 20, rand.New(rand.NewSource(1)))
	for i, it := range items {
		if it.ID != strconv.Itoa(i+1) {
			t.Fatalf("input reordered at %d: %s", i, it.ID)
		}
	}
}

func TestRepeaterReshufflesOnlyOnNewDeck(t *testing.T) {
	r := NewRepeater(20, rand.New(rand.NewSource(3)))
	d := &Deck{ID: "a", Items: makeItems(25)}

	s1 := r.Sequence(d)
	s2 := r.Sequence(d)
	if &s1[0] != &s2[0] {
		t.Fatalf("sequence rebuilt for the same deck")
	}
	if r.Changed(d) {
		t.Fatalf("Changed reported true for cached deck")
	}

	d2 := &Deck{ID: "a", Items: makeItems(25)}
	if !r.Changed(d2) {
		t.Fatalf("Changed reported false for a new deck")
	}
	s3 := r.Sequence(d2)
	if &s3[0] == &s1[0] {
		t.Fatalf("sequence not rebuilt for a new deck")
	}
	if len(r.Sequence(nil)) != 0 {
		t.Fatalf("nil deck should produce empty sequence")
	}
}
