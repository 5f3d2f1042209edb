package deck

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultBlockSize is the number of items repeated together as a unit.
const DefaultBlockSize = 20

// Repeat shuffles items and emits each consecutive block twice, so every item
// shows up exactly twice and both occurrences sit within 2*blockSize-1
// positions of each other. The input slice is not modified.
func Repeat(items []Item, blockSize int, rnd *rand.Rand) []Card {
	if len(items) == 0 {
		return []Card{}
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := make([]Item, len(items))
	copy(shuffled, items)
	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	seq := make([]Card, 0, 2*len(shuffled))
	for start := 0; start < len(shuffled); start += blockSize {
		end := start + blockSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		for rep := 0; rep < 2; rep++ {
			for _, it := range shuffled[start:end] {
				seq = append(seq, Card{Item: it, Rep: rep})
			}
		}
	}
	return seq
}

// Repeater caches the presentation sequence of the last deck it was given and
// only reshuffles when a different deck is passed in.
type Repeater struct {
	BlockSize int

	mu   sync.Mutex
	rnd  *rand.Rand
	deck *Deck
	seq  []Card
}

// NewRepeater creates a repeater. A nil rnd seeds from the clock.
func NewRepeater(blockSize int, rnd *rand.Rand) *Repeater {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Repeater{BlockSize: blockSize, rnd: rnd}
}

// Sequence returns the presentation sequence for d, reusing the cached one
// when d is the deck seen on the previous call.
func (r *Repeater) Sequence(d *Deck) []Card {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d == nil {
		r.deck, r.seq = nil, []Card{}
		return r.seq
	}
	if d == r.deck && r.seq != nil {
		return r.seq
	}
	r.deck = d
	r.seq = Repeat(d.Items, r.BlockSize, r.rnd)
	return r.seq
}

// Changed reports whether d differs from the deck the cached sequence was
// built from.
func (r *Repeater) Changed(d *Deck) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return d != r.deck
}
