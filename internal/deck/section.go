package deck

// DefaultSectionCount is the number of interleaved sections a deck is split into.
const DefaultSectionCount = 50

// Section keeps the items whose raw index falls into the given 1-based
// section: index % count == section-1. Section 0 selects the whole deck.
// Sections outside [0, count] select nothing.
func Section(items []Item, section, count int) []Item {
	if count <= 0 {
		count = DefaultSectionCount
	}
	if section == 0 {
		return items
	}
	if section < 0 || section > count {
		return []Item{}
	}
	out := make([]Item, 0, len(items)/count+1)
	for i, it := range items {
		if i%count == section-1 {
			out = append(out, it)
		}
	}
	return out
}

// Sections returns how many non-empty sections a deck of n items has.
func Sections(n, count int) int {
	if count <= 0 {
		count = DefaultSectionCount
	}
	if n < count {
		return n
	}
	return count
}
