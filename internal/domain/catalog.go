package domain

// Catalog maps a category name to its ordered questions.
type Catalog map[string][]Question

// Normalize treats a missing state as not_used.
func (c Catalog) Normalize() {
	for category, questions := range c {
		for i := range questions {
			if questions[i].State == "" {
				questions[i].State = StateNotUsed
			}
		}
		c[category] = questions
	}
}

// Find returns the index of the question with the given id in category, or -1.
func (c Catalog) Find(category string, id int) int {
	for i, q := range c[category] {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// FirstWithState returns the index of the first question in state, or -1.
func (c Catalog) FirstWithState(category string, state State) int {
	for i, q := range c[category] {
		if q.State == state {
			return i
		}
	}
	return -1
}

// Counts tallies questions by state for every category.
func (c Catalog) Counts() map[string]StateCounts {
	out := make(map[string]StateCounts, len(c))
	for category, questions := range c {
		var counts StateCounts
		for _, q := range questions {
			switch q.State {
			case StateInUse:
				counts.InUse++
			case StateUsed:
				counts.Used++
			default:
				counts.NotUsed++
			}
		}
		out[category] = counts
	}
	return out
}
