package domain

import (
	"sort"
	"time"
)

// State is the lifecycle position of a question.
type State string

const (
	StateNotUsed State = "not_used"
	StateInUse   State = "in_use"
	StateUsed    State = "used"
)

// Question models an MCQ question keyed by choice letter.
type Question struct {
	ID          int               `json:"id"`
	Text        string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	State       State             `json:"state"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
}

// Option is a single choice in presentation order.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// SortedOptions returns the options ordered by key.
func (q Question) SortedOptions() []Option {
	out := make([]Option, 0, len(q.Options))
	for key, text := range q.Options {
		out = append(out, Option{Key: key, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// HasOption reports whether key is one of the question's choices.
func (q Question) HasOption(key string) bool {
	_, ok := q.Options[key]
	return ok
}

// Clone returns a deep copy so callers never alias catalog storage.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			c.Options[k] = v
		}
	}
	if q.DeliveredAt != nil {
		at := *q.DeliveredAt
		c.DeliveredAt = &at
	}
	return c
}

// StateCounts summarizes a category by lifecycle state.
type StateCounts struct {
	NotUsed int `json:"notUsed"`
	InUse   int `json:"inUse"`
	Used    int `json:"used"`
}

// Delivery is what a requester receives for a quiz request.
type Delivery struct {
	Handle   string
	Category string
	Question Question
}

// Outcome summarizes a submitted answer. CorrectKey is always set.
type Outcome struct {
	Correct    bool   `json:"correct"`
	CorrectKey string `json:"correctKey"`
	ChosenKey  string `json:"chosenKey"`
}
