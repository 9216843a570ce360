package state

import (
	"encoding/json"
	"sort"
)

// TopicSet is a grow-only set of topic labels. Union never removes
// members, so a thread's observed topics are monotonic across updates.
type TopicSet map[string]struct{}

// NewTopicSet creates a TopicSet from the given topics.
func NewTopicSet(topics ...string) TopicSet {
	t := make(TopicSet, len(topics))
	t.Union(topics)
	return t
}

// Add adds one topic to the set.
func (t TopicSet) Add(topic string) {
	if topic == "" {
		return
	}
	t[topic] = struct{}{}
}

// Union adds all topics to the set.
func (t TopicSet) Union(topics []string) {
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		t[topic] = struct{}{}
	}
}

// Contains reports whether a topic is in the set.
func (t TopicSet) Contains(topic string) bool {
	_, ok := t[topic]
	return ok
}

// Len returns the number of topics in the set.
func (t TopicSet) Len() int {
	return len(t)
}

// Sorted returns the topics as a deterministically ordered slice.
func (t TopicSet) Sorted() []string {
	out := make([]string, 0, len(t))
	for topic := range t {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (t TopicSet) Clone() TopicSet {
	out := make(TopicSet, len(t))
	for topic := range t {
		out[topic] = struct{}{}
	}
	return out
}

// MarshalJSON serializes the set as a sorted array.
func (t TopicSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Sorted())
}

// UnmarshalJSON deserializes the set from an array.
func (t *TopicSet) UnmarshalJSON(data []byte) error {
	var topics []string
	if err := json.Unmarshal(data, &topics); err != nil {
		return err
	}
	*t = NewTopicSet(topics...)
	return nil
}
