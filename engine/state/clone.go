package state

// Clone returns a deep copy of the state.
//
// The facade clones before each pipeline run so stages mutate an owned
// working copy; the result is committed back only after the run completes.
func (s *EmailState) Clone() *EmailState {
	clone := &EmailState{
		Messages:          make([]Message, len(s.Messages)),
		Context:           deepCopyAnyMap(s.Context),
		CurrentTask:       s.CurrentTask,
		Memory:            deepCopyAnyMap(s.Memory),
		Threads:           make(map[string]*Thread, len(s.Threads)),
		Contacts:          make(map[string]*Contact, len(s.Contacts)),
		Drafts:            make(map[string]*Draft, len(s.Drafts)),
		Tags:              make(map[string][]string, len(s.Tags)),
		FollowUps:         make(map[string]*FollowUpRecord, len(s.FollowUps)),
		Priorities:        copyStringMap(s.Priorities),
		ResponseTemplates: copyStringMap(s.ResponseTemplates),
		Stats:             make(map[string]*ThreadStats, len(s.Stats)),
	}
	copy(clone.Messages, s.Messages)

	for id, thread := range s.Threads {
		clone.Threads[id] = cloneThread(thread)
	}
	for id, contact := range s.Contacts {
		clone.Contacts[id] = cloneContact(contact)
	}
	for id, draft := range s.Drafts {
		clone.Drafts[id] = draft.Clone()
	}
	for id, labels := range s.Tags {
		clone.Tags[id] = copyStringSlice(labels)
	}
	for id, record := range s.FollowUps {
		clone.FollowUps[id] = record.Clone()
	}
	for id, stats := range s.Stats {
		clone.Stats[id] = stats.Clone()
	}
	return clone
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Context = deepCopyAnyMap(d.Context)
	clone.Analysis = deepCopyAnyMap(d.Analysis)
	return &clone
}

// Clone returns a deep copy of the follow-up record.
func (f *FollowUpRecord) Clone() *FollowUpRecord {
	if f == nil {
		return nil
	}
	clone := *f
	clone.Items = make([]FollowUpItem, len(f.Items))
	for i, item := range f.Items {
		clone.Items[i] = item
		if item.CompletedAt != nil {
			completedAt := *item.CompletedAt
			clone.Items[i].CompletedAt = &completedAt
		}
	}
	if f.CompletedAt != nil {
		completedAt := *f.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}

// Clone returns a deep copy of the stats entry.
func (t *ThreadStats) Clone() *ThreadStats {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Topics = t.Topics.Clone()
	clone.SentimentHistory = make([]SentimentEntry, len(t.SentimentHistory))
	copy(clone.SentimentHistory, t.SentimentHistory)
	clone.PriorityHistory = make([]PriorityEntry, len(t.PriorityHistory))
	copy(clone.PriorityHistory, t.PriorityHistory)
	clone.ActionItems = copyStringSlice(t.ActionItems)
	clone.Deadlines = copyStringSlice(t.Deadlines)
	return &clone
}

func cloneThread(t *Thread) *Thread {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Messages = make([]ThreadMessage, len(t.Messages))
	copy(clone.Messages, t.Messages)
	clone.Participants = copyStringSlice(t.Participants)
	return &clone
}

func cloneContact(c *Contact) *Contact {
	if c == nil {
		return nil
	}
	clone := *c
	clone.PreviousInteractions = copyStringSlice(c.PreviousInteractions)
	return &clone
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func deepCopyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyAnyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []string:
		return copyStringSlice(val)
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = deepCopyAnyMap(item)
		}
		return out
	default:
		// Scalars and immutable values copy by assignment.
		return v
	}
}
