// Package state provides the EmailState aggregate threaded through the
// assistant pipeline.
//
// EmailState is the single working set for one assistant: the conversation
// log, accumulated business context, and the per-thread bookkeeping derived
// from analysis replies (stats, follow-ups, priorities, templates).
//
// Ownership model:
//   - The Assistant facade owns the persisted copy between turns.
//   - Each turn runs the pipeline against a deep Clone and commits the
//     result back, so stage mutations never alias the persisted copy.
package state

import (
	"time"

	"github.com/google/uuid"
)

// Memory keys for the most recent stage payloads.
const (
	MemoryKeyAnalysis = "analysis"
	MemoryKeySummary  = "summary"
)

// Message roles in the conversation log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in the conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ThreadMessage is one raw message inside an email thread.
type ThreadMessage struct {
	From      string    `json:"from"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread is a conversation record keyed by thread ID.
type Thread struct {
	Subject         string          `json:"subject"`
	Messages        []ThreadMessage `json:"messages"`
	Participants    []string        `json:"participants,omitempty"`
	LastInteraction time.Time       `json:"last_interaction,omitempty"`
}

// Contact is a known correspondent.
type Contact struct {
	Name                 string   `json:"name"`
	Role                 string   `json:"role,omitempty"`
	PreviousInteractions []string `json:"previous_interactions,omitempty"`
}

// DraftStatusDraft marks drafts produced by the response generator.
// Composer drafts carry no status until they are promoted.
const DraftStatusDraft = "draft"

// Draft is a generated candidate message, not yet sent.
type Draft struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Context   map[string]any `json:"context,omitempty"`
	Analysis  map[string]any `json:"analysis,omitempty"`
	ThreadID  string         `json:"thread_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Status    string         `json:"status,omitempty"`
}

// NewDraftID returns a collision-resistant draft identifier.
func NewDraftID() string {
	return "draft_" + uuid.NewString()
}

// FollowUpStatus represents the follow-up lifecycle.
type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "pending"
	FollowUpCompleted FollowUpStatus = "completed"
)

// FollowUpItem is one actionable item inside a follow-up record.
type FollowUpItem struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Status      FollowUpStatus `json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// FollowUpRecord tracks the follow-ups derived from analysis for one thread.
type FollowUpRecord struct {
	Items       []FollowUpItem `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	Status      FollowUpStatus `json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// SentimentEntry is one observation in a thread's sentiment history.
type SentimentEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Sentiment string    `json:"sentiment"`
}

// PriorityEntry is one observation in a thread's priority history.
// Priority is kept as a raw string: entries sourced from analysis replies
// are stored without validation against the enumeration.
type PriorityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Priority  string    `json:"priority"`
}

// ThreadStats is the derived bookkeeping for one thread.
type ThreadStats struct {
	InteractionCount int              `json:"interaction_count"`
	LastInteraction  time.Time        `json:"last_interaction"`
	Topics           TopicSet         `json:"topics"`
	SentimentHistory []SentimentEntry `json:"sentiment_history"`
	PriorityHistory  []PriorityEntry  `json:"priority_history"`
	ActionItems      []string         `json:"action_items"`
	Deadlines        []string         `json:"deadlines"`
}

// EmailState is the aggregate threaded through every pipeline stage.
type EmailState struct {
	Messages    []Message      `json:"messages"`
	Context     map[string]any `json:"context"`
	CurrentTask string         `json:"current_task"`
	Memory      map[string]any `json:"memory"`

	Threads   map[string]*Thread         `json:"email_threads"`
	Contacts  map[string]*Contact        `json:"contacts"`
	Drafts    map[string]*Draft          `json:"drafts"`
	Tags      map[string][]string        `json:"tags"`
	FollowUps map[string]*FollowUpRecord `json:"follow_ups"`

	// Priorities holds raw priority strings. Explicit updates are validated
	// against the four-level enumeration; values embedded in analysis
	// replies are stored verbatim.
	Priorities map[string]string `json:"priorities"`

	ResponseTemplates map[string]string       `json:"response_templates"`
	Stats             map[string]*ThreadStats `json:"email_stats"`
}

// EmailContext is caller-supplied thread/contact/tag data merged into the
// state at the start of a turn.
type EmailContext struct {
	Threads  map[string]*Thread  `json:"threads,omitempty"`
	Contacts map[string]*Contact `json:"contacts,omitempty"`
	Tags     map[string][]string `json:"tags,omitempty"`
}

// NewEmailState creates an empty state seeded with assistant defaults.
func NewEmailState() *EmailState {
	return &EmailState{
		Messages: make([]Message, 0),
		Context: map[string]any{
			"preferences": map[string]any{},
			"history":     []any{},
			"email_settings": map[string]any{
				"signature":      "",
				"default_tone":   "professional",
				"priority_rules": map[string]any{},
				"follow_up_preferences": map[string]any{
					"default_timeline":   "3 days",
					"urgent_timeline":    "24 hours",
					"reminder_frequency": "daily",
				},
			},
		},
		Memory:            make(map[string]any),
		Threads:           make(map[string]*Thread),
		Contacts:          make(map[string]*Contact),
		Drafts:            make(map[string]*Draft),
		Tags:              make(map[string][]string),
		FollowUps:         make(map[string]*FollowUpRecord),
		Priorities:        make(map[string]string),
		ResponseTemplates: make(map[string]string),
		Stats:             make(map[string]*ThreadStats),
	}
}

// AppendMessage appends one entry to the conversation log.
func (s *EmailState) AppendMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastMessage returns the most recent conversation entry, or nil when the
// log is empty.
func (s *EmailState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// RecentMessages returns up to n of the most recent conversation entries.
func (s *EmailState) RecentMessages(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// MergeEmailContext merges caller-supplied threads, contacts, and tags.
// Entries replace per key; tag labels are deduplicated. Inputs are deep
// copied so later caller mutations cannot alias the state.
func (s *EmailState) MergeEmailContext(ec *EmailContext) {
	if ec == nil {
		return
	}
	for id, thread := range ec.Threads {
		s.Threads[id] = cloneThread(thread)
	}
	for id, contact := range ec.Contacts {
		s.Contacts[id] = cloneContact(contact)
	}
	for id, labels := range ec.Tags {
		s.Tags[id] = dedupeLabels(labels)
	}
}

// MergeContext merges free-form context updates. Keys replace per entry,
// the mapping itself only grows.
func (s *EmailState) MergeContext(updates map[string]any) {
	for key, value := range updates {
		s.Context[key] = deepCopyValue(value)
	}
}

// ContextSnapshot returns a deep copy of the accumulated context, for
// embedding in draft records without aliasing the live mapping.
func (s *EmailState) ContextSnapshot() map[string]any {
	return deepCopyAnyMap(s.Context)
}

// EnsureStats returns the stats entry for a thread, creating a zeroed
// entry stamped at now when absent. Forward references to threads not yet
// present in Threads are legitimate.
func (s *EmailState) EnsureStats(threadID string, now time.Time) *ThreadStats {
	stats, ok := s.Stats[threadID]
	if !ok {
		stats = &ThreadStats{
			LastInteraction:  now,
			Topics:           NewTopicSet(),
			SentimentHistory: make([]SentimentEntry, 0),
			PriorityHistory:  make([]PriorityEntry, 0),
			ActionItems:      make([]string, 0),
			Deadlines:        make([]string, 0),
		}
		s.Stats[threadID] = stats
	}
	return stats
}

// PriorityFor returns the validated priority for a thread, defaulting to
// medium when the thread has none or carries an unvalidated value.
func (s *EmailState) PriorityFor(threadID string) Priority {
	raw, ok := s.Priorities[threadID]
	if !ok {
		return DefaultPriority
	}
	p, err := PriorityFromString(raw)
	if err != nil {
		return DefaultPriority
	}
	return p
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}
