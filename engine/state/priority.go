package state

import (
	"fmt"
	"strings"
)

// Priority represents the thread priority level.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assumed for threads with no explicit priority.
const DefaultPriority = PriorityMedium

// PriorityFromString parses a priority string.
func PriorityFromString(value string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "urgent":
		return PriorityUrgent, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority '%s'. Must be one of: urgent, high, medium, low", value)
	}
}

// Rank returns the sort rank of a priority. Urgent sorts first.
// Values outside the enumeration rank as medium, matching the
// default applied to threads with no explicit priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return DefaultPriority.Rank()
	}
}

// PriorityLevels returns all valid priority levels in rank order.
func PriorityLevels() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

// NewPriorityHistogram returns a zeroed histogram over the four levels.
func NewPriorityHistogram() map[Priority]int {
	return map[Priority]int{
		PriorityUrgent: 0,
		PriorityHigh:   0,
		PriorityMedium: 0,
		PriorityLow:    0,
	}
}

// CountPriority increments the histogram bucket for a raw priority string.
// Strings outside the enumeration count as medium; analysis replies may
// carry arbitrary priority labels that were stored without validation.
func CountPriority(histogram map[Priority]int, raw string) {
	p, err := PriorityFromString(raw)
	if err != nil {
		p = DefaultPriority
	}
	histogram[p]++
}
