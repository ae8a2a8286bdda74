package context

import (
	"sort"
	"unicode/utf8"
)

// ContextPriority orders the optional prompt parts when filling the budget.
type ContextPriority int

const (
	PrioritySystem      ContextPriority = 100 // System prompt - always kept
	PriorityUserQuery   ContextPriority = 90  // Latest user message - always kept
	PriorityRecentTurns ContextPriority = 80  // Most recent RecentTurns history messages
	PriorityRetrieval   ContextPriority = 70  // Grounding records
	PriorityOlderTurns  ContextPriority = 40  // Older history messages
)

// RecentTurns is how many of the newest history messages outrank grounding.
const RecentTurns = 4

type segmentKind int

const (
	segmentHistory segmentKind = iota
	segmentRecord
)

// segment is one droppable unit: a history message or a grounding record.
type segment struct {
	kind     segmentKind
	index    int
	priority ContextPriority
	tokens   int
}

// rankSegments orders segments by priority, keeping input order within a level.
func rankSegments(segments []segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].priority > segments[j].priority
	})
}

// EstimateTokens approximates the token count of content: four ASCII
// characters per token, one token per other rune.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	ascii, other := 0, 0
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRuneInString(content[i:])
		if r < utf8.RuneSelf {
			ascii++
		} else {
			other++
		}
		i += size
	}
	return (ascii+3)/4 + other
}
