// Package context builds the model prompt for a chat turn from the user
// profile, conversation history and retrieved food facts.
package context

import (
	"errors"
	"strings"

	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/rag"
)

// GroundingHeader opens the retrieved-facts system message.
const GroundingHeader = "Reference food data (per 100 g, from the food database). " +
	"Use these foods as a reference; other common foods are allowed when needed.\n\n"

// ErrEmptyMessage is returned when there is no user message to answer.
var ErrEmptyMessage = errors.New("message is required")

// ComposeRequest holds the inputs of one prompt.
type ComposeRequest struct {
	// System defaults to SystemPrompt().
	System  string
	Profile *Profile
	Records []rag.Record
	// History is the prior conversation, oldest first.
	History []ai.Message
	Message string
}

// Prompt is the composed model input.
type Prompt struct {
	Messages []ai.Message
	// Tokens is the estimated size of Messages.
	Tokens         int
	DroppedTurns   int
	DroppedRecords int
}

// Composer assembles prompts under a token budget.
type Composer struct {
	maxTokens int
	allocator *BudgetAllocator
}

// NewComposer creates a Composer. Non-positive maxTokens means DefaultMaxTokens.
func NewComposer(maxTokens int) *Composer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Composer{maxTokens: maxTokens, allocator: NewBudgetAllocator()}
}

// Compose orders the prompt as: system instructions with the profile block,
// history, grounding block, latest user message. System instructions and the
// latest message are always kept. The remaining budget goes to the newest
// history messages first, then grounding records in relevance order, then
// older history. History is only ever cut from the oldest end.
func (c *Composer) Compose(req *ComposeRequest) (*Prompt, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	system := req.System
	if system == "" {
		system = SystemPrompt()
	}
	system = strings.TrimRight(system, "\n") + "\n\n" + req.Profile.Describe()
	latest := Directives(message) + message

	fixed := messageTokens(system) + messageTokens(latest)
	budget := c.allocator.Allocate(c.maxTokens-fixed, len(req.Records) > 0)

	historyCost, recordCost := 0, 0
	segments := make([]segment, 0, len(req.History)+len(req.Records))
	for i := len(req.History) - 1; i >= 0; i-- {
		priority := PriorityOlderTurns
		if len(req.History)-i <= RecentTurns {
			priority = PriorityRecentTurns
		}
		cost := messageTokens(req.History[i].Content)
		historyCost += cost
		segments = append(segments, segment{kind: segmentHistory, index: i, priority: priority, tokens: cost})
	}
	recordTexts := make([]string, len(req.Records))
	for i, r := range req.Records {
		recordTexts[i] = r.Format(i + 1)
		cost := EstimateTokens(recordTexts[i])
		recordCost += cost
		segments = append(segments, segment{kind: segmentRecord, index: i, priority: PriorityRetrieval, tokens: cost})
	}
	rankSegments(segments)

	// Grounding may use history budget that the history does not need.
	groundingCap := budget.Grounding
	if historyCost < budget.History {
		groundingCap += budget.History - historyCost
	}

	remaining := budget.Available
	groundingUsed := 0
	oldestKept := len(req.History)
	keptRecords := 0
	historyBlocked, recordsBlocked := false, false
	for _, seg := range segments {
		switch seg.kind {
		case segmentHistory:
			if historyBlocked {
				continue
			}
			if seg.tokens > remaining {
				historyBlocked = true
				continue
			}
			remaining -= seg.tokens
			oldestKept = seg.index
		case segmentRecord:
			if recordsBlocked {
				continue
			}
			cost := seg.tokens
			if keptRecords == 0 {
				cost += messageTokens(GroundingHeader)
			}
			if cost > remaining || groundingUsed+cost > groundingCap {
				recordsBlocked = true
				continue
			}
			remaining -= cost
			groundingUsed += cost
			keptRecords++
		}
	}

	messages := make([]ai.Message, 0, len(req.History)-oldestKept+3)
	messages = append(messages, ai.SystemPrompt(system))
	for _, m := range req.History[oldestKept:] {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	if keptRecords > 0 {
		var sb strings.Builder
		sb.WriteString(GroundingHeader)
		for _, text := range recordTexts[:keptRecords] {
			sb.WriteString(text)
		}
		messages = append(messages, ai.SystemPrompt(sb.String()))
	}
	messages = append(messages, ai.UserMessage(latest))

	return &Prompt{
		Messages:       messages,
		Tokens:         fixed + budget.Available - remaining,
		DroppedTurns:   oldestKept,
		DroppedRecords: len(req.Records) - keptRecords,
	}, nil
}

func messageTokens(content string) int {
	return EstimateTokens(content) + MessageOverhead
}
