package context

// Default token budget values
const (
	DefaultMaxTokens = 4096
	// DefaultRetrievalRatio is the share of the flexible budget reserved for grounding.
	DefaultRetrievalRatio = 0.45
	// MessageOverhead approximates the per-message role and separator tokens.
	MessageOverhead = 4
)

// TokenBudget splits the tokens left after the fixed parts of the prompt
// (system instructions and the latest user message).
type TokenBudget struct {
	Available int
	History   int
	Grounding int
}

// BudgetAllocator allocates token budgets.
type BudgetAllocator struct {
	retrievalRatio float64
}

// NewBudgetAllocator creates a new budget allocator with defaults.
func NewBudgetAllocator() *BudgetAllocator {
	return &BudgetAllocator{retrievalRatio: DefaultRetrievalRatio}
}

// Allocate splits available tokens between history and grounding. Without
// retrieval everything goes to history.
func (a *BudgetAllocator) Allocate(available int, hasRetrieval bool) *TokenBudget {
	if available < 0 {
		available = 0
	}
	budget := &TokenBudget{Available: available}
	if hasRetrieval {
		budget.Grounding = int(float64(available) * a.retrievalRatio)
	}
	budget.History = available - budget.Grounding
	return budget
}

// AllocateBudget is a convenience function.
func AllocateBudget(available int, hasRetrieval bool) *TokenBudget {
	return NewBudgetAllocator().Allocate(available, hasRetrieval)
}
