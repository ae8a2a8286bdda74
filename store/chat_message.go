package store

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one stored chat turn. Rows are never updated or deleted.
type ChatMessage struct {
	ID        int32
	UID       string
	UserID    int32
	SessionID string
	Role      ChatRole
	Content   string
	ModelUsed string
	CreatedTs int64
}

type FindChatMessage struct {
	UserID    *int32
	SessionID *string
	// Limit keeps only the most recent messages. Results are still oldest first.
	Limit *int
}

// ChatSession is derived by grouping chat messages on session id.
type ChatSession struct {
	SessionID    string
	StartedTs    int64
	LastActiveTs int64
	MessageCount int32
}

type FindChatSession struct {
	UserID int32
}
