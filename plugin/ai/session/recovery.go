package session

import (
	"context"

	"github.com/hrygo/nutribot/plugin/ai"
)

// MaxHistoryTurns bounds how many stored turns are replayed into a prompt.
const MaxHistoryTurns = 20

// RecoverHistory loads the most recent turns of a session as prompt
// messages, oldest first.
func RecoverHistory(ctx context.Context, s Store, owner int32, sessionID string) ([]ai.Message, error) {
	turns, err := s.List(ctx, owner, sessionID, MaxHistoryTurns)
	if err != nil {
		return nil, err
	}
	return ToMessages(turns), nil
}

// ToMessages converts turns to prompt messages.
func ToMessages(turns []*Turn) []ai.Message {
	messages := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		role := ai.RoleUser
		if t.Role == RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: t.Content})
	}
	return messages
}
