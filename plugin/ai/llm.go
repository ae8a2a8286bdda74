package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ErrEmptyResponse is returned when the backend answers without any choice.
var ErrEmptyResponse = errors.New("empty response")

type llmService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewLLMService creates a new LLMService.
// Gemini and Ollama both expose an OpenAI-compatible chat completions API.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	var clientConfig openai.ClientConfig

	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, errors.New("gemini API key is required")
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	case "ollama":
		// Ollama does not authenticate.
		clientConfig = openai.DefaultConfig("")
		clientConfig.BaseURL = OllamaOpenAIBaseURL(cfg.BaseURL)
		if clientConfig.BaseURL == "" {
			return nil, errors.New("ollama base URL is required")
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return &llmService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

// Helper for creating system prompts
func SystemPrompt(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Helper for creating assistant messages
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
