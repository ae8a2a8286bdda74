package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/timeout"
)

// Backend settings for one BackendKind.
type Backend struct {
	Kind    BackendKind
	Config  ai.ProviderConfig
	Timeout time.Duration
}

// Dispatcher routes prompts to the backend that serves the requested model.
type Dispatcher struct {
	defaultModel ModelID
	backends     map[BackendKind]Backend
	services     map[ModelID]ai.LLMService
	retries      int
	// retryBase is the first backoff interval; it doubles per attempt.
	retryBase time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRetries sets how many extra attempts follow a failed call.
func WithRetries(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.retries = n
		}
	}
}

// WithRetryBase sets the first backoff interval.
func WithRetryBase(base time.Duration) Option {
	return func(d *Dispatcher) {
		d.retryBase = base
	}
}

// WithService replaces the client of one model. Used to plug in fakes.
func WithService(id ModelID, svc ai.LLMService) Option {
	return func(d *Dispatcher) {
		d.services[id] = svc
	}
}

// New builds a dispatcher from the AI config. Models whose backend is not
// configured (no Gemini key, no Ollama URL) stay recognized but fail with
// BackendUnavailableError when dispatched.
func New(cfg *ai.Config, opts ...Option) (*Dispatcher, error) {
	defaultModel, err := ParseModelID(cfg.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("invalid default model: %w", err)
	}

	d := &Dispatcher{
		defaultModel: defaultModel,
		backends: map[BackendKind]Backend{
			BackendRemote: {Kind: BackendRemote, Config: cfg.Gemini, Timeout: orDefault(cfg.Gemini.Timeout, timeout.RemoteModelTimeout)},
			BackendLocal:  {Kind: BackendLocal, Config: cfg.Ollama, Timeout: orDefault(cfg.Ollama.Timeout, timeout.LocalModelTimeout)},
		},
		services:  map[ModelID]ai.LLMService{},
		retries:   cfg.Retries,
		retryBase: time.Second,
	}

	for _, m := range knownModels {
		backend := d.backends[m.Backend]
		svc, err := ai.NewLLMService(&ai.LLMConfig{
			Provider:    m.Backend.provider(),
			Model:       string(m.ID),
			APIKey:      backend.Config.APIKey,
			BaseURL:     backend.Config.BaseURL,
			MaxTokens:   backend.Config.MaxTokens,
			Temperature: backend.Config.Temperature,
		})
		if err != nil {
			slog.Debug("model backend not configured", "model", m.ID, "backend", m.Backend.String(), "error", err)
			continue
		}
		d.services[m.ID] = svc
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// DefaultModel returns the model used when the caller does not name one.
func (d *Dispatcher) DefaultModel() ModelID {
	return d.defaultModel
}

// Resolve maps a caller-supplied id to a recognized model. Empty means the default.
func (d *Dispatcher) Resolve(raw string) (ModelID, error) {
	if strings.TrimSpace(raw) == "" {
		return d.defaultModel, nil
	}
	return ParseModelID(raw)
}

// Dispatch sends prompt to the backend serving modelID and returns the reply text.
// Every failure after model resolution is a *BackendUnavailableError.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt []ai.Message, modelID ModelID) (string, error) {
	info, ok := lookup(modelID)
	if !ok {
		return "", &UnknownModelError{ModelID: string(modelID)}
	}
	backend := d.backends[info.Backend]
	svc, ok := d.services[modelID]
	if !ok {
		return "", &BackendUnavailableError{
			ModelID: modelID,
			Backend: info.Backend,
			Cause:   errors.New("backend is not configured"),
		}
	}

	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * d.retryBase
			slog.Debug("model call failed, retrying",
				"model", modelID,
				"attempt", attempt+1,
				"wait_time", wait,
				"error", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", d.unavailable(modelID, info.Backend, ctx.Err())
			}
		}

		reply, err := d.callOnce(ctx, svc, prompt, backend.Timeout)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", d.unavailable(modelID, info.Backend, lastErr)
}

func (d *Dispatcher) callOnce(ctx context.Context, svc ai.LLMService, prompt []ai.Message, limit time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	reply, err := svc.Chat(callCtx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ai.ErrEmptyResponse
	}
	return reply, nil
}

func (d *Dispatcher) unavailable(modelID ModelID, kind BackendKind, cause error) *BackendUnavailableError {
	e := &BackendUnavailableError{ModelID: modelID, Backend: kind, Cause: cause}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(cause, &apiErr):
		e.StatusCode = apiErr.HTTPStatusCode
	case errors.As(cause, &reqErr):
		e.StatusCode = reqErr.HTTPStatusCode
	}
	return e
}
