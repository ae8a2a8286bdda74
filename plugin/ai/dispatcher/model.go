package dispatcher

import "strings"

// BackendKind is the closed set of model server types.
type BackendKind int

const (
	// BackendRemote is the hosted Gemini API. Requires an API key.
	BackendRemote BackendKind = iota + 1
	// BackendLocal is a local Ollama server. Unauthenticated.
	BackendLocal
)

func (k BackendKind) String() string {
	switch k {
	case BackendRemote:
		return "remote"
	case BackendLocal:
		return "local"
	default:
		return "unknown"
	}
}

// provider is the ai.LLMConfig provider name for the backend.
func (k BackendKind) provider() string {
	switch k {
	case BackendRemote:
		return "gemini"
	case BackendLocal:
		return "ollama"
	default:
		return ""
	}
}

// ModelID identifies a recognized model. Obtain one through ParseModelID.
type ModelID string

const (
	ModelGemini25Flash  ModelID = "gemini-2.5-flash"
	ModelGemini20Flash  ModelID = "gemini-2.0-flash"
	ModelLlama32_3B     ModelID = "llama3.2:3b"
	ModelQwen25_7B      ModelID = "qwen2.5:7b"
	ModelQwen25_7BQ5    ModelID = "qwen2.5:7b-instruct-q5_K_M"
	ModelLlama31_8BQ4KM ModelID = "llama3.1:8b-q4_K_M"
)

// ModelInfo describes a recognized model.
type ModelInfo struct {
	ID          ModelID     `json:"id"`
	DisplayName string      `json:"name"`
	Backend     BackendKind `json:"-"`
}

var knownModels = []ModelInfo{
	{ID: ModelLlama32_3B, DisplayName: "Llama-3.2-3B-Instruct", Backend: BackendLocal},
	{ID: ModelQwen25_7B, DisplayName: "Qwen2.5-7B-Instruct", Backend: BackendLocal},
	{ID: ModelQwen25_7BQ5, DisplayName: "Qwen2.5-7B-Instruct-Q5", Backend: BackendLocal},
	{ID: ModelLlama31_8BQ4KM, DisplayName: "Llama-3.1-8B-Instruct-Q4", Backend: BackendLocal},
	{ID: ModelGemini25Flash, DisplayName: "Gemini 2.5 Flash", Backend: BackendRemote},
	{ID: ModelGemini20Flash, DisplayName: "Gemini 2.0 Flash", Backend: BackendRemote},
}

// Models returns every recognized model.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(knownModels))
	copy(out, knownModels)
	return out
}

func lookup(id ModelID) (ModelInfo, bool) {
	for _, m := range knownModels {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ParseModelID validates a caller-supplied identifier. Surrounding space is
// ignored; an Ollama ":latest" tag resolves to the untagged id.
func ParseModelID(raw string) (ModelID, error) {
	s := strings.TrimSpace(raw)
	if _, ok := lookup(ModelID(s)); ok {
		return ModelID(s), nil
	}
	if trimmed := strings.TrimSuffix(s, ":latest"); trimmed != s {
		if _, ok := lookup(ModelID(trimmed)); ok {
			return ModelID(trimmed), nil
		}
	}
	return "", &UnknownModelError{ModelID: raw}
}

// Backend returns the backend serving id, or 0 for an unrecognized id.
func (id ModelID) Backend() BackendKind {
	m, _ := lookup(id)
	return m.Backend
}
