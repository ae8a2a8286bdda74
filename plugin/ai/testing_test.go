package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newFakeOpenAIServer serves the two OpenAI-compatible endpoints used by this package.
func newFakeOpenAIServer(t *testing.T, reply string, status int) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	requests := &[]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["_path"] = r.URL.Path
		body["_auth"] = r.Header.Get("Authorization")
		*requests = append(*requests, body)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"backend down","type":"server_error"}}`))
			return
		}
		switch r.URL.Path {
		case "/v1/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
			})
		case "/v1/embeddings":
			inputs, _ := body["input"].([]any)
			data := []map[string]any{}
			// Reverse order to check index handling.
			for i := len(inputs) - 1; i >= 0; i-- {
				data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": []float32{float32(i), 0.5}})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}
