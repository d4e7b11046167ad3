package scorer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeminiClientGenerate(t *testing.T) {
	var gotPath string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": `{"ai_score": 80, "briefing": "ok"}`}}}},
			},
		})
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "gemini-1.5-flash", "test-key")

	text, err := client.Generate(context.Background(), "평가해 주세요")
	assert.NoError(t, err)
	assert.Equal(t, `{"ai_score": 80, "briefing": "ok"}`, text)

	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Contains(t, string(gotBody), "평가해 주세요")
}

func TestGeminiClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "gemini-1.5-flash", "test-key")

	_, err := client.Generate(context.Background(), "prompt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiClientEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "gemini-1.5-flash", "test-key")

	_, err := client.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGeminiClientMisconfigured(t *testing.T) {
	client := NewGeminiClient("", "gemini-1.5-flash", "")

	_, err := client.Generate(context.Background(), "prompt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "misconfigured")
}
