package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIProviderParsesChoice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  generated digest  "}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		Endpoint: srv.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})

	text, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "generated digest", text)
}

func TestOpenAIProviderSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIProviderMisconfigured(t *testing.T) {
	t.Parallel()

	p := NewOpenAIProvider(OpenAIConfig{})
	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
}

func TestGeminiProviderParsesCandidate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]string{{"text": "gemini digest"}},
				}},
			},
		})
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL, APIKey: "test-key"})

	text, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "gemini digest", text)
}

func TestGeminiProviderEmptyCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{Endpoint: srv.URL, APIKey: "k"})
	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
}
