package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votematch/models"
)

func newChatServer(t *testing.T, status int, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		if gotPrompt != nil && len(body.Messages) > 0 {
			*gotPrompt = body.Messages[len(body.Messages)-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAITransportSend(t *testing.T) {
	var prompt string
	srv := newChatServer(t, http.StatusOK, "4,3,5", &prompt)

	tr := NewOpenAITransport("test-key", srv.URL, "test-model", srv.Client())
	reply, err := tr.Send(context.Background(), "evalúa esto")
	require.NoError(t, err)
	assert.Equal(t, "4,3,5", reply)
	assert.Equal(t, "evalúa esto", prompt)
}

func TestOpenAITransportServerError(t *testing.T) {
	srv := newChatServer(t, http.StatusInternalServerError, "", nil)

	tr := NewOpenAITransport("test-key", srv.URL, "test-model", srv.Client())
	_, err := tr.Send(context.Background(), "evalúa esto")
	assert.Error(t, err)
}

func TestScorerOverOpenAITransport(t *testing.T) {
	cat := salud(t)

	t.Run("scores", func(t *testing.T) {
		srv := newChatServer(t, http.StatusOK, " 5,4,3 ", nil)
		s := NewScorer(NewOpenAITransport("test-key", srv.URL, "test-model", srv.Client()))

		got, err := s.Score(context.Background(), cat, "Clínicas", "Atención médica rural.")
		require.NoError(t, err)
		assert.Equal(t, models.Vector{5, 4, 3}, got)
	})

	t.Run("non-success status is unavailable", func(t *testing.T) {
		srv := newChatServer(t, http.StatusServiceUnavailable, "", nil)
		s := NewScorer(NewOpenAITransport("test-key", srv.URL, "test-model", srv.Client()))

		_, err := s.Score(context.Background(), cat, "Clínicas", "Atención médica rural.")
		assert.ErrorIs(t, err, models.ErrOracleUnavailable)
	})

	t.Run("garbage content is malformed", func(t *testing.T) {
		srv := newChatServer(t, http.StatusOK, "No puedo evaluar esta propuesta.", nil)
		s := NewScorer(NewOpenAITransport("test-key", srv.URL, "test-model", srv.Client()))

		_, err := s.Score(context.Background(), cat, "Clínicas", "Atención médica rural.")
		assert.ErrorIs(t, err, models.ErrMalformedOracleResponse)
	})
}
