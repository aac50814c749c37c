package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	return log
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatCompletionsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "# Lección"}}]}`))
	}))
	defer server.Close()

	client := New(newTestLogger(t), Config{APIKey: "test-key", BaseURL: server.URL})

	out, err := client.Generate(context.Background(), "genera una lección")
	require.NoError(t, err)
	assert.Equal(t, "# Lección", out)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "genera una lección", gotBody.Messages[0].Content)
	assert.InDelta(t, 0.7, gotBody.Temperature, 0.001)
}

func TestGenerate_MissingKeyFailsBeforeNetwork(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := New(newTestLogger(t), Config{APIKey: "", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), "hola")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 503, apiErr.Status)
	assert.Equal(t, "proveedor_no_configurado", apiErr.Code)
	assert.Equal(t, 0, requests)
}

func TestGenerate_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	client := New(newTestLogger(t), Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), "hola")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 502, apiErr.Status)
	assert.Equal(t, "error_proveedor_ia", apiErr.Code)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := New(newTestLogger(t), Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), "hola")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 502, apiErr.Status)
}
