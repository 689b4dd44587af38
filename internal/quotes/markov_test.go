package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGeneratorGenerate(t *testing.T) {
	var received generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(generateResponse{Quote: "synthetic wisdom"})
	}))
	defer server.Close()

	generator := NewHTTPGenerator(server.URL, time.Second)

	quote, err := generator.Generate(context.Background(), -100123, "alice", []string{"hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, "synthetic wisdom", quote)

	assert.Equal(t, int64(-100123), received.ChatID)
	assert.Equal(t, "alice", received.Author)
	assert.Equal(t, []string{"hello", "world"}, received.Seed)
}

func TestHTTPGeneratorErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	generator := NewHTTPGenerator(server.URL, time.Second)

	_, err := generator.Generate(context.Background(), 1, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPGeneratorEmptyQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer server.Close()

	generator := NewHTTPGenerator(server.URL, time.Second)

	_, err := generator.Generate(context.Background(), 1, "", nil)
	require.Error(t, err)
}
