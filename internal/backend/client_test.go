package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/memory-mcp/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, logging.Discard())
}

func TestGetMemories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/user 1/memories", r.URL.Path)
		assert.Equal(t, "what & why?", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"message":"Here you go","topic":"travel","memories":["a","b"],"total_results":2}`))
	})

	res, err := client.GetMemories(context.Background(), "user 1", "what & why?")
	require.NoError(t, err)
	assert.Equal(t, "Here you go", res.Message)
	assert.Equal(t, "travel", res.Topic)
	assert.Equal(t, []string{"a", "b"}, res.Memories)
	require.NotNil(t, res.TotalResults)
	assert.Equal(t, 2, *res.TotalResults)
}

func TestGetMemoriesAPIError(t *testing.T) {
	cases := map[string]struct {
		status  int
		body    string
		detail  string
		message string
	}{
		"json detail":     {status: 503, body: `{"detail":"down"}`, detail: "down", message: "Backend API error: down"},
		"plain text body": {status: 502, body: `bad gateway`, message: "Backend API error: Bad Gateway"},
		"null detail":     {status: 500, body: `{"detail":null}`, message: "Backend API error: Internal Server Error"},
		"empty body":      {status: 404, message: "Backend API error: Not Found"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.GetMemories(context.Background(), "u", "q")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.detail, apiErr.Detail)
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestGetMemoriesDecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	_, err := client.GetMemories(context.Background(), "u", "q")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "decode backend response")
}

func TestStoreMemory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/u1/memories", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"query": "q", "assistant_response": "ctx"}, body)
		_, _ = w.Write([]byte(`{"message":"stored"}`))
	})

	res, err := client.StoreMemory(context.Background(), "u1", StoreMemoryRequest{Query: "q", AssistantResponse: "ctx"})
	require.NoError(t, err)
	assert.Equal(t, "stored", res.Message)
}

func TestStoreMemoryEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	res, err := client.StoreMemory(context.Background(), "u1", StoreMemoryRequest{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, res.Message)
}

func TestBaseURLResolvedPerCall(t *testing.T) {
	hits := map[string]int{}
	var mu sync.Mutex
	newBackend := func(name string) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[name]++
			mu.Unlock()
			_, _ = w.Write([]byte(`{"message":"` + name + `"}`))
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	first, second := newBackend("first"), newBackend("second")

	current := first.URL + "/"
	client := NewResolvingClient(func() string { return current }, 5*time.Second, logging.Discard())

	res, err := client.StoreMemory(context.Background(), "u1", StoreMemoryRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Message)

	current = second.URL
	res, err = client.StoreMemory(context.Background(), "u1", StoreMemoryRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Message)
	assert.Equal(t, second.URL, client.BaseURL())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"first": 1, "second": 1}, hits)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, logging.Discard())
	_, err := client.StoreMemory(context.Background(), "u1", StoreMemoryRequest{})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
