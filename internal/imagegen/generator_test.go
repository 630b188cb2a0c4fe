package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/memory-mcp/internal/logging"
)

func TestWorkersAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acct/ai/run/@cf/black-forest-labs/flux-1-schnell", r.URL.Path)
		assert.Equal(t, "Bearer cf-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a red fox", body["prompt"])
		assert.EqualValues(t, 6, body["steps"])

		_, _ = w.Write([]byte(`{"result":{"image":"aGVsbG8="},"success":true,"errors":[],"messages":[]}`))
	}))
	defer srv.Close()

	gen, err := NewWorkersAI(WorkersAIConfig{
		APIBase:   srv.URL,
		AccountID: "acct",
		APIToken:  "cf-token",
		Timeout:   5 * time.Second,
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)

	img, err := gen.Generate(context.Background(), Request{Prompt: "a red fox", Steps: 6})
	require.NoError(t, err)
	assert.Equal(t, Image{Data: "aGVsbG8=", MIMEType: "image/jpeg"}, img)
}

func TestWorkersAIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"result":null,"success":false,"errors":[{"code":5006,"message":"steps too high"}]}`))
	}))
	defer srv.Close()

	gen, err := NewWorkersAI(WorkersAIConfig{APIBase: srv.URL, AccountID: "acct", APIToken: "t", Logger: logging.Discard()})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), Request{Prompt: "x", Steps: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps too high")
}

func TestNewWorkersAIRequiresCredentials(t *testing.T) {
	_, err := NewWorkersAI(WorkersAIConfig{AccountID: "acct"})
	assert.Error(t, err)
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "b64_json", body["response_format"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"b64_json":"cG5n"}]}`))
	}))
	defer srv.Close()

	gen, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)

	img, err := gen.Generate(context.Background(), Request{Prompt: "a red fox", Steps: 4})
	require.NoError(t, err)
	assert.Equal(t, Image{Data: "cG5n", MIMEType: "image/png"}, img)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
