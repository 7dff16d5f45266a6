package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phishnix/phishnix/internal/engine/driver"
)

func generateRequest() *driver.Request {
	return &driver.Request{
		Model: "gemini-2.0-flash",
		Messages: []driver.Message{
			{Role: "system", Text: "You are an analyst."},
			{Role: "user", Text: "https://example.com"},
		},
		ResponseFormat: &driver.ResponseFormat{
			Type: "json_schema",
			JSONSchema: &driver.JSONSchema{
				Name:   "website_safety",
				Strict: true,
				Schema: map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"isSafe": map[string]any{"type": "boolean"},
					},
				},
			},
		},
	}
}

func TestClientComplete(t *testing.T) {
	t.Run("SendsGenerateContentRequest", func(t *testing.T) {
		var captured map[string]any
		var key string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key = r.URL.Query().Get("key")
			require.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"isSafe\":true}"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":8,"candidatesTokenCount":4,"totalTokenCount":12}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "gm-test")
		resp, err := client.Complete(context.Background(), generateRequest())
		require.NoError(t, err)
		require.Equal(t, `{"isSafe":true}`, resp.Text)
		require.Equal(t, "STOP", resp.FinishReason)
		require.Equal(t, 12, resp.Usage.TotalTokens)

		require.Equal(t, "gm-test", key)

		instruction := captured["systemInstruction"].(map[string]any)
		parts := instruction["parts"].([]any)
		require.Equal(t, "You are an analyst.", parts[0].(map[string]any)["text"])

		contents := captured["contents"].([]any)
		require.Len(t, contents, 1)
		require.Equal(t, "user", contents[0].(map[string]any)["role"])

		genCfg := captured["generationConfig"].(map[string]any)
		require.Equal(t, "application/json", genCfg["responseMimeType"])
		schema := genCfg["responseSchema"].(map[string]any)
		require.NotContains(t, schema, "additionalProperties")
		require.Contains(t, schema, "properties")
	})

	t.Run("NonSuccessStatusIsProviderError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "gm-test")
		_, err := client.Complete(context.Background(), generateRequest())

		var provErr *driver.ProviderError
		require.ErrorAs(t, err, &provErr)
		require.Equal(t, "gemini", provErr.Provider)
		require.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode)
		require.Contains(t, provErr.Message, "overloaded")
	})

	t.Run("InlineErrorIsProviderError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad schema","status":"INVALID_ARGUMENT"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "gm-test")
		_, err := client.Complete(context.Background(), generateRequest())

		var provErr *driver.ProviderError
		require.ErrorAs(t, err, &provErr)
		require.Contains(t, provErr.Message, "bad schema")
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		client := NewClient("", "")
		_, err := client.Complete(context.Background(), generateRequest())
		require.Error(t, err)
		require.Contains(t, err.Error(), "api key")
	})

	t.Run("NoCandidatesRejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "gm-test")
		_, err := client.Complete(context.Background(), generateRequest())
		require.Error(t, err)
	})
}

func TestBuildGenerateRequest(t *testing.T) {
	t.Run("UnsupportedRole", func(t *testing.T) {
		_, err := buildGenerateRequest(&driver.Request{
			Model:    "gemini-2.0-flash",
			Messages: []driver.Message{{Role: "tool", Text: "x"}},
		})
		require.Error(t, err)
	})

	t.Run("SystemOnlyRejected", func(t *testing.T) {
		_, err := buildGenerateRequest(&driver.Request{
			Model:    "gemini-2.0-flash",
			Messages: []driver.Message{{Role: "system", Text: "x"}},
		})
		require.Error(t, err)
	})
}

func TestSanitizeSchema(t *testing.T) {
	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"nested": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
			},
		},
	}

	cleaned := sanitizeSchema(schema)
	require.NotContains(t, cleaned, "additionalProperties")
	nested := cleaned["properties"].(map[string]any)["nested"].(map[string]any)
	require.NotContains(t, nested, "additionalProperties")
	// Original input untouched.
	require.Contains(t, schema, "additionalProperties")
}
