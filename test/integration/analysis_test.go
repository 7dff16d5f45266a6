package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/observability"
	"github.com/phishnix/phishnix/internal/server"
	"github.com/phishnix/phishnix/internal/server/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticOrchestrator returns the same verdict for every analysis so the server
// can be exercised end to end without a reasoning provider.
type staticOrchestrator struct {
	verdict core.AnalysisVerdict
}

func (s *staticOrchestrator) Analyze(ctx context.Context, req core.AnalysisRequest) (*core.AnalysisVerdict, error) {
	v := s.verdict
	v.URL = req.Link
	return &v, nil
}

func TestAnalysisEndpoint_Integration(t *testing.T) {
	observability.InitCLILogger("test", false)
	observability.InitServerLogger("test", "info")

	handlers.InitHealthManager("test")

	orch := &staticOrchestrator{verdict: core.AnalysisVerdict{
		IsSafe:     true,
		Reasoning:  "Established domain with a long registration history.",
		TrustScore: 1,
	}}

	ts, client := newTestServer(t, server.Deps{Orchestrator: orch}, nil)
	serverURL := ts.URL

	t.Run("WebsiteAnalysisRoundTrip", func(t *testing.T) {
		resp, err := client.Post(serverURL+"/api/v1/analyses", "application/json",
			strings.NewReader(`{"link":"example.com"}`))
		require.NoError(t, err)
		defer func() { require.NoError(t, resp.Body.Close()) }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Verdict core.AnalysisVerdict `json:"verdict"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Verdict.IsSafe)
		assert.Equal(t, float64(1), body.Verdict.TrustScore)
		assert.Equal(t, "https://example.com", body.Verdict.URL, "link should be normalized before analysis")
	})

	t.Run("InvalidLinkReturnsFieldErrors", func(t *testing.T) {
		resp, err := client.Post(serverURL+"/api/v1/analyses", "application/json",
			strings.NewReader(`{"link":""}`))
		require.NoError(t, err)
		defer func() { require.NoError(t, resp.Body.Close()) }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			FieldErrors map[string][]string `json:"fieldErrors"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.FieldErrors, "link")
	})

	t.Run("UnknownRouteReturnsErrorEnvelope", func(t *testing.T) {
		resp, err := client.Get(serverURL + "/api/v1/nope")
		require.NoError(t, err)
		defer func() { require.NoError(t, resp.Body.Close()) }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Error.Code)
	})

	t.Run("HistoryRequiresOwnerHeader", func(t *testing.T) {
		resp, err := client.Get(serverURL + "/api/v1/analyses")
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
