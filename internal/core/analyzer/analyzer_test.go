package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/domainintel"
	"github.com/phishnix/phishnix/internal/engine"
	"github.com/phishnix/phishnix/internal/engine/driver"
)

// stubEngine records the last request and returns a scripted payload.
type stubEngine struct {
	lastReq engine.CompletionRequest
	payload json.RawMessage
	err     error
}

func (s *stubEngine) Complete(ctx context.Context, req engine.CompletionRequest) (json.RawMessage, error) {
	s.lastReq = req
	return s.payload, s.err
}

type stubIntel struct {
	report *domainintel.Report
	err    error
}

func (s *stubIntel) Lookup(ctx context.Context, host string) (*domainintel.Report, error) {
	return s.report, s.err
}

func TestAnalyze(t *testing.T) {
	t.Run("ValidVerdictPassesThrough", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{
			"isSafe": false,
			"reasoning": "Domain registered 2 months ago and mimics a bank.",
			"trustScore": 0,
			"url": "https://examp1e-bank.com"
		}`)}
		a := &Analyzer{Engine: eng}

		verdict, err := a.Analyze(context.Background(), core.AnalysisRequest{
			Link: "https://examp1e-bank.com",
			Kind: core.RecordKindWebsite,
		})
		require.NoError(t, err)
		require.False(t, verdict.IsSafe)
		require.Equal(t, 0.0, verdict.TrustScore)

		require.Equal(t, SlugWebsiteSafety, eng.lastReq.PromptSlug)
		require.Equal(t, "https://examp1e-bank.com", eng.lastReq.Variables["link"])
		require.NotEmpty(t, eng.lastReq.ResponseSchema)
	})

	t.Run("PaymentKindRoutesToPaymentPrompt", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{"isSafe": true, "reasoning": "recognized processor", "trustScore": 1}`)}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{
			Link: "https://pay.example.com/invoice",
			Kind: core.RecordKindPayment,
		})
		require.NoError(t, err)
		require.Equal(t, SlugPaymentSafety, eng.lastReq.PromptSlug)
	})

	t.Run("ContradictoryVerdictIsMalformed", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{"isSafe": true, "reasoning": "looks fine", "trustScore": 0}`)}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		var failure *EngineFailure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, FailureMalformed, failure.Reason)
	})

	t.Run("SchemaViolationIsMalformed", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{"isSafe": true, "trustScore": 1}`)}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		var failure *EngineFailure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, FailureMalformed, failure.Reason)
	})

	t.Run("UnparsableContentIsMalformed", func(t *testing.T) {
		eng := &stubEngine{err: &engine.RawResponseError{Err: errors.New("response is not valid JSON")}}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		var failure *EngineFailure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, FailureMalformed, failure.Reason)
	})

	t.Run("ProviderErrorIsUnavailable", func(t *testing.T) {
		eng := &stubEngine{err: &driver.ProviderError{Provider: "openai", StatusCode: 503, Message: "overloaded"}}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		var failure *EngineFailure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, FailureUnavailable, failure.Reason)
	})

	t.Run("TimeoutIsUnavailable", func(t *testing.T) {
		eng := &stubEngine{err: context.DeadlineExceeded}
		a := &Analyzer{Engine: eng}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		var failure *EngineFailure
		require.ErrorAs(t, err, &failure)
		require.Equal(t, FailureUnavailable, failure.Reason)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("NoFallbackVerdictOnFailure", func(t *testing.T) {
		eng := &stubEngine{err: &driver.ProviderError{Provider: "openai", Message: "down"}}
		a := &Analyzer{Engine: eng}

		verdict, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		require.Error(t, err)
		require.Nil(t, verdict)
	})

	t.Run("IntelFactsFlowIntoVariables", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{"isSafe": true, "reasoning": "established domain", "trustScore": 1}`)}
		a := &Analyzer{
			Engine: eng,
			Intel: &stubIntel{report: &domainintel.Report{
				Domain:       "example.com",
				RegisteredAt: time.Date(1995, 8, 14, 0, 0, 0, 0, time.UTC),
				Registrar:    "Example Registrar",
				Source:       "rdap",
			}},
		}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		require.NoError(t, err)
		require.Contains(t, eng.lastReq.Variables["domain_facts"], "1995-08-14")
	})

	t.Run("IntelFailureDegradesSilently", func(t *testing.T) {
		eng := &stubEngine{payload: json.RawMessage(`{"isSafe": true, "reasoning": "fine", "trustScore": 1}`)}
		a := &Analyzer{
			Engine: eng,
			Intel:  &stubIntel{err: errors.New("rdap unreachable")},
		}

		_, err := a.Analyze(context.Background(), core.AnalysisRequest{Link: "https://example.com", Kind: core.RecordKindWebsite})
		require.NoError(t, err)
		require.NotContains(t, eng.lastReq.Variables, "domain_facts")
	})
}
