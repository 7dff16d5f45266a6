// Package analyzer coordinates the verdict pipeline: rubric prompt, engine
// invocation, and strict schema validation of the engine's output.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/domainintel"
	"github.com/phishnix/phishnix/internal/engine"
	"github.com/phishnix/phishnix/internal/engine/driver"
)

// Prompt slugs per record kind.
const (
	SlugWebsiteSafety = "website-safety"
	SlugPaymentSafety = "payment-safety"
)

// FailureReason classifies why a verdict could not be produced.
type FailureReason string

const (
	// FailureUnavailable covers transport failures, provider errors, and
	// timeouts reaching the reasoning engine.
	FailureUnavailable FailureReason = "engine_unavailable"
	// FailureMalformed covers engine output that failed schema validation,
	// violated the trust-score correlation, or did not parse at all.
	FailureMalformed FailureReason = "engine_response_malformed"
)

// EngineFailure is the typed failure returned when analysis cannot complete.
// Both reasons surface identically to end users; the reason is kept for logs
// and metrics.
type EngineFailure struct {
	Reason FailureReason
	Err    error
}

func (e *EngineFailure) Error() string {
	if e == nil {
		return "engine failure"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *EngineFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Engine is the completion capability the analyzer depends on.
type Engine interface {
	Complete(ctx context.Context, req engine.CompletionRequest) (json.RawMessage, error)
}

// IntelSource provides optional factual registration data for the analyzed
// domain.
type IntelSource interface {
	Lookup(ctx context.Context, host string) (*domainintel.Report, error)
}

// Analyzer produces validated safety verdicts. Each call is independent; the
// analyzer holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	Engine  Engine
	Intel   IntelSource
	Logger  *logging.Logger
	Timeout time.Duration
}

// Analyze runs one verdict flow. It fails fast on engine failure and never
// synthesizes or corrects verdict fields: anything that does not pass the
// schema gate is rejected as malformed.
func (a *Analyzer) Analyze(ctx context.Context, req core.AnalysisRequest) (*core.AnalysisVerdict, error) {
	if a == nil || a.Engine == nil {
		return nil, &EngineFailure{Reason: FailureUnavailable, Err: errors.New("analyzer engine not configured")}
	}

	slug := SlugWebsiteSafety
	if req.Kind == core.RecordKindPayment {
		slug = SlugPaymentSafety
	}

	vars := map[string]string{"link": req.Link}
	if a.Intel != nil {
		if facts := a.domainFacts(ctx, req.Link); facts != "" {
			vars["domain_facts"] = facts
		}
	}

	raw, err := a.Engine.Complete(ctx, engine.CompletionRequest{
		PromptSlug:     slug,
		Variables:      vars,
		ResponseSchema: core.ResponseSchema(),
		Timeout:        a.Timeout,
	})
	if err != nil {
		return nil, a.classify(req, err)
	}

	verdict, err := core.ValidateVerdict(raw)
	if err != nil {
		a.logMalformed(req, err)
		return nil, &EngineFailure{Reason: FailureMalformed, Err: err}
	}

	if err := core.VerifyCorrelation(verdict); err != nil {
		a.logMalformed(req, err)
		return nil, &EngineFailure{Reason: FailureMalformed, Err: err}
	}

	return verdict, nil
}

// domainFacts looks up registration data for the link's host. Failures are
// logged and swallowed: enrichment never blocks an analysis.
func (a *Analyzer) domainFacts(ctx context.Context, link string) string {
	host := core.LinkHost(link)
	if host == "" {
		return ""
	}

	report, err := a.Intel.Lookup(ctx, host)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Debug("Domain intel lookup failed",
				zap.String("host", host),
				zap.Error(err))
		}
		return ""
	}
	return report.Summary()
}

func (a *Analyzer) classify(req core.AnalysisRequest, err error) error {
	var rawErr *engine.RawResponseError
	if errors.As(err, &rawErr) {
		a.logMalformed(req, err)
		return &EngineFailure{Reason: FailureMalformed, Err: err}
	}

	var providerErr *driver.ProviderError
	switch {
	case errors.As(err, &providerErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		if a.Logger != nil {
			a.Logger.Warn("Reasoning engine unavailable",
				zap.String("kind", string(req.Kind)),
				zap.Error(err))
		}
		return &EngineFailure{Reason: FailureUnavailable, Err: err}
	}

	// Remaining failures are configuration or rendering errors on our side of
	// the boundary; the caller still sees an unavailable engine.
	if a.Logger != nil {
		a.Logger.Error("Analysis failed before engine validation",
			zap.String("kind", string(req.Kind)),
			zap.Error(err))
	}
	return &EngineFailure{Reason: FailureUnavailable, Err: err}
}

func (a *Analyzer) logMalformed(req core.AnalysisRequest, err error) {
	if a.Logger == nil {
		return
	}
	a.Logger.Warn("Rejected malformed engine response",
		zap.String("kind", string(req.Kind)),
		zap.Error(err))
}
