package core

import "context"

// EngineErrorMessage is the only engine-failure text shown to end users.
// Engine internals stay in logs.
const EngineErrorMessage = "Analysis could not be completed. Please try again later."

// Orchestrator runs a validated analysis request through the verdict flow.
type Orchestrator interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisVerdict, error)
}

// AnalysisForm is the raw, untrusted submission for one analysis.
type AnalysisForm struct {
	Link string
	Kind RecordKind
}

// HandleAnalysis validates a submission and, only when validation passes,
// invokes the orchestrator. The three outcome kinds are mutually exclusive:
// field errors never reach the engine, and engine failures never leak
// provider detail into the outcome.
func HandleAnalysis(ctx context.Context, orch Orchestrator, form AnalysisForm) AnalysisOutcome {
	kind := form.Kind
	if !kind.Valid() {
		kind = RecordKindWebsite
	}

	link, err := NormalizeLink(form.Link)
	if err != nil {
		return AnalysisOutcome{
			Kind: OutcomeFieldError,
			FieldErrors: map[string][]string{
				kind.FieldName(): {fieldMessage(err)},
			},
		}
	}

	verdict, err := orch.Analyze(ctx, AnalysisRequest{Link: link, Kind: kind})
	if err != nil {
		return AnalysisOutcome{
			Kind:    OutcomeEngineError,
			Message: EngineErrorMessage,
		}
	}

	return AnalysisOutcome{
		Kind:    OutcomeSuccess,
		Verdict: verdict,
	}
}

func fieldMessage(err error) string {
	switch err {
	case ErrLinkEmpty:
		return "A link is required."
	default:
		return "Enter a valid URL."
	}
}
