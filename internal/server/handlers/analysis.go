package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/core/analyzer"
	"github.com/phishnix/phishnix/internal/core/store"
	apperrors "github.com/phishnix/phishnix/internal/errors"
	"github.com/phishnix/phishnix/internal/metrics"
)

// OwnerIDHeader identifies the caller for verdict persistence and history
// scoping. Analyses without it still run; they are simply not recorded.
const OwnerIDHeader = "X-Owner-ID"

// AnalysisHandler serves the analysis API.
type AnalysisHandler struct {
	orchestrator core.Orchestrator
	writer       *store.Writer
	store        *store.Store
}

// NewAnalysisHandler creates the analysis API handler.
func NewAnalysisHandler(orch core.Orchestrator, writer *store.Writer, st *store.Store) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orch,
		writer:       writer,
		store:        st,
	}
}

// AnalyzeRequest is the POST /api/v1/analyses body.
type AnalyzeRequest struct {
	Link string `json:"link"`
	Kind string `json:"kind,omitempty"`
}

// AnalyzeResponse wraps a successful verdict.
type AnalyzeResponse struct {
	Verdict *core.AnalysisVerdict `json:"verdict"`
}

// FieldErrorResponse reports per-field validation failures.
type FieldErrorResponse struct {
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// Analyze handles POST /api/v1/analyses.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON"))
		return
	}

	kind := core.RecordKindWebsite
	if body.Kind != "" {
		kind = core.RecordKind(body.Kind)
		if !kind.Valid() {
			respondWithError(w, r, apperrors.NewValidationError("kind must be \"website\" or \"payment\""))
			return
		}
	}

	link, err := core.NormalizeLink(body.Link)
	if err != nil {
		metrics.RecordAnalysis(string(kind), string(core.OutcomeFieldError))
		writeJSON(w, http.StatusBadRequest, FieldErrorResponse{
			FieldErrors: map[string][]string{
				kind.FieldName(): {fieldErrorMessage(err)},
			},
		})
		return
	}

	verdict, err := h.orchestrator.Analyze(r.Context(), core.AnalysisRequest{Link: link, Kind: kind})
	if err != nil {
		metrics.RecordAnalysis(string(kind), string(core.OutcomeEngineError))
		respondWithError(w, r, engineEnvelope(r.Context(), err))
		return
	}

	metrics.RecordAnalysis(string(kind), string(core.OutcomeSuccess))

	if h.writer != nil {
		h.writer.WriteAsync(r.Header.Get(OwnerIDHeader), verdict, link, kind)
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{Verdict: verdict})
}

// HistoryResponse wraps an owner's verdict history.
type HistoryResponse struct {
	Records []core.VerdictRecord `json:"records"`
}

// History handles GET /api/v1/analyses.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(OwnerIDHeader)
	if ownerID == "" {
		respondWithError(w, r, apperrors.NewValidationError(OwnerIDHeader+" header is required"))
		return
	}

	kind := core.RecordKindWebsite
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind = core.RecordKind(raw)
		if !kind.Valid() {
			respondWithError(w, r, apperrors.NewValidationError("kind must be \"website\" or \"payment\""))
			return
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, r, apperrors.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	if h.store == nil {
		respondWithError(w, r, apperrors.NewDatabaseError("Verdict store is not configured"))
		return
	}

	records, err := h.store.ListRecords(r.Context(), ownerID, kind, limit)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "Failed to load verdict history"))
		return
	}
	if records == nil {
		records = []core.VerdictRecord{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Records: records})
}

// engineEnvelope maps an analysis failure to the HTTP error surface. All
// variants carry the same generic user message; reason detail stays in logs.
func engineEnvelope(ctx context.Context, err error) error {
	var failure *analyzer.EngineFailure
	if errors.As(err, &failure) {
		metrics.RecordEngineFailure(string(failure.Reason))

		if failure.Reason == analyzer.FailureMalformed {
			return apperrors.WrapEngineMalformed(ctx, err, core.EngineErrorMessage)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.WrapTimeout(ctx, err, core.EngineErrorMessage)
		}
		return apperrors.WrapExternalService(ctx, err, core.EngineErrorMessage)
	}

	return apperrors.WrapInternal(ctx, err, core.EngineErrorMessage)
}

func fieldErrorMessage(err error) string {
	if errors.Is(err, core.ErrLinkEmpty) {
		return "A link is required."
	}
	return "Enter a valid URL."
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
