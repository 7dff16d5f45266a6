package core

import "time"

// RecordKind distinguishes the two analysis collections. Both kinds share the
// verdict shape; payment analyses are stored in their own namespace and tag
// the submitted link.
type RecordKind string

const (
	RecordKindWebsite RecordKind = "website"
	RecordKindPayment RecordKind = "payment"
)

// Valid reports whether the kind is one of the known record kinds.
func (k RecordKind) Valid() bool {
	return k == RecordKindWebsite || k == RecordKindPayment
}

// FieldName returns the form field the link was submitted under for this kind.
func (k RecordKind) FieldName() string {
	if k == RecordKindPayment {
		return "paymentLink"
	}
	return "link"
}

// AnalysisRequest is a single validated analysis invocation.
type AnalysisRequest struct {
	Link string
	Kind RecordKind
}

// AnalysisVerdict is the canonical safety verdict produced by the reasoning
// engine and validated against the verdict schema.
//
// TrustScore is typed as a continuous [0,1] value but collapses to exactly 0
// (unsafe) or 1 (safe) by rubric convention; accepted verdicts always satisfy
// IsSafe == (TrustScore == 1).
type AnalysisVerdict struct {
	IsSafe              bool    `json:"isSafe"`
	Reasoning           string  `json:"reasoning"`
	TrustScore          float64 `json:"trustScore"`
	URL                 string  `json:"url,omitempty"`
	DomainAgeIndication string  `json:"domainAgeIndication,omitempty"`
}

// VerdictRecord is the persisted, owner-scoped form of a verdict. Records are
// append-only: they are created once after a successful analysis and never
// mutated.
type VerdictRecord struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"ownerId"`
	Kind       RecordKind      `json:"recordKind"`
	SourceLink string          `json:"sourceLink"`
	Verdict    AnalysisVerdict `json:"verdict"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OutcomeKind tags the result of one analysis invocation.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeFieldError  OutcomeKind = "fieldError"
	OutcomeEngineError OutcomeKind = "engineError"
)

// AnalysisOutcome is the externally observable result of one invocation.
// Exactly one of Verdict, FieldErrors, or Message is populated, matching Kind.
type AnalysisOutcome struct {
	Kind        OutcomeKind         `json:"kind"`
	Verdict     *AnalysisVerdict    `json:"verdict,omitempty"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
	Message     string              `json:"message,omitempty"`
}
