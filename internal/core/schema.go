package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldViolation describes one schema constraint the raw engine output broke.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates the violations found while validating a raw
// verdict candidate.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "verdict validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return "verdict validation failed: " + strings.Join(parts, "; ")
}

// ValidateVerdict checks a raw engine payload against the verdict schema and
// returns a normalized verdict carrying only recognized fields.
//
// Required: isSafe (boolean), reasoning (non-empty string), trustScore
// (number in [0,1]). Optional: url, domainAgeIndication (strings).
// Unrecognized fields are dropped. Validation is idempotent: re-validating a
// marshaled accepted verdict yields an identical object.
func ValidateVerdict(raw []byte) (*AnalysisVerdict, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Violations: []FieldViolation{
			{Field: "$", Reason: "payload is not a JSON object"},
		}}
	}

	var violations []FieldViolation
	verdict := &AnalysisVerdict{}

	if payload, ok := fields["isSafe"]; ok {
		if err := json.Unmarshal(payload, &verdict.IsSafe); err != nil {
			violations = append(violations, FieldViolation{Field: "isSafe", Reason: "must be a boolean"})
		}
	} else {
		violations = append(violations, FieldViolation{Field: "isSafe", Reason: "is required"})
	}

	if payload, ok := fields["reasoning"]; ok {
		if err := json.Unmarshal(payload, &verdict.Reasoning); err != nil {
			violations = append(violations, FieldViolation{Field: "reasoning", Reason: "must be a string"})
		} else if strings.TrimSpace(verdict.Reasoning) == "" {
			violations = append(violations, FieldViolation{Field: "reasoning", Reason: "must not be empty"})
		}
	} else {
		violations = append(violations, FieldViolation{Field: "reasoning", Reason: "is required"})
	}

	if payload, ok := fields["trustScore"]; ok {
		if err := json.Unmarshal(payload, &verdict.TrustScore); err != nil {
			violations = append(violations, FieldViolation{Field: "trustScore", Reason: "must be a number"})
		} else if verdict.TrustScore < 0 || verdict.TrustScore > 1 {
			violations = append(violations, FieldViolation{Field: "trustScore", Reason: "must be within [0,1]"})
		}
	} else {
		violations = append(violations, FieldViolation{Field: "trustScore", Reason: "is required"})
	}

	if payload, ok := fields["url"]; ok {
		if err := json.Unmarshal(payload, &verdict.URL); err != nil {
			violations = append(violations, FieldViolation{Field: "url", Reason: "must be a string"})
		}
	}

	if payload, ok := fields["domainAgeIndication"]; ok {
		if err := json.Unmarshal(payload, &verdict.DomainAgeIndication); err != nil {
			violations = append(violations, FieldViolation{Field: "domainAgeIndication", Reason: "must be a string"})
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return verdict, nil
}

// VerifyCorrelation enforces the rubric correlation between the safety flag
// and the trust score: safe verdicts score exactly 1, unsafe exactly 0. A
// contradictory verdict is rejected rather than corrected, since correcting
// in either direction could misrepresent engine intent.
func VerifyCorrelation(v *AnalysisVerdict) error {
	if v == nil {
		return &ValidationError{Violations: []FieldViolation{{Field: "$", Reason: "verdict is required"}}}
	}
	want := 0.0
	if v.IsSafe {
		want = 1.0
	}
	if v.TrustScore != want {
		return &ValidationError{Violations: []FieldViolation{{
			Field:  "trustScore",
			Reason: fmt.Sprintf("contradicts isSafe=%t: got %v, want %v", v.IsSafe, v.TrustScore, want),
		}}}
	}
	return nil
}

// ResponseSchema is the JSON schema handed to the reasoning engine as the
// required output shape. It mirrors ValidateVerdict's contract.
func ResponseSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"isSafe", "reasoning", "trustScore"},
		"properties": map[string]any{
			"isSafe": map[string]any{
				"type":        "boolean",
				"description": "Whether the link is safe.",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "The explanation behind the safety verdict.",
			},
			"trustScore": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "0 if unsafe or suspicious, 1 if safe.",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "The link that was analyzed.",
			},
			"domainAgeIndication": map[string]any{
				"type":        "string",
				"description": "Estimated registration age of the domain and the associated risk.",
			},
		},
	}
}
