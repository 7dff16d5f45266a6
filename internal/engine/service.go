// Package engine is the capability boundary to the external reasoning
// engine: it renders a registered prompt, invokes a configured provider, and
// returns the raw structured payload or a typed failure. Business validation
// of the payload belongs to the caller.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phishnix/phishnix/internal/engine/driver"
	"github.com/phishnix/phishnix/internal/engine/prompt"
)

const (
	defaultTimeout = 60 * time.Second
	maxTimeout     = 5 * time.Minute
)

// Service coordinates prompt rendering, provider selection, and driver
// execution.
type Service struct {
	Providers *Registry
	Prompts   prompt.Registry
}

// NewService builds a service from configuration, loading the embedded
// prompt set unless cfg.PromptsDir overrides it.
func NewService(cfg Config) (*Service, error) {
	var (
		prompts []*prompt.Prompt
		err     error
	)
	if dir := strings.TrimSpace(cfg.PromptsDir); dir != "" {
		prompts, err = prompt.LoadFromDir(dir)
	} else {
		prompts, err = prompt.LoadDefaults()
	}
	if err != nil {
		return nil, err
	}

	registry, err := prompt.NewRegistry(prompts)
	if err != nil {
		return nil, err
	}

	return &Service{
		Providers: NewRegistry(cfg),
		Prompts:   registry,
	}, nil
}

// CompletionRequest is the high-level request for one structured completion.
type CompletionRequest struct {
	PromptSlug     string
	Variables      map[string]string
	ResponseSchema map[string]any
	Model          string
	Timeout        time.Duration
}

// Complete renders the prompt, invokes the routed provider, and returns the
// raw JSON payload. Transport and provider failures surface as
// *driver.ProviderError; content that does not parse as JSON surfaces as
// *RawResponseError.
func (s *Service) Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("engine provider registry not configured")
	}
	if s.Prompts == nil {
		return nil, errors.New("engine prompt registry not configured")
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		return nil, errors.New("prompt slug is required")
	}

	promptDef, err := s.Prompts.Get(slug)
	if err != nil {
		return nil, err
	}

	for _, required := range promptDef.Config.Input.RequiredVariables {
		if value, ok := req.Variables[required]; !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("required variable %q not provided", required)
		}
	}

	systemPrompt, userPrompt, err := renderPrompt(promptDef, req.Variables)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Providers.Resolve(slug, req.Model)
	if err != nil {
		return nil, err
	}

	driverReq := &driver.Request{
		Model: resolved.Model,
		Messages: []driver.Message{
			{Role: "system", Text: systemPrompt},
			{Role: "user", Text: userPrompt},
		},
		ResponseFormat: responseFormat(slug, req.ResponseSchema),
		PromptSlug:     slug,
	}

	duration := s.Providers.cfg.DefaultTimeout
	if duration <= 0 {
		duration = defaultTimeout
	}
	if req.Timeout > 0 {
		duration = req.Timeout
	}
	if duration > maxTimeout {
		duration = maxTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	resp, err := resolved.Driver.Complete(ctx, driverReq)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text)
	if raw == "" {
		return nil, &RawResponseError{Err: errors.New("empty response content")}
	}
	raw = stripCodeFence(raw)

	if !json.Valid([]byte(raw)) {
		return nil, &RawResponseError{Err: errors.New("response is not valid JSON"), Raw: json.RawMessage(raw)}
	}

	return json.RawMessage(raw), nil
}

// responseFormat requests schema-enforced output when a schema is supplied.
func responseFormat(slug string, schema map[string]any) *driver.ResponseFormat {
	if len(schema) == 0 {
		return &driver.ResponseFormat{Type: "json_object"}
	}
	// Provider schema names must be alphanumeric/underscore.
	name := strings.NewReplacer("-", "_", ".", "_").Replace(slug)
	return &driver.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &driver.JSONSchema{
			Name:   name,
			Strict: true,
			Schema: schema,
		},
	}
}

func renderPrompt(def *prompt.Prompt, vars map[string]string) (string, string, error) {
	if def == nil {
		return "", "", errors.New("prompt is required")
	}

	system := applyConditionals(def.Config.SystemTemplate, vars)
	system = applyVars(system, vars)

	user := def.Config.UserTemplate
	if user == "" {
		user = "{{link}}"
	}
	user = applyConditionals(user, vars)
	user = applyVars(user, vars)

	if strings.TrimSpace(system) == "" {
		return "", "", errors.New("system prompt is required")
	}
	return strings.TrimSpace(system), strings.TrimSpace(user), nil
}

func applyVars(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// applyConditionals resolves {{#if var}}...{{/if}} blocks: the block is kept
// when the variable is present and non-blank, dropped otherwise.
func applyConditionals(template string, vars map[string]string) string {
	result := template
	for {
		start := strings.Index(result, "{{#if")
		if start == -1 {
			break
		}
		tagEnd := strings.Index(result[start:], "}}")
		if tagEnd == -1 {
			break
		}
		tagEnd += start

		varName := strings.TrimSpace(result[start+len("{{#if") : tagEnd])
		blockStart := tagEnd + 2

		endStart := strings.Index(result[blockStart:], "{{/if}}")
		if endStart == -1 {
			break
		}
		endStart += blockStart
		endEnd := endStart + len("{{/if}}")

		replacement := ""
		if value, ok := vars[varName]; ok && strings.TrimSpace(value) != "" {
			replacement = result[blockStart:endStart]
		}

		result = result[:start] + replacement + result[endEnd:]
	}
	return result
}

// stripCodeFence removes a markdown code fence wrapper some models emit
// around JSON output despite instructions.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
