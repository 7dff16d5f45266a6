package gemini

import (
	"fmt"
	"strings"

	"github.com/phishnix/phishnix/internal/engine/driver"
)

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64       `json:"temperature,omitempty"`
	MaxOutputTokens  *int           `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

func buildGenerateRequest(req *driver.Request) (*generateContentRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	payload := &generateContentRequest{}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			payload.SystemInstruction = &content{Parts: []part{{Text: msg.Text}}}
		case "user":
			payload.Contents = append(payload.Contents, content{Role: "user", Parts: []part{{Text: msg.Text}}})
		case "assistant":
			payload.Contents = append(payload.Contents, content{Role: "model", Parts: []part{{Text: msg.Text}}})
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	if len(payload.Contents) == 0 {
		return nil, fmt.Errorf("at least one user message is required")
	}

	cfg := &generationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type != "" && req.ResponseFormat.Type != "text" {
		cfg.ResponseMIMEType = "application/json"
		if req.ResponseFormat.JSONSchema != nil {
			cfg.ResponseSchema = sanitizeSchema(req.ResponseFormat.JSONSchema.Schema)
		}
	}
	payload.GenerationConfig = cfg

	return payload, nil
}

// sanitizeSchema strips JSON Schema keywords the generateContent API rejects.
// Gemini accepts an OpenAPI-style subset without additionalProperties.
func sanitizeSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	cleaned := make(map[string]any, len(schema))
	for key, value := range schema {
		if key == "additionalProperties" {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			cleaned[key] = sanitizeSchema(nested)
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}
