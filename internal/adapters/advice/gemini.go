// Package advice talks to the Gemini generative-text service to produce
// safety steps and tool suggestions for a maintenance-task description.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient performs one request/response round-trip per advice
// lookup. No retry, no caching; the configured timeout bounds the call so
// a slow service cannot hold a caller indefinitely.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Items      *geminiSchema           `json:"items,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// adviceSchema constrains the model to the {steps, tools} shape.
var adviceSchema = &geminiSchema{
	Type: "OBJECT",
	Properties: map[string]geminiSchema{
		"steps": {Type: "ARRAY", Items: &geminiSchema{Type: "STRING"}},
		"tools": {Type: "ARRAY", Items: &geminiSchema{Type: "STRING"}},
	},
	Required: []string{"steps", "tools"},
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg config.AdviceConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// GetMaintenanceAdvice asks the model for safety steps and tools for the
// given customs-infrastructure maintenance task.
func (c *GeminiClient) GetMaintenanceAdvice(ctx context.Context, description string) (*entities.MaintenanceAdvice, error) {
	prompt := fmt.Sprintf(
		"Proporciona una lista breve de pasos de seguridad y herramientas necesarias para esta tarea de mantenimiento de infraestructura aduanera: %q. Responde en español y formato JSON.",
		description,
	)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   adviceSchema,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode advice request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build advice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("advice request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read advice response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode advice response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini API returned no candidates")
	}

	var advice entities.MaintenanceAdvice
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &advice); err != nil {
		return nil, fmt.Errorf("failed to parse structured advice: %w", err)
	}

	return &advice, nil
}
