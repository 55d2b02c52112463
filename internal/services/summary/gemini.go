package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiProvider calls the Google Generative Language API
// (generativelanguage.googleapis.com) with an API key.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini provider. baseURL is normally
// https://generativelanguage.googleapis.com.
func NewGeminiProvider(apiKey, model, baseURL string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   normalizeGeminiModel(model),
		baseURL: strings.TrimRight(baseURL, "/"),
		// The Service applies the request deadline; this is a backstop.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (g *GeminiProvider) Name() string     { return "gemini" }
func (g *GeminiProvider) Model() string    { return g.model }
func (g *GeminiProvider) Configured() bool { return g.apiKey != "" }

// --- generateContent API types ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one generateContent request.
func (g *GeminiProvider) Generate(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = g.model
	}
	model = normalizeGeminiModel(model)

	jsonBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini error: %s", out.Error.Message)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// normalizeGeminiModel accepts both "gemini-1.5-flash" and "models/gemini-1.5-flash".
func normalizeGeminiModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}
