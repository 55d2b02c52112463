package summary

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexProvider calls Gemini through Vertex AI. Authentication uses
// Application Default Credentials, or a service-account file when given.
type VertexProvider struct {
	client *genai.Client
	model  string
}

// NewVertexProvider connects to Vertex AI. With an empty projectID it
// returns an unconfigured provider so the rest of the app still starts.
func NewVertexProvider(ctx context.Context, projectID, region, model, credentialsFile string) (*VertexProvider, error) {
	if projectID == "" {
		return &VertexProvider{model: model}, nil
	}
	if region == "" {
		return nil, fmt.Errorf("NewVertexProvider: region cannot be empty")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexProvider{client: client, model: model}, nil
}

func (v *VertexProvider) Name() string     { return "vertex" }
func (v *VertexProvider) Model() string    { return v.model }
func (v *VertexProvider) Configured() bool { return v.client != nil }

// Generate runs one GenerateContent call.
func (v *VertexProvider) Generate(ctx context.Context, prompt, model string) (string, error) {
	if v.client == nil {
		return "", ErrNotConfigured
	}
	if model == "" {
		model = v.model
	}

	resp, err := v.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (v *VertexProvider) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
