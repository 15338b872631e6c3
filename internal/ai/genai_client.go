package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// GenAIClient implements Provider with the official Google GenAI SDK. One SDK
// client is kept per distinct API key.
type GenAIClient struct {
	apiKey string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGenAIClient creates an SDK-backed provider using apiKey by default.
func NewGenAIClient(apiKey string) *GenAIClient {
	return &GenAIClient{
		apiKey:  apiKey,
		clients: make(map[string]*genai.Client),
	}
}

func (g *GenAIClient) clientFor(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.clients[key] = c
	return c, nil
}

// Generate implements Provider.
func (g *GenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	key := req.APIKey
	if key == "" {
		key = g.apiKey
	}
	if key == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Status: "UNAUTHENTICATED", Message: "API key not valid: no key configured"}
	}

	client, err := g.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return nil, &BlockedError{Reason: string(result.PromptFeedback.BlockReason)}
	}
	if len(result.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := result.Candidates[0]
	out := &Response{}
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Images = append(out.Images, InlineData{
					MIMEType: part.InlineData.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
				})
				continue
			}
			if !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	out.Text = text.String()

	if out.Text == "" && len(out.Images) == 0 && candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &BlockedError{Reason: string(candidate.FinishReason)}
	}
	return out, nil
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenAISchema(req.Schema)
	}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.AspectRatio != "" {
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
	}
	return cfg
}

func toGenAISchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenAISchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
	}
	return out
}
