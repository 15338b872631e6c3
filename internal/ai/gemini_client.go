package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient calls the Gemini REST API directly.
type GeminiClient struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string             `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema            `json:"responseSchema,omitempty"`
	ImageConfig      *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				Thought    bool   `json:"thought"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *geminiError `json:"error"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a REST client. An empty baseURL selects the public
// endpoint.
func NewGeminiClient(apiKey, baseURL string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Generate implements Provider.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	key := req.APIKey
	if key == "" {
		key = g.apiKey
	}
	if key == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Status: "UNAUTHENTICATED", Message: "API key not valid: no key configured"}
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, req.Model)

	var resp geminiResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", key).
		SetBody(buildGeminiRequest(req)).
		SetResult(&resp).
		SetError(&resp).
		Post(url)

	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return nil, &APIError{StatusCode: resp.Error.Code, Status: resp.Error.Status, Message: resp.Error.Message}
	}
	if httpResp.IsError() {
		return nil, &APIError{StatusCode: httpResp.StatusCode(), Status: httpResp.Status(), Message: strings.TrimSpace(httpResp.String())}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, &BlockedError{Reason: resp.PromptFeedback.BlockReason}
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	out := &Response{}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			out.Images = append(out.Images, InlineData{MIMEType: part.InlineData.MimeType, Data: part.InlineData.Data})
			continue
		}
		if !part.Thought {
			text.WriteString(part.Text)
		}
	}
	out.Text = text.String()

	if out.Text == "" && len(out.Images) == 0 && candidate.FinishReason == "SAFETY" {
		return nil, &BlockedError{Reason: candidate.FinishReason}
	}
	return out, nil
}

func buildGeminiRequest(req Request) geminiRequest {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
	}
	if req.Search {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	var gen geminiGenerationConfig
	if req.Schema != nil {
		gen.ResponseMimeType = "application/json"
		gen.ResponseSchema = req.Schema
	}
	if req.AspectRatio != "" {
		gen.ImageConfig = &geminiImageConfig{AspectRatio: req.AspectRatio}
	}
	if gen != (geminiGenerationConfig{}) {
		body.GenerationConfig = &gen
	}
	return body
}
