// Package wordpress publishes articles through the WordPress REST API.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const postsPath = "/wp-json/wp/v2/posts"

// ErrNotConfigured means the site URL or application password is missing.
var ErrNotConfigured = errors.New("wordpress configuration missing")

var statusMessages = map[int]string{
	http.StatusUnauthorized:        "WordPress Authentication Failed: Check your Application Password and Username.",
	http.StatusForbidden:           "WordPress Permission Denied: Your user might not have permission to post.",
	http.StatusNotFound:            "WordPress API Not Found: Ensure the URL is correct and REST API is enabled.",
	http.StatusInternalServerError: "WordPress Server Error: Something went wrong on your website.",
}

const unreachableMessage = "WordPress Connection Failed: Could not reach your site. Check the URL and try again."

// PublishError is a failed publish. Message is user-facing. StatusCode is
// zero when WordPress could not be reached at all.
type PublishError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PublishError) Error() string { return e.Message }

func (e *PublishError) Unwrap() error { return e.Err }

// Unreachable reports a connectivity failure; retrying may succeed.
func (e *PublishError) Unreachable() bool { return e.StatusCode == 0 }

type postPayload struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Slug    string            `json:"slug"`
	Status  string            `json:"status"`
	Excerpt string            `json:"excerpt"`
	Format  string            `json:"format"`
	Date    string            `json:"date,omitempty"`
	Meta    map[string]string `json:"meta"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Publisher renders and uploads articles.
type Publisher struct {
	client   *resty.Client
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	log      zerolog.Logger
}

func NewPublisher(timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Publisher{
		client:   resty.New().SetTimeout(timeout),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
		log:      logger.Component("wordpress"),
	}
}

// RenderHTML converts Markdown to sanitized HTML.
func (p *Publisher) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return p.policy.Sanitize(buf.String()), nil
}

// Publish creates a post for article and returns its public URL. Scheduled
// articles are created with status "future" at their scheduled date.
func (p *Publisher) Publish(ctx context.Context, article *models.Article, cfg models.WordPressConfig) (string, error) {
	if !cfg.Configured() {
		return "", ErrNotConfigured
	}

	html, err := p.RenderHTML(article.Content)
	if err != nil {
		return "", err
	}

	payload := postPayload{
		Title:   article.Title,
		Content: html,
		Slug:    article.Slug,
		Status:  "publish",
		Excerpt: article.MetaDescription,
		Format:  "standard",
		Meta: map[string]string{
			"_yoast_wpseo_focuskw":  article.FocusKeyword,
			"_yoast_wpseo_metadesc": article.MetaDescription,
			"_yoast_wpseo_title":    article.SeoTitle,
		},
	}
	if payload.Meta["_yoast_wpseo_title"] == "" {
		payload.Meta["_yoast_wpseo_title"] = article.Title
	}
	if article.IsScheduled() {
		payload.Status = "future"
		payload.Date = article.ScheduledAt
	}

	endpoint := strings.TrimRight(cfg.URL, "/") + postsPath

	var created postResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(cfg.Username, cfg.AppPassword).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&created).
		Post(endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.Error().Err(err).Str("endpoint", endpoint).Msg("WordPress request failed")
		return "", &PublishError{Message: unreachableMessage, Err: err}
	}

	if resp.IsError() {
		perr := publishError(resp.StatusCode(), resp.Body())
		p.log.Error().
			Int("status", perr.StatusCode).
			Str("endpoint", endpoint).
			Str("error", perr.Message).
			Msg("WordPress rejected post")
		return "", perr
	}

	p.log.Info().
		Int("post_id", created.ID).
		Str("status", payload.Status).
		Str("link", created.Link).
		Msg("Article published to WordPress")
	return created.Link, nil
}

// publishError prefers the message WordPress put in the body, then a cause
// for well-known status codes, then the bare status.
func publishError(status int, body []byte) *PublishError {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return &PublishError{StatusCode: status, Message: e.Message}
	}
	if msg, ok := statusMessages[status]; ok {
		return &PublishError{StatusCode: status, Message: msg}
	}
	return &PublishError{
		StatusCode: status,
		Message:    fmt.Sprintf("WordPress Error (%d): %s", status, http.StatusText(status)),
	}
}
