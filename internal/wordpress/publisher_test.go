package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bilgisen/autostudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticle() *models.Article {
	return &models.Article{
		ID:              "a1",
		Title:           "Cold Brew Guide",
		FocusKeyword:    "cold brew",
		Content:         "# Cold Brew\n\nSteep **coarse** grounds.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
		Slug:            "cold-brew-guide",
		MetaDescription: "Learn cold brew.",
		Status:          models.ArticleReady,
	}
}

func TestPublishPayloadAndLink(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "abcd efgh", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"link":"https://blog.example.com/cold-brew-guide/"}`))
	}))
	defer srv.Close()

	p := NewPublisher(5 * time.Second)
	link, err := p.Publish(context.Background(), testArticle(), models.WordPressConfig{
		URL: srv.URL + "/", Username: "editor", AppPassword: "abcd efgh",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com/cold-brew-guide/", link)
	assert.Equal(t, "publish", got["status"])
	assert.Equal(t, "standard", got["format"])
	assert.Equal(t, "Learn cold brew.", got["excerpt"])
	assert.NotContains(t, got, "date")
	assert.Contains(t, got["content"], "<h1>Cold Brew</h1>")
	assert.Contains(t, got["content"], "<strong>coarse</strong>")
	assert.Contains(t, got["content"], "<table>")
	assert.Equal(t, map[string]interface{}{
		"_yoast_wpseo_focuskw":  "cold brew",
		"_yoast_wpseo_metadesc": "Learn cold brew.",
		"_yoast_wpseo_title":    "Cold Brew Guide",
	}, got["meta"])
}

func TestPublishScheduled(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"link":"https://blog.example.com/?p=1"}`))
	}))
	defer srv.Close()

	a := testArticle()
	a.ScheduledAt = "2026-12-01T09:00:00"
	a.SeoTitle = "Cold Brew | Blog"

	_, err := NewPublisher(0).Publish(context.Background(), a, models.WordPressConfig{URL: srv.URL, Username: "u", AppPassword: "p"})

	require.NoError(t, err)
	assert.Equal(t, "future", got["status"])
	assert.Equal(t, "2026-12-01T09:00:00", got["date"])
	assert.Equal(t, "Cold Brew | Blog", got["meta"].(map[string]interface{})["_yoast_wpseo_title"])
}

func TestPublishErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, "Unauthorized", "WordPress Authentication Failed: Check your Application Password and Username."},
		{"forbidden", http.StatusForbidden, "", "WordPress Permission Denied: Your user might not have permission to post."},
		{"not found", http.StatusNotFound, "<html>nope</html>", "WordPress API Not Found: Ensure the URL is correct and REST API is enabled."},
		{"server error", http.StatusInternalServerError, "", "WordPress Server Error: Something went wrong on your website."},
		{"other status", http.StatusBadGateway, "", "WordPress Error (502): Bad Gateway"},
		{"body message", http.StatusBadRequest, `{"code":"rest_invalid_param","message":"Invalid parameter(s): date"}`, "Invalid parameter(s): date"},
		{"body message wins", http.StatusUnauthorized, `{"code":"rest_cannot_create","message":"Sorry, you are not allowed to create posts as this user."}`, "Sorry, you are not allowed to create posts as this user."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewPublisher(time.Second).Publish(context.Background(), testArticle(), models.WordPressConfig{URL: srv.URL, Username: "u", AppPassword: "p"})

			var perr *PublishError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.status, perr.StatusCode)
			assert.Equal(t, tc.want, perr.Error())
		})
	}
}

func TestPublishUnauthorizedMentionsAuthentication(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewPublisher(time.Second).Publish(context.Background(), testArticle(), models.WordPressConfig{URL: srv.URL, Username: "u", AppPassword: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication Failed")
}

func TestPublishUnreachableSite(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPublisher(time.Second).Publish(context.Background(), testArticle(), models.WordPressConfig{URL: url, Username: "u", AppPassword: "p"})

	var perr *PublishError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Unreachable())
	assert.Zero(t, perr.StatusCode)
	assert.Equal(t, unreachableMessage, perr.Error())
	assert.NotContains(t, perr.Error(), "127.0.0.1")
	assert.Error(t, errors.Unwrap(err))
}

func TestPublishCanceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPublisher(time.Second).Publish(ctx, testArticle(), models.WordPressConfig{URL: srv.URL, Username: "u", AppPassword: "p"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishNotConfigured(t *testing.T) {
	_, err := NewPublisher(time.Second).Publish(context.Background(), testArticle(), models.WordPressConfig{URL: "https://x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRenderHTMLSanitizes(t *testing.T) {
	html, err := NewPublisher(0).RenderHTML("Hello [link](javascript:alert(1)) and <script>alert(2)</script>\n\n- item")
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<li>item</li>")
}
