package studio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bilgisen/autostudio/internal/cache"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/state"
	"github.com/bilgisen/autostudio/internal/storage"
	"github.com/bilgisen/autostudio/internal/wordpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longContent = "Cold brew is steeped for hours in cold water, which keeps the acidity low and the body smooth."

type fakeEngine struct {
	trends      []models.Trend
	keywords    []models.Keyword
	suggestions []models.Suggestion
	draft       *models.ArticleDraft
	audit       *models.AuditResult
	image       string
	err         error

	keys []string
}

func (f *fakeEngine) FetchTrendingTopics(_ context.Context, _, _, _, apiKey string) ([]models.Trend, error) {
	f.keys = append(f.keys, apiKey)
	return f.trends, f.err
}

func (f *fakeEngine) FindKeywords(_ context.Context, _, _, _, apiKey string) ([]models.Keyword, error) {
	f.keys = append(f.keys, apiKey)
	return f.keywords, f.err
}

func (f *fakeEngine) FetchSmartSuggestions(_ context.Context, _, _, apiKey string) ([]models.Suggestion, error) {
	f.keys = append(f.keys, apiKey)
	return f.suggestions, f.err
}

func (f *fakeEngine) GenerateArticle(_ context.Context, _, _, apiKey string) (*models.ArticleDraft, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	d := *f.draft
	return &d, nil
}

func (f *fakeEngine) AuditAndRewrite(context.Context, string, string, []string, string) (*models.AuditResult, error) {
	a := *f.audit
	return &a, nil
}

func (f *fakeEngine) GenerateBlogImage(context.Context, string, string) (string, error) {
	return f.image, nil
}

func (f *fakeEngine) GenerateText(_ context.Context, prompt string) (string, error) {
	return "echo: " + prompt, f.err
}

type fakePublisher struct {
	url   string
	err   error
	calls int
}

func (f *fakePublisher) Publish(context.Context, *models.Article, models.WordPressConfig) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeImages struct {
	names []string
	err   error
}

func (f *fakeImages) StoreImage(_ context.Context, name, _ string) (string, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return "", f.err
	}
	return "https://media.example.com/images/" + name + ".png", nil
}

type harness struct {
	svc       *Service
	engine    *fakeEngine
	publisher *fakePublisher
	state     *state.AppState
	members   *members.Store
}

func newHarness(t *testing.T, images ImageStore) *harness {
	t.Helper()
	st := state.New(cache.NewMemoryStore())
	repo, err := storage.NewStorage(t.TempDir())
	require.NoError(t, err)

	engine := &fakeEngine{
		draft: &models.ArticleDraft{
			Title:    "Cold Brew at Home",
			SeoTitle: "Cold Brew Guide",
			Content:  longContent,
			Slug:     "cold-brew-at-home",
			Keywords: []string{"cold brew"},
		},
		audit: &models.AuditResult{Rewritten: longContent + " Rewritten.", SeoScore: 88, HumanScore: 91},
		image: "data:image/png;base64,AAAA",
	}
	pub := &fakePublisher{url: "https://blog.example.com/?p=7"}
	ms := members.NewStore(st, members.WithWriteDelay(0))

	return &harness{
		svc: New(Deps{
			Engine:    engine,
			Articles:  repo,
			Publisher: pub,
			Images:    images,
			Members:   ms,
			State:     st,
		}),
		engine:    engine,
		publisher: pub,
		state:     st,
		members:   ms,
	}
}

func (h *harness) admin(t *testing.T) *Session {
	t.Helper()
	sess, err := h.svc.Access(context.Background(), "admin123")
	require.NoError(t, err)
	return sess
}

func (h *harness) member(t *testing.T, name string) *Session {
	t.Helper()
	ctx := context.Background()
	m, err := h.members.Add(ctx, name, strings.ToLower(name)+"@example.com", models.RoleMember)
	require.NoError(t, err)
	sess, err := h.svc.Access(ctx, m.AccessKey)
	require.NoError(t, err)
	return sess
}

func lastLog(s *Service) LogEntry {
	return s.Logs().Entries()[0]
}

func TestAccessPrivateMode(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Access(ctx, "")
	assert.ErrorIs(t, err, members.ErrAccessDenied)

	_, err = h.svc.Access(ctx, "WRONG")
	assert.ErrorIs(t, err, members.ErrAccessDenied)

	sess := h.admin(t)
	assert.True(t, sess.IsAdmin())
}

func TestAccessPublicModeAdmitsAnonymous(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	cfg := h.state.SystemConfig()
	cfg.IsPrivateMode = false
	h.state.UpdateSystemConfig(ctx, cfg)

	sess, err := h.svc.Access(ctx, "WRONG")
	require.NoError(t, err)
	assert.Nil(t, sess.Member)
	assert.False(t, sess.IsAdmin())
}

func TestLoginLogsGreeting(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, "admin123", true)
	require.NoError(t, err)
	assert.Equal(t, "Magic Link detected. Welcome back, Master Admin!", lastLog(h.svc).Msg)

	_, err = h.svc.Login(ctx, "admin123", false)
	require.NoError(t, err)
	assert.Equal(t, "Access granted to Master Admin (Admin)", lastLog(h.svc).Msg)
}

func TestSetGeminiKey(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	sess := h.member(t, "Jane")

	var verr *members.ValidationError
	require.ErrorAs(t, h.svc.SetGeminiKey(ctx, sess, ""), &verr)
	assert.Equal(t, "Please enter a valid Gemini API Key.", verr.Message)

	require.NoError(t, h.svc.SetGeminiKey(ctx, sess, "AIza-jane"))
	assert.Equal(t, "AIza-jane", sess.APIKey)
	assert.Equal(t, "Gemini API Key updated successfully.", lastLog(h.svc).Msg)

	again, err := h.svc.Access(ctx, sess.Member.AccessKey)
	require.NoError(t, err)
	assert.Equal(t, "AIza-jane", again.APIKey)

	require.NoError(t, h.svc.SetGeminiKey(ctx, &Session{}, "AIza-anon"))
	assert.Equal(t, "Gemini API Key saved for this session.", lastLog(h.svc).Msg)
}

func TestSyncTrendsUsesDefaultNiche(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.engine.trends = []models.Trend{{Topic: "AI agents"}, {Topic: "Cold brew"}}
	cfg := h.state.SystemConfig()
	cfg.DefaultNiche = "Technology"
	h.state.UpdateSystemConfig(ctx, cfg)

	got, err := h.svc.SyncTrends(ctx, &Session{APIKey: "k1"}, TrendQuery{Country: "PK"})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"k1"}, h.engine.keys)
	entries := h.svc.Logs().Entries()
	assert.Equal(t, "Success: Found 2 breakout topics.", entries[0].Msg)
	assert.Equal(t, LogSuccess, entries[0].Type)
	assert.Equal(t, "Initiating Manual Scan: Technology | Pakistan | All categories", entries[1].Msg)
}

func TestSyncTrendsEmptyAndError(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.SyncTrends(ctx, nil, TrendQuery{Niche: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, "No trending topics found for this selection. Try broader parameters.", lastLog(h.svc).Msg)

	h.engine.err = errors.New("quota exhausted")
	_, err = h.svc.SyncTrends(ctx, nil, TrendQuery{Niche: "coffee"})
	require.Error(t, err)
	assert.Equal(t, LogEntry{Msg: "Sync Error: quota exhausted", Type: LogError, Time: lastLog(h.svc).Time}, lastLog(h.svc))
}

func TestResearchKeywordsRecordsUsage(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	sess := h.member(t, "Jane")
	h.engine.keywords = []models.Keyword{{Phrase: "cold brew ratio"}}

	got, err := h.svc.ResearchKeywords(ctx, sess, "cold brew", "", "")

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Success: Found 1 actionable keywords.", lastLog(h.svc).Msg)
	require.NotNil(t, sess.Member.Usage)
	assert.Equal(t, 1, sess.Member.Usage.Keywords)
}

func TestResearchKeywordsEmptySeed(t *testing.T) {
	h := newHarness(t, nil)

	got, err := h.svc.ResearchKeywords(context.Background(), nil, "  ", "", "")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, h.engine.keys)
}

func TestSuggest(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.suggestions = []models.Suggestion{{Topic: "A"}, {Topic: "B"}, {Topic: "C"}}

	got, err := h.svc.Suggest(context.Background(), nil, "Technology", "US")

	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "AI suggested 3 high-potential topics.", lastLog(h.svc).Msg)
}

func TestWriteArticlePipeline(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	sess := h.member(t, "Jane")

	a, err := h.svc.WriteArticle(ctx, sess, "cold brew", "Commercial")

	require.NoError(t, err)
	assert.Equal(t, "Cold Brew at Home", a.Title)
	assert.Equal(t, longContent+" Rewritten.", a.Content)
	assert.Equal(t, models.ArticleReady, a.Status)
	assert.True(t, a.SeoReady)
	assert.Equal(t, float64(91), a.HumanScore)
	assert.Equal(t, "data:image/png;base64,AAAA", a.ImageURL)
	assert.Equal(t, sess.Member.ID, a.OwnerID)
	assert.Equal(t, 1, sess.Member.Usage.Articles)
	assert.Equal(t, 1, sess.Member.Usage.Images)

	msgs := make([]string, 0)
	for _, e := range h.svc.Logs().Entries() {
		msgs = append(msgs, e.Msg)
	}
	assert.Equal(t, []string{
		"Success: Article generated and audited.",
		"Step 3/3: Generating professional featured image...",
		"Step 2/3: Running humanization and SEO audit...",
		"Step 1/3: Generating human-like draft...",
		`Engine: Starting generation for "cold brew"...`,
	}, msgs)

	stored, err := h.svc.GetArticle(ctx, sess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Content, stored.Content)
}

func TestWriteArticleDefaults(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.draft.Title = ""
	h.engine.draft.Slug = ""
	h.engine.audit = &models.AuditResult{SeoScore: 80}

	a, err := h.svc.WriteArticle(context.Background(), nil, "Cold Brew", "")

	require.NoError(t, err)
	assert.Equal(t, "Cold Brew", a.Title)
	assert.Equal(t, longContent, a.Content)
	assert.Equal(t, "cold-brew", a.Slug)
	assert.Equal(t, float64(95), a.HumanScore)
	assert.False(t, a.SeoReady)
}

func TestWriteArticleFailureLogged(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.err = errors.New("model overloaded")

	_, err := h.svc.WriteArticle(context.Background(), nil, "cold brew", "")

	require.Error(t, err)
	assert.Equal(t, "Failure: model overloaded", lastLog(h.svc).Msg)
	all, err := h.svc.ListArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWriteArticleOffloadsImage(t *testing.T) {
	images := &fakeImages{}
	h := newHarness(t, images)

	a, err := h.svc.WriteArticle(context.Background(), nil, "cold brew", "")

	require.NoError(t, err)
	require.Len(t, images.names, 1)
	assert.Equal(t, "cold-brew-at-home-"+a.ID[:8], images.names[0])
	assert.Equal(t, "https://media.example.com/images/"+images.names[0]+".png", a.ImageURL)
}

func TestWriteArticleKeepsInlineImageWhenOffloadFails(t *testing.T) {
	h := newHarness(t, &fakeImages{err: errors.New("bucket missing")})

	a, err := h.svc.WriteArticle(context.Background(), nil, "cold brew", "")

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", a.ImageURL)
}

func TestArticleVisibility(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	jane := h.member(t, "Jane")
	bob := h.member(t, "Bob")

	a, err := h.svc.WriteArticle(ctx, jane, "cold brew", "")
	require.NoError(t, err)

	_, err = h.svc.GetArticle(ctx, bob, a.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.ErrorIs(t, h.svc.DeleteArticle(ctx, bob, a.ID), ErrArticleNotFound)

	list, err := h.svc.ListArticles(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = h.svc.ListArticles(ctx, h.admin(t))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPublishRequiresConfig(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)

	_, err = h.svc.Publish(ctx, nil, a.ID)

	assert.ErrorIs(t, err, wordpress.ErrNotConfigured)
	assert.Equal(t, "WP Error: Configuration missing!", lastLog(h.svc).Msg)
	assert.Zero(t, h.publisher.calls)
}

func configureWordPress(h *harness) {
	h.state.UpdateWordPressConfig(context.Background(), models.WordPressConfig{
		URL: "https://blog.example.com", Username: "editor", AppPassword: "abcd efgh",
	})
}

func TestPublishMarksPublished(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	configureWordPress(h)
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)

	got, err := h.svc.Publish(ctx, nil, a.ID)

	require.NoError(t, err)
	assert.Equal(t, models.ArticlePublished, got.Status)
	assert.Equal(t, "https://blog.example.com/?p=7", got.PublishedURL)
	assert.Equal(t, "Success: Post live at https://blog.example.com/?p=7", lastLog(h.svc).Msg)
}

func TestPublishScheduledStaysReady(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	configureWordPress(h)
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)
	a.ScheduledAt = "2026-11-01T09:30:00"
	_, err = h.svc.UpdateArticle(ctx, nil, a)
	require.NoError(t, err)

	got, err := h.svc.Publish(ctx, nil, a.ID)

	require.NoError(t, err)
	assert.Equal(t, models.ArticleReady, got.Status)
	assert.Equal(t, "https://blog.example.com/?p=7", got.PublishedURL)
	assert.Equal(t, "Success: Post scheduled for Nov 1, 2026 09:30", lastLog(h.svc).Msg)
}

func TestPublishErrorLogged(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	configureWordPress(h)
	h.publisher.err = &wordpress.PublishError{StatusCode: 401, Message: "Sorry, you are not allowed to create posts."}
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)

	_, err = h.svc.Publish(ctx, nil, a.ID)

	require.Error(t, err)
	assert.Equal(t, "WP Error: Sorry, you are not allowed to create posts.", lastLog(h.svc).Msg)
	stored, err := h.svc.GetArticle(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleReady, stored.Status)
}

func TestPublishUnreachableLogsOnlyMessage(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	configureWordPress(h)
	h.publisher.err = &wordpress.PublishError{
		Message: "WordPress Connection Failed: Could not reach your site. Check the URL and try again.",
		Err:     errors.New("dial tcp 10.0.0.1:443: connect: connection refused"),
	}
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)

	_, err = h.svc.Publish(ctx, nil, a.ID)

	require.Error(t, err)
	msg := lastLog(h.svc).Msg
	assert.Equal(t, "WP Error: WordPress Connection Failed: Could not reach your site. Check the URL and try again.", msg)
	assert.NotContains(t, msg, "dial tcp")
}

func TestUpdateArticleKeepsIdentity(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	jane := h.member(t, "Jane")
	a, err := h.svc.WriteArticle(ctx, jane, "cold brew", "")
	require.NoError(t, err)

	edit := *a
	edit.Title = "Edited"
	edit.CreatedAt = a.CreatedAt.AddDate(-1, 0, 0)
	edit.OwnerID = "someone-else"
	edit.Status = ""

	got, err := h.svc.UpdateArticle(ctx, jane, &edit)

	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, jane.Member.ID, got.OwnerID)
	assert.Equal(t, models.ArticleReady, got.Status)

	edit.Status = "archived"
	_, err = h.svc.UpdateArticle(ctx, jane, &edit)
	assert.Error(t, err)
}

func TestDeleteArticle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	a, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteArticle(ctx, nil, a.ID))
	assert.Equal(t, "Cleanup: Draft deleted.", lastLog(h.svc).Msg)
	assert.ErrorIs(t, h.svc.DeleteArticle(ctx, nil, a.ID), ErrArticleNotFound)
}

func TestResetClearsEverything(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	configureWordPress(h)
	_, err := h.svc.WriteArticle(ctx, nil, "cold brew", "")
	require.NoError(t, err)
	h.member(t, "Jane")

	require.NoError(t, h.svc.Reset(ctx))

	all, err := h.svc.ListArticles(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, h.svc.Logs().Entries())
	assert.False(t, h.state.WordPressConfig().Configured())
	assert.Len(t, h.members.List(ctx), 1)
}

func TestDailyTrendsWithoutFeed(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.DailyTrends(context.Background(), "US")
	assert.Error(t, err)
}

func TestGenerateText(t *testing.T) {
	h := newHarness(t, nil)
	got, err := h.svc.GenerateText(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", got)
}
