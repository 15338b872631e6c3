package ai

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	req Request
	at  time.Time
}

// scriptedProvider replays responses per model in order.
type scriptedProvider struct {
	mu      sync.Mutex
	calls   []call
	replies map[string][]func(ctx context.Context) (*Response, error)
}

func newScripted() *scriptedProvider {
	return &scriptedProvider{replies: make(map[string][]func(ctx context.Context) (*Response, error))}
}

func (s *scriptedProvider) on(model string, fns ...func(ctx context.Context) (*Response, error)) {
	s.replies[model] = append(s.replies[model], fns...)
}

func (s *scriptedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{req: req, at: time.Now()})
	queue := s.replies[req.Model]
	if len(queue) == 0 {
		s.mu.Unlock()
		return nil, errors.New("unexpected call to " + req.Model)
	}
	fn := queue[0]
	s.replies[req.Model] = queue[1:]
	s.mu.Unlock()
	return fn(ctx)
}

func (s *scriptedProvider) callsTo(model string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.req.Model == model {
			n++
		}
	}
	return n
}

func text(t string) func(context.Context) (*Response, error) {
	return func(context.Context) (*Response, error) { return &Response{Text: t}, nil }
}

func fail(err error) func(context.Context) (*Response, error) {
	return func(context.Context) (*Response, error) { return nil, err }
}

func hang(ctx context.Context) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var testModels = Models{
	Search:   "search",
	Fallback: "fallback",
	Fast:     "fast",
	Pro:      "pro",
	Image:    "image",
	Proxy:    "proxy",
}

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestOrchestrator(p Provider, policy Policy, rec *sleepRecorder) *Orchestrator {
	return NewOrchestrator(p, testModels, policy, WithSleep(rec.sleep))
}

const trendsJSON = `[{"topic":"AI agents","volume":"200K+","category":"Technology","rising":true,"searchIntent":"Informational","trendType":"Breakout","timePeriod":"24h","region":"US","competition":"Low"}]`

func TestSearchSuccessSkipsFallback(t *testing.T) {
	p := newScripted()
	p.on("search", text("```json\n"+trendsJSON+"\n```"))
	rec := &sleepRecorder{}

	trends, err := newTestOrchestrator(p, DefaultPolicy(), rec).FetchTrendingTopics(context.Background(), "tech", "US", "Technology", "")

	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "AI agents", trends[0].Topic)
	assert.Equal(t, 0, p.callsTo("fallback"))
	assert.Empty(t, rec.waits)
	assert.True(t, p.calls[0].req.Search)
	assert.NotNil(t, p.calls[0].req.Schema)
}

func TestMalformedOrEmptyPrimaryInvokesFallbackOnce(t *testing.T) {
	cases := map[string]func(context.Context) (*Response, error){
		"malformed": text("{not json"),
		"empty":     text("[]"),
		"no text":   text(""),
		"error":     fail(errors.New("boom")),
	}
	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			p := newScripted()
			p.on("search", primary)
			p.on("fallback", text(trendsJSON))
			rec := &sleepRecorder{}

			trends, err := newTestOrchestrator(p, DefaultPolicy(), rec).FetchTrendingTopics(context.Background(), "tech", "GLOBAL", "All categories", "")

			require.NoError(t, err)
			assert.Len(t, trends, 1)
			assert.Equal(t, 1, p.callsTo("search"))
			assert.Equal(t, 1, p.callsTo("fallback"))
			assert.Equal(t, []time.Duration{1500 * time.Millisecond}, rec.waits)
			assert.False(t, p.calls[1].req.Search)
			assert.Contains(t, p.calls[1].req.Prompt, "worldwide")
		})
	}
}

func TestFallbackAttemptedAtMostThreeTimes(t *testing.T) {
	p := newScripted()
	p.on("search", fail(errors.New("search down")))
	for i := 0; i < 5; i++ {
		p.on("fallback", fail(errors.New("quota exceeded for project")))
	}
	rec := &sleepRecorder{}

	_, err := newTestOrchestrator(p, DefaultPolicy(), rec).FindKeywords(context.Background(), "coffee", "", "", "")

	require.Error(t, err)
	assert.Equal(t, 3, p.callsTo("fallback"))
	assert.Len(t, rec.waits, 3)

	var aiErr *Error
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, KindRateLimit, aiErr.Kind)
	assert.Contains(t, err.Error(), "Rate limit exceeded")
}

func TestFallbackSucceedsOnRetry(t *testing.T) {
	p := newScripted()
	p.on("search", text("[]"))
	p.on("fallback", text("garbage"), text(`[{"phrase":"cold brew","volume":"1.2K","competition":"Low","intent":"Commercial","type":"Seed"}]`))
	rec := &sleepRecorder{}

	kws, err := newTestOrchestrator(p, DefaultPolicy(), rec).FindKeywords(context.Background(), "coffee", "2026-01-01", "2026-02-01", "")

	require.NoError(t, err)
	require.Len(t, kws, 1)
	assert.Equal(t, "cold brew", kws[0].Phrase)
	assert.Equal(t, 2, p.callsTo("fallback"))
	assert.Contains(t, p.calls[0].req.Prompt, "from 2026-01-01 to 2026-02-01")
}

func TestFallbackEmptyResultIsNotAnError(t *testing.T) {
	p := newScripted()
	p.on("search", text("[]"))
	p.on("fallback", text(""))

	out, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).FetchSmartSuggestions(context.Background(), "Health", "US", "")

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestPrimaryTimeoutProceedsToFallback(t *testing.T) {
	p := newScripted()
	p.on("search", hang)
	p.on("fallback", text(trendsJSON))
	rec := &sleepRecorder{}
	policy := Policy{SearchTimeout: 50 * time.Millisecond, FallbackBackoff: 1500 * time.Millisecond, FallbackRetries: 2}

	start := time.Now()
	trends, err := newTestOrchestrator(p, policy, rec).FetchTrendingTopics(context.Background(), "tech", "US", "Technology", "")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, trends, 1)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, rec.waits)
}

func TestAPIKeyOverridePassedThrough(t *testing.T) {
	p := newScripted()
	p.on("search", text(trendsJSON))

	_, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).FetchTrendingTopics(context.Background(), "x", "US", "News", "member-key")
	require.NoError(t, err)
	assert.Equal(t, "member-key", p.calls[0].req.APIKey)
}

const draftJSON = `{"title":"Cold Brew Guide","seoTitle":"Cold Brew","focusKeyword":"cold brew","content":"# Cold Brew\\n\\nCold brew is coffee steeped in cold water for a long time, and it tastes smooth.","metaDescription":"Learn cold brew.","slug":"","keywords":["cold brew"]}`

func TestGenerateArticleFastSucceeds(t *testing.T) {
	p := newScripted()
	p.on("fast", text(draftJSON))

	d, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).GenerateArticle(context.Background(), "cold brew", "", "")

	require.NoError(t, err)
	assert.Equal(t, "Cold Brew Guide", d.Title)
	assert.True(t, strings.HasPrefix(d.Content, "# Cold Brew\n\n"))
	assert.Equal(t, "cold-brew-guide", d.Slug)
	assert.Equal(t, 0, p.callsTo("pro"))
}

func TestGenerateArticleFallsBackToProOnce(t *testing.T) {
	p := newScripted()
	p.on("fast", text("not json"))
	p.on("pro", text(draftJSON))

	d, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).GenerateArticle(context.Background(), "cold brew", "Commercial", "")

	require.NoError(t, err)
	assert.Equal(t, "Cold Brew Guide", d.Title)
	assert.Contains(t, p.calls[0].req.Prompt, "Intent: Commercial.")
}

func TestGenerateArticleNoFurtherRetries(t *testing.T) {
	p := newScripted()
	p.on("fast", fail(&APIError{StatusCode: 401, Status: "UNAUTHENTICATED", Message: "bad key"}))
	p.on("pro", fail(&APIError{StatusCode: 401, Status: "UNAUTHENTICATED", Message: "bad key"}))

	_, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).GenerateArticle(context.Background(), "x", "", "")

	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, 1, p.callsTo("fast"))
	assert.Equal(t, 1, p.callsTo("pro"))
}

func TestAuditSimilarityFloor(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{9.9, 0},
		{10.0, 10.0},
		{0, 0},
		{42.5, 42.5},
	}
	for _, tc := range cases {
		p := newScripted()
		p.on("fast", text(`{"rewritten":"Line one\\nLine two","similarity":`+formatFloat(tc.in)+`,"humanScore":97,"seoScore":88,"seoRecommendations":["Add alt text"]}`))

		res, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).AuditAndRewrite(context.Background(), "content", "title", []string{"a", "b"}, "")

		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Similarity, "input %v", tc.in)
		assert.Equal(t, "Line one\nLine two", res.Rewritten)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestAuditSingleAttempt(t *testing.T) {
	p := newScripted()
	p.on("fast", fail(errors.New("candidate was blocked due to SAFETY")))

	_, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).AuditAndRewrite(context.Background(), "c", "t", nil, "")

	require.Error(t, err)
	assert.Equal(t, KindSafety, KindOf(err))
	assert.Equal(t, 1, len(p.calls))
}

func TestAuditEmptyTextUsesDefaults(t *testing.T) {
	p := newScripted()
	p.on("fast", text(""))

	res, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).AuditAndRewrite(context.Background(), "c", "t", nil, "")

	require.NoError(t, err)
	assert.Equal(t, float64(100), res.HumanScore)
	assert.Equal(t, float64(85), res.SeoScore)
	assert.NotNil(t, res.SeoRecommendations)
}

func TestGenerateBlogImage(t *testing.T) {
	p := newScripted()
	p.on("image", func(context.Context) (*Response, error) {
		return &Response{Text: "here you go", Images: []InlineData{{MIMEType: "image/png", Data: "QUJD"}, {Data: "REVG"}}}, nil
	})
	p.on("image", text("sorry, no image"))
	o := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{})

	uri, err := o.GenerateBlogImage(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QUJD", uri)
	assert.Equal(t, "16:9", p.calls[0].req.AspectRatio)

	uri, err = o.GenerateBlogImage(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestGenerateTextUsesProxyModel(t *testing.T) {
	p := newScripted()
	p.on("proxy", text("hello"))

	out, err := newTestOrchestrator(p, DefaultPolicy(), &sleepRecorder{}).GenerateText(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Nil(t, p.calls[0].req.Schema)
}
