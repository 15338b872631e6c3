package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilgisen/autostudio/internal/models"
)

// TrendQuery selects a trend scan.
type TrendQuery struct {
	Niche    string `json:"niche" query:"niche"`
	Country  string `json:"country" query:"country"`
	Category string `json:"category" query:"category"`
}

func (s *Service) withDefaults(q TrendQuery) TrendQuery {
	if q.Niche == "" {
		q.Niche = s.state.SystemConfig().DefaultNiche
	}
	if q.Country == "" {
		q.Country = "GLOBAL"
	}
	if q.Category == "" {
		q.Category = "All categories"
	}
	return q
}

// SyncTrends discovers breakout topics.
func (s *Service) SyncTrends(ctx context.Context, sess *Session, q TrendQuery) ([]models.Trend, error) {
	q = s.withDefaults(q)
	s.logs.Info(fmt.Sprintf("Initiating Manual Scan: %s | %s | %s", q.Niche, models.CountryName(q.Country), q.Category))

	trends, err := s.engine.FetchTrendingTopics(ctx, q.Niche, q.Country, q.Category, apiKey(sess))
	if err != nil {
		s.logs.Error("Sync Error: " + err.Error())
		return nil, err
	}
	if len(trends) > 0 {
		s.logs.Success(fmt.Sprintf("Success: Found %d breakout topics.", len(trends)))
	} else {
		s.logs.Info("No trending topics found for this selection. Try broader parameters.")
	}
	return trends, nil
}

// ResearchKeywords expands a seed keyword and counts one keywords use.
func (s *Service) ResearchKeywords(ctx context.Context, sess *Session, seed, startDate, endDate string) ([]models.Keyword, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return []models.Keyword{}, nil
	}

	msg := fmt.Sprintf("Keyword Research: Analyzing %q", seed)
	if startDate != "" {
		msg += " from " + startDate
	}
	if endDate != "" {
		msg += " to " + endDate
	}
	s.logs.Info(msg + "...")
	s.logs.Info("Engine: Connecting to search breakouts (this may take up to 60 seconds)...")

	keywords, err := s.engine.FindKeywords(ctx, seed, startDate, endDate, apiKey(sess))
	if err != nil {
		s.logs.Error("Error: " + err.Error())
		return nil, err
	}
	if len(keywords) > 0 {
		s.logs.Success(fmt.Sprintf("Success: Found %d actionable keywords.", len(keywords)))
	} else {
		s.logs.Info("Notice: No keywords found for this topic. Try a broader term.")
	}
	s.recordUsage(ctx, sess, models.UsageKeywords)
	return keywords, nil
}

// Suggest proposes rising low-competition topics for a category.
func (s *Service) Suggest(ctx context.Context, sess *Session, category, country string) ([]models.Suggestion, error) {
	q := s.withDefaults(TrendQuery{Niche: category, Country: country})
	s.logs.Info(fmt.Sprintf("AI Engine: Fetching rising low-competition topics for %q in %s...", q.Niche, models.CountryName(q.Country)))

	suggestions, err := s.engine.FetchSmartSuggestions(ctx, q.Niche, q.Country, apiKey(sess))
	if err != nil {
		s.logs.Error("Suggestion Error: " + err.Error())
		return nil, err
	}
	s.logs.Success(fmt.Sprintf("AI suggested %d high-potential topics.", len(suggestions)))
	return suggestions, nil
}

// DailyTrends lists today's trending searches from the public feed.
func (s *Service) DailyTrends(ctx context.Context, geo string) ([]models.Trend, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("daily trends feed is not configured")
	}
	return s.feed.DailyTrends(ctx, geo)
}

func apiKey(sess *Session) string {
	if sess == nil {
		return ""
	}
	return sess.APIKey
}
