package feed

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/utils"
)

// Processor builds the daily trends list from the public trends feed.
type Processor struct {
	fetcher *Fetcher
	parser  *Parser
	feedURL string
}

func NewProcessor(feedURL string) *Processor {
	return &Processor{
		fetcher: NewFetcher(),
		parser:  NewParser(),
		feedURL: feedURL,
	}
}

// DailyTrends returns today's trending searches for geo, highest traffic
// first. GLOBAL (or empty) merges every listed country.
func (p *Processor) DailyTrends(ctx context.Context, geo string) ([]models.Trend, error) {
	log := logger.Get()
	start := time.Now()

	geos := regions(geo)
	urls := make([]string, len(geos))
	for i, g := range geos {
		urls[i] = p.feedURLFor(g)
	}

	results, err := p.fetcher.FetchMultipleFeeds(ctx, urls)
	if err != nil {
		log.Warn().
			Err(err).
			Str("geo", geo).
			Msg("Some trend feeds failed")
	}

	var all []models.Trend
	var parsed int
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		trends, perr := p.parser.ParseTrends(res.Body, geos[i])
		if perr != nil {
			log.Warn().
				Err(perr).
				Str("url", res.URL).
				Msg("Skipping unparseable trend feed")
			continue
		}
		parsed++
		all = append(all, trends...)
	}

	if parsed == 0 {
		if err == nil {
			err = fmt.Errorf("no trend feed could be parsed")
		}
		return nil, fmt.Errorf("error fetching daily trends: %w", err)
	}

	unique := dedupe(all)
	sort.SliceStable(unique, func(i, j int) bool {
		return parseTraffic(unique[i].Volume) > parseTraffic(unique[j].Volume)
	})

	log.Info().
		Str("geo", geo).
		Int("feeds", parsed).
		Int("trends", len(unique)).
		Dur("duration", time.Since(start)).
		Msg("Fetched daily trends")

	return unique, nil
}

func (p *Processor) feedURLFor(geo string) string {
	u, err := url.Parse(p.feedURL)
	if err != nil {
		return p.feedURL + "?geo=" + url.QueryEscape(geo)
	}
	q := u.Query()
	q.Set("geo", geo)
	u.RawQuery = q.Encode()
	return u.String()
}

func regions(geo string) []string {
	geo = strings.ToUpper(strings.TrimSpace(geo))
	if geo != "" && geo != "GLOBAL" {
		return []string{geo}
	}
	var out []string
	for _, c := range models.Countries {
		if c.Code != "GLOBAL" {
			out = append(out, c.Code)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each topic, compared case-insensitively
func dedupe(trends []models.Trend) []models.Trend {
	seen := make(map[string]bool, len(trends))
	out := make([]models.Trend, 0, len(trends))
	for _, t := range trends {
		h := utils.Hash(strings.ToLower(t.Topic))
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, t)
	}
	return out
}

// parseTraffic reads approximate traffic strings like "2,000+", "20K+" or
// "1M+". Unknown values sort last.
func parseTraffic(v string) int64 {
	s := strings.ToUpper(strings.TrimSpace(v))
	s = strings.TrimSuffix(s, "+")
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		mult, s = 1e3, strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult, s = 1e6, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "B"):
		mult, s = 1e9, strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return int64(n * mult)
}
