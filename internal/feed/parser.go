package feed

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/bilgisen/autostudio/internal/models"
	"github.com/mmcdole/gofeed"
)

// Parser turns Google Trends RSS documents into trends
type Parser struct {
	htmlTagRegex *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
	}
}

// CleanHTML removes HTML tags and normalizes whitespace
func (p *Parser) CleanHTML(input string) string {
	// Remove HTML tags
	cleaned := p.htmlTagRegex.ReplaceAllString(input, " ")
	// Unescape HTML entities
	cleaned = html.UnescapeString(cleaned)
	// Normalize whitespace
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.TrimSpace(cleaned)
}

// ParseTrends parses a daily trends feed for region.
func (p *Parser) ParseTrends(body []byte, region string) ([]models.Trend, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse trends feed: %w", err)
	}

	trends := make([]models.Trend, 0, len(feed.Items))
	for _, it := range feed.Items {
		t := p.NormalizeTrend(models.Trend{
			Topic:        it.Title,
			Volume:       extensionValue(it, "ht", "approx_traffic"),
			Category:     "Daily Search",
			Rising:       true,
			SearchIntent: "Informational",
			TrendType:    models.TrendDaily,
			TimePeriod:   "24h",
			Region:       region,
		})
		if err := p.ValidateTrend(t); err != nil {
			continue
		}
		trends = append(trends, t)
	}
	return trends, nil
}

// NormalizeTrend cleans the free-text fields of a trend
func (p *Parser) NormalizeTrend(t models.Trend) models.Trend {
	t.Topic = p.CleanHTML(t.Topic)
	t.Volume = strings.TrimSpace(t.Volume)
	if t.Volume == "" {
		t.Volume = "N/A"
	}
	t.Region = strings.TrimSpace(t.Region)
	return t
}

// ValidateTrend checks if the trend has the required fields
func (p *Parser) ValidateTrend(t models.Trend) error {
	if t.Topic == "" {
		return fmt.Errorf("missing required field: topic")
	}
	return nil
}

func extensionValue(it *gofeed.Item, ns, name string) string {
	if it.Extensions == nil {
		return ""
	}
	values := it.Extensions[ns][name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}
