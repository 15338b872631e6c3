package api

import (
	"fmt"

	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/bilgisen/autostudio/internal/scheduler"
	"github.com/bilgisen/autostudio/internal/studio"
	"github.com/gofiber/fiber/v2"
)

type trendsQuery struct {
	Niche    string `query:"niche" validate:"max=200"`
	Country  string `query:"country" validate:"max=10"`
	Category string `query:"category" validate:"max=100"`
}

// GetTrends handles GET /api/v1/trends
func (h *Handlers) GetTrends(c *fiber.Ctx) error {
	q := middleware.Query[trendsQuery](c)

	trends, err := h.studio.SyncTrends(c.UserContext(), middleware.SessionFrom(c), studio.TrendQuery(*q))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trends)
}

type dailyQuery struct {
	Geo string `query:"geo" validate:"omitempty,len=2|eq=GLOBAL"`
}

// GetDailyTrends handles GET /api/v1/trends/daily
func (h *Handlers) GetDailyTrends(c *fiber.Ctx) error {
	q := middleware.Query[dailyQuery](c)

	trends, err := h.studio.DailyTrends(c.UserContext(), q.Geo)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Daily trends are unavailable right now",
		})
	}
	return c.JSON(trends)
}

// GetLatestTrends handles GET /api/v1/trends/latest
func (h *Handlers) GetLatestTrends(c *fiber.Ctx) error {
	return c.JSON(h.refresh.Latest())
}

type autoRefreshRequest struct {
	Enabled  *bool  `json:"enabled" validate:"required"`
	Niche    string `json:"niche" validate:"max=200"`
	Country  string `json:"country" validate:"max=10"`
	Category string `json:"category" validate:"max=100"`
}

// SetAutoRefresh handles POST /api/v1/trends/auto-refresh
func (h *Handlers) SetAutoRefresh(c *fiber.Ctx) error {
	req := middleware.Body[autoRefreshRequest](c)

	if !*req.Enabled {
		h.refresh.Disable()
		h.studio.Logs().Info("Auto-refresh disabled.")
		return c.JSON(h.refresh.Latest())
	}

	p := scheduler.Params{
		Niche:    req.Niche,
		Country:  req.Country,
		Category: req.Category,
		APIKey:   middleware.SessionFrom(c).APIKey,
	}
	if err := h.refresh.Enable(p); err != nil {
		return fail(c, err)
	}
	snap := h.refresh.Latest()
	h.studio.Logs().Info(fmt.Sprintf("Auto-refresh enabled: trends sync every %s.", snap.Interval))
	return c.JSON(snap)
}

type keywordsRequest struct {
	Seed      string `json:"seed" validate:"required,max=200"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ResearchKeywords handles POST /api/v1/keywords
func (h *Handlers) ResearchKeywords(c *fiber.Ctx) error {
	req := middleware.Body[keywordsRequest](c)

	keywords, err := h.studio.ResearchKeywords(c.UserContext(), middleware.SessionFrom(c), req.Seed, req.StartDate, req.EndDate)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(keywords)
}

type suggestionsQuery struct {
	Category string `query:"category" validate:"max=100"`
	Country  string `query:"country" validate:"max=10"`
}

// GetSuggestions handles GET /api/v1/suggestions
func (h *Handlers) GetSuggestions(c *fiber.Ctx) error {
	q := middleware.Query[suggestionsQuery](c)

	suggestions, err := h.studio.Suggest(c.UserContext(), middleware.SessionFrom(c), q.Category, q.Country)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(suggestions)
}
