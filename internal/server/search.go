package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/internal/digest"
	"github.com/mohammad-safakhou/skimmer/models"
)

// Digester is the part of the orchestrator the HTTP layer needs.
type Digester interface {
	HandleResult(ctx context.Context, topic, depth string) (digest.Result, error)
	Lookup(ctx context.Context, topic, depth string) (models.CacheRecord, error)
}

type SearchHandler struct {
	Digest Digester
	// LenientDepth replaces an unknown depth with medium instead of
	// rejecting the request.
	LenientDepth bool
	Logger       *zap.Logger
}

type searchRequest struct {
	Topic string `json:"topic" query:"topic"`
	Depth string `json:"depth" query:"depth"`
}

type searchResponse struct {
	Topic     string    `json:"topic"`
	Depth     string    `json:"depth"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(rec models.CacheRecord) searchResponse {
	return searchResponse{Topic: rec.Topic, Depth: string(rec.Depth), Summary: rec.Summary, CreatedAt: rec.CreatedAt}
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.get)
}

func (h *SearchHandler) depth(raw string) string {
	if !h.LenientDepth {
		return raw
	}
	if _, err := models.ParseDepth(raw); err != nil {
		h.Logger.Info("unknown depth, using medium", zap.String("depth", raw))
		return string(models.DepthMedium)
	}
	return raw
}

// create answers from the cache (200) or runs the pipeline (201).
func (h *SearchHandler) create(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.Digest.HandleResult(c.Request().Context(), req.Topic, h.depth(req.Depth))
	if err != nil {
		return err
	}
	code := http.StatusCreated
	if res.Cached {
		code = http.StatusOK
	}
	return c.JSON(code, toResponse(res.Record))
}

// get never triggers a fetch.
func (h *SearchHandler) get(c echo.Context) error {
	topic, depth := c.QueryParam("topic"), c.QueryParam("depth")
	if topic == "" || depth == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic and depth are required")
	}
	rec, err := h.Digest.Lookup(c.Request().Context(), topic, h.depth(depth))
	if errors.Is(err, digest.ErrNotCached) {
		return echo.NewHTTPError(http.StatusNotFound, "No fresh cached record found.")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(rec))
}
