package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/phenobase/phenobase/internal/platform/cache"
	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
	"github.com/phenobase/phenobase/pkg/pagination"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 25
)

type Handler struct {
	orch  *Orchestrator
	cache *cache.TTL
}

func NewHandler(orch *Orchestrator, c *cache.TTL) *Handler {
	return &Handler{orch: orch, cache: c}
}

// RegisterRoutes mounts the search endpoints. Scoped routes are registered
// per entity kind under a literal path segment, so /variants/search never
// collides with /variants/:id.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/search/autocomplete", h.Autocomplete)
	g.GET("/search/global", h.Global)
	for _, kind := range h.orch.Kinds() {
		kind := kind
		g.GET("/"+kind+"/search", func(c echo.Context) error {
			return h.Scoped(c, kind)
		})
		g.GET("/"+kind+"/search/facets", func(c echo.Context) error {
			return h.Facets(c, kind)
		})
	}
}

func (h *Handler) Autocomplete(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}
	suggestions := h.orch.Autocomplete(c.QueryParam("q"), limit)
	return c.JSON(http.StatusOK, map[string]interface{}{"results": suggestions})
}

func (h *Handler) Global(c echo.Context) error {
	key := c.Request().URL.RequestURI()
	if payload, ok := h.cache.Get(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	res, err := h.orch.GlobalSearch(c.QueryParam("q"), c.QueryParam("type"), pagination.FromContext(c))
	if err != nil {
		return searchError(c, err)
	}
	return h.cacheJSON(c, key, res)
}

func (h *Handler) Scoped(c echo.Context, kind string) error {
	page, err := h.orch.ScopedSearch(c.Request().Context(), kind, c.QueryParam("q"),
		c.QueryParams(), pagination.CursorFromContext(c))
	if err != nil {
		return searchError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Facets(c echo.Context, kind string) error {
	key := c.Request().URL.RequestURI()
	if payload, ok := h.cache.Get(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	facets, err := h.orch.Facets(c.Request().Context(), kind, c.QueryParams())
	if err != nil {
		return searchError(c, err)
	}
	return h.cacheJSON(c, key, facets)
}

func (h *Handler) cacheJSON(c echo.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.cache.Set(key, payload)
	return c.JSONBlob(http.StatusOK, payload)
}

// searchError translates engine errors into HTTP responses. Validation and
// cursor problems are the caller's fault and name the offending parameter;
// timeouts and a missing index are retryable service conditions and carry a
// Retry-After hint.
func searchError(c echo.Context, err error) error {
	var ve *search.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"param":  ve.Param,
			"reason": ve.Reason,
		})
	}
	var ce *search.InvalidCursorError
	if errors.As(err, &ce) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"param":  "cursor",
			"reason": ce.Reason,
		})
	}
	var te *search.QueryTimeoutError
	if errors.As(err, &te) {
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]interface{}{
			"reason":    te.Error(),
			"retryable": true,
		})
	}
	if errors.Is(err, index.ErrUnavailable) {
		c.Response().Header().Set("Retry-After", "5")
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]interface{}{
			"reason":    "search index is not ready",
			"retryable": true,
		})
	}
	return err
}
