package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholarship_catalog/internal/catalog"
	"scholarship_catalog/internal/service"
)

const dateLayout = "2006-01-02"

// Browser is the read side the handlers need.
type Browser interface {
	List(ctx context.Context, q catalog.Query) ([]catalog.Listing, error)
	Get(ctx context.Context, ref string) (catalog.Listing, error)
	Outbound(ctx context.Context, ref string) (catalog.Listing, error)
	Dashboard(ctx context.Context, q catalog.DashboardQuery) (catalog.Dashboard, error)
	Regions() map[string][]string
}

type Handler struct {
	browser Browser
	loc     *time.Location
}

func NewHandler(browser Browser, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{browser: browser, loc: loc}
}

type applyResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	catalog.Resolution
}

// List handles GET /api/v1/scholarships.
func (h *Handler) List(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	listings, err := h.browser.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings, "count": len(listings)})
}

// Get handles GET /api/v1/scholarships/:ref.
func (h *Handler) Get(c *gin.Context) {
	listing, err := h.browser.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listing})
}

// Apply handles GET /api/v1/scholarships/:ref/apply.
func (h *Handler) Apply(c *gin.Context) {
	listing, err := h.browser.Outbound(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": applyResponse{
		ID:         listing.ID,
		Title:      listing.Title,
		Resolution: listing.Resolution,
	}})
}

// Analytics handles GET /api/v1/admin/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	granularity, err := catalog.ParseGranularity(c.Query("granularity"))
	if err != nil {
		badRequest(c, err)
		return
	}
	field, err := catalog.ParseDateField(c.Query("date_field"))
	if err != nil {
		badRequest(c, err)
		return
	}
	from, err := h.parseDate(c, "from")
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := h.parseDate(c, "to")
	if err != nil {
		badRequest(c, err)
		return
	}

	dash, err := h.browser.Dashboard(c.Request.Context(), catalog.DashboardQuery{
		Field:       field,
		Granularity: granularity,
		From:        from,
		To:          to,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dash})
}

// Regions handles GET /api/v1/regions.
func (h *Handler) Regions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.browser.Regions()})
}

func (h *Handler) parseQuery(c *gin.Context) (catalog.Query, error) {
	sortKey, err := catalog.ParseSortKey(c.Query("sort"))
	if err != nil {
		return catalog.Query{}, err
	}
	field, err := catalog.ParseDateField(c.Query("date_field"))
	if err != nil {
		return catalog.Query{}, err
	}
	from, err := h.parseDate(c, "date_from")
	if err != nil {
		return catalog.Query{}, err
	}
	to, err := h.parseDate(c, "date_to")
	if err != nil {
		return catalog.Query{}, err
	}

	region := c.Query("region")
	if region == "" && catalog.FilterType(c.Query("type")) == catalog.FilterRegion {
		region = c.Query("value")
	}

	return catalog.Query{
		Search: c.Query("q"),
		Sort:   sortKey,
		Filter: catalog.FilterSpec{
			Type:      catalog.FilterType(c.Query("type")),
			Value:     c.Query("value"),
			Region:    region,
			DateField: field,
			DateFrom:  from,
			DateTo:    to,
		},
	}, nil
}

func (h *Handler) parseDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuery):
		badRequest(c, err)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
