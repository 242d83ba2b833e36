package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/internal/service"
)

// SearchHandler handles listing search HTTP requests
type SearchHandler struct {
	service service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service service.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /listings
func (h *SearchHandler) Search(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	items, meta, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		common.ServiceErrorResponse(c, "Search failed", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: items, Meta: meta})
}

// Featured handles GET /listings/featured
func (h *SearchHandler) Featured(c *gin.Context) {
	items, err := h.service.Featured(c.Request.Context())
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch featured listings", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: items})
}

// parseSearchParams maps query parameters to search criteria.
// Malformed dates are dropped silently so a broken date picker still
// returns results; malformed numerics are a hard 400.
func parseSearchParams(c *gin.Context) (*repository.SearchParams, error) {
	params := &repository.SearchParams{
		Location: strings.TrimSpace(c.Query("location")),
	}

	if v := c.Query("lease_start"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.LeaseStart = &t
		}
	}
	if v := c.Query("lease_end"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.LeaseEnd = &t
		}
	}

	if v := c.Query("duration"); v != "" {
		d := domain.DurationType(v)
		params.Duration = &d
	}

	if v := c.Query("beds"); v != "" {
		beds, err := strconv.Atoi(v)
		if err != nil || beds < 0 {
			return nil, &queryError{"beds must be a non-negative integer"}
		}
		params.Beds = &beds
		params.BedsAtLeast = c.Query("beds_mode") == "at_least"
	}

	if v := c.Query("min_rent"); v != "" {
		rent, err := strconv.ParseFloat(v, 64)
		if err != nil || rent < 0 {
			return nil, &queryError{"min_rent must be a non-negative number"}
		}
		params.MinRent = &rent
	}
	if v := c.Query("max_rent"); v != "" {
		rent, err := strconv.ParseFloat(v, 64)
		if err != nil || rent < 0 {
			return nil, &queryError{"max_rent must be a non-negative number"}
		}
		params.MaxRent = &rent
	}

	if v := c.Query("listing_type"); v != "" {
		if v != string(domain.ListingTypeFull) && v != string(domain.ListingTypeRoom) {
			return nil, &queryError{"listing_type must be full or room"}
		}
		t := domain.ListingType(v)
		params.ListingType = &t
	}

	switch c.Query("sort") {
	case "", "newest":
		params.Sort = repository.SortNewest
	case "price_low":
		params.Sort = repository.SortPriceLow
	case "price_high":
		params.Sort = repository.SortPriceHigh
	default:
		return nil, &queryError{"sort must be newest, price_low or price_high"}
	}

	params.Page, params.Limit = pageParams(c)
	return params, nil
}

type queryError struct {
	msg string
}

func (e *queryError) Error() string {
	return e.msg
}
