package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/internal/service"
)

// ListingHandler handles listing HTTP requests
type ListingHandler struct {
	service service.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service service.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Create handles POST /listings
func (h *ListingHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req domain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to create listing", err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: listing})
}

// Get handles GET /listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	listing, err := h.service.Get(c.Request.Context(), middleware.GetUserID(c), listingID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch listing", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: listing})
}

// Update handles PUT /listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.Update(c.Request.Context(), userID, listingID, &req)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to update listing", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: listing})
}

// Delete handles DELETE /listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, listingID); err != nil {
		common.ServiceErrorResponse(c, "Failed to delete listing", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"deleted": true}})
}

// MyListings handles GET /listings/mine
func (h *ListingHandler) MyListings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	listings, meta, err := h.service.MyListings(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch listings", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: listings, Meta: meta})
}

// Bump handles POST /listings/:id/bump
func (h *ListingHandler) Bump(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Bump(c.Request.Context(), userID, listingID); err != nil {
		common.ServiceErrorResponse(c, "Failed to bump listing", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"bumped": true}})
}

// AddImages handles POST /listings/:id/images
func (h *ListingHandler) AddImages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.AddImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	images, err := h.service.AddImages(c.Request.Context(), userID, listingID, req.URLs)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to add images", err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: images})
}

// SetPrimaryImage handles PUT /listings/:id/images/:imageID/primary
func (h *ListingHandler) SetPrimaryImage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageID")
	if !ok {
		return
	}

	if err := h.service.SetPrimaryImage(c.Request.Context(), userID, listingID, imageID); err != nil {
		common.ServiceErrorResponse(c, "Failed to set primary image", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"primary": imageID}})
}

// RemoveImage handles DELETE /listings/:id/images/:imageID
func (h *ListingHandler) RemoveImage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageID")
	if !ok {
		return
	}

	if err := h.service.RemoveImage(c.Request.Context(), userID, listingID, imageID); err != nil {
		common.ServiceErrorResponse(c, "Failed to remove image", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"deleted": imageID}})
}

// ToggleSave handles POST /listings/:id/save
func (h *ListingHandler) ToggleSave(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	saved, err := h.service.ToggleSave(c.Request.Context(), userID, listingID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to toggle save", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"saved": saved}})
}

// SavedListings handles GET /listings/saved
func (h *ListingHandler) SavedListings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	saved, meta, err := h.service.SavedListings(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch saved listings", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: saved, Meta: meta})
}

// pathID parses a numeric path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" parameter", err)
		return 0, false
	}
	return id, true
}

// pageParams parses page/limit query parameters with defaults.
func pageParams(c *gin.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := 12
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}
