package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/internal/service"
)

// MessageHandler handles messaging HTTP requests
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send handles POST /listings/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.service.Send(c.Request.Context(), userID, listingID, &req)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to send message", err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: msg})
}

// Inbox handles GET /messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	messages, meta, err := h.service.Inbox(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch inbox", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: messages, Meta: meta})
}

// Sent handles GET /messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	messages, meta, err := h.service.Sent(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch sent messages", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: messages, Meta: meta})
}

// Thread handles GET /messages/:id/thread
func (h *MessageHandler) Thread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	thread, err := h.service.Thread(c.Request.Context(), userID, messageID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch thread", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: thread})
}

// UnreadCount handles GET /messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch unread count", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: gin.H{"unread": count}})
}

// SendInquiry handles POST /listings/:id/inquiries
func (h *MessageHandler) SendInquiry(c *gin.Context) {
	userID := middleware.GetUserID(c)
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.SendInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	inquiry, err := h.service.SendInquiry(c.Request.Context(), userID, listingID, &req)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to send inquiry", err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: inquiry})
}

// Inquiry handles GET /inquiries/:id
func (h *MessageHandler) Inquiry(c *gin.Context) {
	userID := middleware.GetUserID(c)
	inquiryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	inquiry, err := h.service.Inquiry(c.Request.Context(), userID, inquiryID)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch inquiry", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: inquiry})
}

// Inquiries handles GET /inquiries
func (h *MessageHandler) Inquiries(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pageParams(c)

	inquiries, meta, err := h.service.Inquiries(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.ServiceErrorResponse(c, "Failed to fetch inquiries", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{Data: inquiries, Meta: meta})
}
