package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"movehub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListConversations возвращает диалоги текущего пользователя
func (h *Handler) ListConversations(c *gin.Context) {
	userID := c.GetInt64("user_id")

	list, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list conversations")
		return
	}

	response.Success(c, http.StatusOK, list)
}

// GetMessages возвращает последние сообщения диалога
func (h *Handler) GetMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	msgs, err := h.service.GetMessages(c.Request.Context(), userID, c.Param("id"), limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, msgs)
}

// SendMessage отправляет сообщение в диалог
func (h *Handler) SendMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "content is required")
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
	case errors.Is(err, ErrEmptyContent):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "content is required")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

// RegisterRoutes mounts the conversation endpoints
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	conversations := protected.Group("/conversations")
	{
		conversations.GET("", h.ListConversations)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
	}
}
