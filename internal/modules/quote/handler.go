package quote

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"movehub/internal/domain"
	"movehub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateQuote создаёт новую заявку на переезд. Если указан mover_id,
// перевозчик получает уведомление new_service_request.
func (h *Handler) CreateQuote(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validationDetails(err))
		return
	}

	q, err := h.service.CreateQuote(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, q)
}

// ProposePrice — перевозчик предлагает цену по заявке
func (h *Handler) ProposePrice(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validationDetails(err))
		return
	}

	q, err := h.service.ProposePrice(c.Request.Context(), userID, c.Param("id"), req.PriceCents)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

// AcceptPrice — клиент принимает предложенную цену
func (h *Handler) AcceptPrice(c *gin.Context) {
	userID := c.GetInt64("user_id")

	q, err := h.service.AcceptPrice(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

// NegotiatePrice — клиент предлагает встречную цену
func (h *Handler) NegotiatePrice(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validationDetails(err))
		return
	}

	q, err := h.service.NegotiatePrice(c.Request.Context(), userID, c.Param("id"), req.PriceCents)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

// AcceptNegotiation — перевозчик принимает встречную цену клиента
func (h *Handler) AcceptNegotiation(c *gin.Context) {
	userID := c.GetInt64("user_id")

	q, err := h.service.AcceptNegotiation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

// SetStatus — перевозчик переводит заявку по статусам выполнения
func (h *Handler) SetStatus(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validationDetails(err))
		return
	}

	q, err := h.service.SetStatus(c.Request.Context(), userID, c.Param("id"), domain.QuoteStatus(req.Status))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

func (h *Handler) GetQuote(c *gin.Context) {
	userID := c.GetInt64("user_id")

	q, err := h.service.GetQuote(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, q)
}

func (h *Handler) ListMyQuotes(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	quotes, err := h.service.ListMyQuotes(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list quotes")
		return
	}

	response.Success(c, http.StatusOK, quotes)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Quote not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this quote")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Operation not allowed in the current quote state")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fieldErrors := map[string]string{}
	for _, fieldError := range validationErrors {
		fieldErrors[fieldError.Field()] = validationErrorMessage(fieldError)
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return map[string]any{"field_errors": fieldErrors}
}

func validationErrorMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fieldError.Param()
	default:
		return "is invalid"
	}
}
