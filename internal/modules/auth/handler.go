package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"movehub/internal/pkg/response"
	"movehub/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register создаёт аккаунт клиента или перевозчика
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Error(c, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "Registration failed")
		return
	}

	response.Success(c, http.StatusCreated, AuthResponse{
		User:        userPublicFromEntity(result.User),
		AccessToken: result.AccessToken,
	})
}

// Login выдаёт access-токен по email и паролю
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed")
		return
	}

	response.Success(c, http.StatusOK, AuthResponse{
		User:        userPublicFromEntity(result.User),
		AccessToken: result.AccessToken,
	})
}

// Me возвращает профиль текущего пользователя
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, userPublicFromEntity(user))
}

// RegisterRoutes mounts public auth endpoints and the protected profile
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	auth := public.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
	protected.GET("/auth/me", h.Me)
}
