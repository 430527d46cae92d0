package quote

import (
	"github.com/gin-gonic/gin"

	"movehub/internal/middleware"
)

// RegisterRoutes mounts the negotiation endpoints. Role middleware picks
// the acting side; participant checks live in the service.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	quotes := protected.Group("/quotes")
	{
		quotes.GET("", h.ListMyQuotes)
		quotes.GET("/:id", h.GetQuote)

		quotes.POST("", middleware.ClientOnly(), h.CreateQuote)
		quotes.POST("/:id/accept-price", middleware.ClientOnly(), h.AcceptPrice)
		quotes.POST("/:id/negotiate-price", middleware.ClientOnly(), h.NegotiatePrice)

		quotes.POST("/:id/propose-price", middleware.MoverOnly(), h.ProposePrice)
		quotes.POST("/:id/accept-negotiation", middleware.MoverOnly(), h.AcceptNegotiation)
		quotes.PATCH("/:id/status", middleware.MoverOnly(), h.SetStatus)
	}
}
