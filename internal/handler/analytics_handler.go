package handler

import (
	"net/http"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/stats")
	{
		stats.GET("/public", h.PublicStats)
		stats.GET("/me", middleware.RequireCapability(middleware.CapProfileRead), h.MyStats)
	}
}

// PublicStats returns the unauthenticated impact snapshot
// @Summary      Public impact stats
// @Description  Aggregated platform impact: meals delivered, people fed, verified NGOs, success rate
// @Tags         stats
// @Produce      json
// @Success      200  {object}  response.Response{data=service.PublicStats}
// @Router       /stats/public [get]
func (h *AnalyticsHandler) PublicStats(c *gin.Context) {
	stats, err := h.analyticsService.PublicStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// MyStats returns the caller's role-specific activity summary
func (h *AnalyticsHandler) MyStats(c *gin.Context) {
	userID, role := currentUser(c)
	stats, err := h.analyticsService.UserStats(c.Request.Context(), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
