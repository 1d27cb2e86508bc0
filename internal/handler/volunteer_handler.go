package handler

import (
	"net/http"
	"strconv"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/pagination"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type VolunteerHandler struct {
	deliveryService     service.DeliveryService
	verificationService service.VerificationService
}

func NewVolunteerHandler(deliveryService service.DeliveryService, verificationService service.VerificationService) *VolunteerHandler {
	return &VolunteerHandler{deliveryService: deliveryService, verificationService: verificationService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *VolunteerHandler) RegisterRoutes(router *gin.RouterGroup) {
	deliveries := router.Group("/api/deliveries")
	{
		deliveries.GET("/available", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.Available)
		deliveries.GET("/mine", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.ListMine)
		deliveries.PUT("/:id/accept", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.Accept)
		deliveries.PUT("/:id/pickup", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.Pickup)
		deliveries.PUT("/:id/complete", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.Complete)
	}

	profile := router.Group("/api/volunteer")
	{
		profile.GET("/profile", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.GetProfile)
		profile.PUT("/profile", middleware.RequireCapability(middleware.CapDeliveriesAccept), h.UpdateProfile)
	}
}

// Available lists unclaimed deliveries, optionally ranked by pickup distance
// @Summary      List available deliveries
// @Description  Lists unclaimed deliveries for a verified volunteer; lat and lng rank by pickup distance
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        lat  query     number  false  "Volunteer latitude"
// @Param        lng  query     number  false  "Volunteer longitude"
// @Success      200  {object}  response.Response{data=[]service.DeliveryWithDistance}
// @Failure      403  {object}  response.Response
// @Router       /deliveries/available [get]
func (h *VolunteerHandler) Available(c *gin.Context) {
	params := pagination.Parse(c, pagination.MaxLimit)
	volunteerID, _ := currentUser(c)

	var latPtr, lngPtr *float64
	if lat, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
			latPtr, lngPtr = &lat, &lng
		}
	}

	deliveries, err := h.deliveryService.Available(c.Request.Context(), volunteerID, latPtr, lngPtr, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliveries))
}

// ListMine lists deliveries the caller drives or assisted with
func (h *VolunteerHandler) ListMine(c *gin.Context) {
	params := pagination.Parse(c, pagination.MaxLimit)
	volunteerID, _ := currentUser(c)

	deliveries, err := h.deliveryService.ListMine(c.Request.Context(), volunteerID, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliveries))
}

// Accept claims the primary volunteer slot on a delivery
// @Summary      Accept a delivery
// @Description  Claims the delivery for the caller; re-accepting a held delivery succeeds, a taken slot conflicts
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery ID"
// @Success      200  {object}  response.Response{data=model.Delivery}
// @Failure      409  {object}  response.Response
// @Router       /deliveries/{id}/accept [put]
func (h *VolunteerHandler) Accept(c *gin.Context) {
	volunteerID, _ := currentUser(c)
	delivery, err := h.deliveryService.Accept(c.Request.Context(), volunteerID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, delivery))
}

// Pickup marks the food as collected from the donor
func (h *VolunteerHandler) Pickup(c *gin.Context) {
	volunteerID, _ := currentUser(c)
	if err := h.deliveryService.Pickup(c.Request.Context(), volunteerID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Pickup recorded"}))
}

// Complete marks the delivery as delivered and credits the volunteer
func (h *VolunteerHandler) Complete(c *gin.Context) {
	var req service.CompleteDeliveryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// Proof and notes are optional
		req = service.CompleteDeliveryDTO{}
	}

	volunteerID, _ := currentUser(c)
	if err := h.deliveryService.Complete(c.Request.Context(), volunteerID, c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Delivery completed"}))
}

// GetProfile returns the caller's volunteer verification record
func (h *VolunteerHandler) GetProfile(c *gin.Context) {
	volunteerID, _ := currentUser(c)
	profile, err := h.verificationService.GetVolunteerByUser(c.Request.Context(), volunteerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// UpdateProfile updates the caller's ID document and transport mode
func (h *VolunteerHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateVolunteerProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	volunteerID, _ := currentUser(c)
	profile, err := h.verificationService.UpdateVolunteerProfile(c.Request.Context(), volunteerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}
