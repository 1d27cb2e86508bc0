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

type RequestHandler struct {
	requestService     service.RequestService
	fulfillmentService service.FulfillmentService
}

func NewRequestHandler(requestService service.RequestService, fulfillmentService service.FulfillmentService) *RequestHandler {
	return &RequestHandler{requestService: requestService, fulfillmentService: fulfillmentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.GET("", middleware.RequireCapability(middleware.CapRequestsRead), h.Discover)
		requests.POST("", middleware.RequireCapability(middleware.CapRequestsCreate), h.Create)
		requests.GET("/mine", middleware.RequireCapability(middleware.CapRequestsCreate), h.ListMine)
		requests.GET("/:id", middleware.RequireCapability(middleware.CapRequestsRead), h.GetByID)
		requests.GET("/:id/fulfillments", middleware.RequireCapability(middleware.CapRequestsRead), h.ListFulfillments)
		requests.POST("/:id/confirm-receipt", middleware.RequireCapability(middleware.CapRequestsConfirm), h.ConfirmReceipt)
		requests.PUT("/:id/approve", middleware.RequireCapability(middleware.CapRequestsApprove), h.Approve)
		requests.PUT("/:id/cancel", middleware.RequireAuth(), h.Cancel)
	}
}

// Create opens a new food request for the verified NGO
// @Summary      Create food request
// @Description  Creates a food request; the caller's NGO verification must be approved
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request Payload"
// @Success      201      {object}  response.Response{data=model.FoodRequest}
// @Failure      403      {object}  response.Response
// @Router       /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := currentUser(c)
	request, err := h.requestService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// Discover lists open requests, optionally ranked by distance
// @Summary      Discover open requests
// @Description  Lists open requests filtered by status/food type; lat and lng rank results nearest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Status filter"
// @Param        food_type  query     string  false  "Food type filter"
// @Param        lat        query     number  false  "Caller latitude"
// @Param        lng        query     number  false  "Caller longitude"
// @Success      200        {object}  response.Response{data=[]service.RequestWithDistance}
// @Router       /requests [get]
func (h *RequestHandler) Discover(c *gin.Context) {
	filter := service.DiscoveryFilter{
		Status:   c.Query("status"),
		FoodType: c.Query("food_type"),
	}
	if lat, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
			filter.Lat = &lat
			filter.Lng = &lng
		}
	}

	requests, err := h.requestService.Discover(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// ListMine lists the caller's own requests
func (h *RequestHandler) ListMine(c *gin.Context) {
	params := pagination.Parse(c, pagination.MaxLimit)
	userID, _ := currentUser(c)

	requests, err := h.requestService.ListByNGO(c.Request.Context(), userID, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// GetByID returns a single request
func (h *RequestHandler) GetByID(c *gin.Context) {
	request, err := h.requestService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// ListFulfillments lists the donor commitments against a request
func (h *RequestHandler) ListFulfillments(c *gin.Context) {
	fulfillments, err := h.fulfillmentService.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, fulfillments))
}

// ConfirmReceipt records the NGO's confirmation that food arrived
// @Summary      Confirm receipt
// @Description  Latches receipt confirmation on the caller's request and confirms its deliveries; repeat-safe
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id}/confirm-receipt [post]
func (h *RequestHandler) ConfirmReceipt(c *gin.Context) {
	userID, _ := currentUser(c)
	if err := h.requestService.ConfirmReceipt(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Receipt confirmed"}))
}

// Approve moves a pending request to approved (admin)
func (h *RequestHandler) Approve(c *gin.Context) {
	adminID, _ := currentUser(c)
	if err := h.requestService.Approve(c.Request.Context(), adminID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request approved"}))
}

// Cancel cancels a non-terminal request (owner or admin)
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, role := currentUser(c)
	if err := h.requestService.Cancel(c.Request.Context(), userID, role, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request cancelled"}))
}
