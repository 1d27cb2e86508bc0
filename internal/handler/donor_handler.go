package handler

import (
	"net/http"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/pagination"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type DonorHandler struct {
	fulfillmentService service.FulfillmentService
	userService        service.UserService
}

func NewDonorHandler(fulfillmentService service.FulfillmentService, userService service.UserService) *DonorHandler {
	return &DonorHandler{fulfillmentService: fulfillmentService, userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DonorHandler) RegisterRoutes(router *gin.RouterGroup) {
	fulfillments := router.Group("/api/fulfillments")
	{
		fulfillments.POST("", middleware.RequireCapability(middleware.CapFulfillmentsCreate), h.Fulfill)
		fulfillments.GET("/mine", middleware.RequireCapability(middleware.CapFulfillmentsCreate), h.ListMine)
	}
}

// Fulfill commits servings against an open request
// @Summary      Fulfill a request
// @Description  Commits a quantity of food to an open request; creates a delivery leg when the volunteer method is chosen
// @Tags         fulfillments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateFulfillmentDTO  true  "Fulfillment Payload"
// @Success      201      {object}  response.Response{data=service.FulfillmentResult}
// @Failure      409      {object}  response.Response
// @Router       /fulfillments [post]
func (h *DonorHandler) Fulfill(c *gin.Context) {
	var req service.CreateFulfillmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	donorID, _ := currentUser(c)
	donor, err := h.userService.GetMe(c.Request.Context(), donorID)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.fulfillmentService.Fulfill(c.Request.Context(), donorID, donor.Name, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListMine lists the caller's fulfillments
func (h *DonorHandler) ListMine(c *gin.Context) {
	params := pagination.Parse(c, pagination.MaxLimit)
	donorID, _ := currentUser(c)

	fulfillments, err := h.fulfillmentService.ListByDonor(c.Request.Context(), donorID, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, fulfillments))
}
