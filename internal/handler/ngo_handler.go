package handler

import (
	"net/http"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/pagination"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type NGOHandler struct {
	verificationService service.VerificationService
}

func NewNGOHandler(verificationService service.VerificationService) *NGOHandler {
	return &NGOHandler{verificationService: verificationService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *NGOHandler) RegisterRoutes(router *gin.RouterGroup) {
	ngo := router.Group("/api/ngo")
	{
		ngo.POST("/verification", middleware.RequireAuth(), h.SubmitVerification)
		ngo.GET("/verification", middleware.RequireAuth(), h.GetVerification)
	}

	// Public directory of approved NGOs
	router.GET("/api/ngos", h.ListVerified)
}

// SubmitVerification files the caller's NGO identity for admin review
// @Summary      Submit NGO verification
// @Description  Files organization details and documents; approval requires two distinct admins
// @Tags         verification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitNGOVerificationDTO  true  "Verification Payload"
// @Success      201      {object}  response.Response{data=model.NGOVerification}
// @Failure      409      {object}  response.Response
// @Router       /ngo/verification [post]
func (h *NGOHandler) SubmitVerification(c *gin.Context) {
	var req service.SubmitNGOVerificationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := currentUser(c)
	verification, err := h.verificationService.SubmitNGO(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, verification))
}

// GetVerification returns the caller's verification record and its status
func (h *NGOHandler) GetVerification(c *gin.Context) {
	userID, _ := currentUser(c)
	verification, err := h.verificationService.GetNGOByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, verification))
}

// ListVerified returns the public directory of approved NGOs
func (h *NGOHandler) ListVerified(c *gin.Context) {
	params := pagination.Parse(c, pagination.MaxLimit)
	ngos, err := h.verificationService.ListVerifiedNGOs(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ngos))
}
