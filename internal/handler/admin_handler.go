package handler

import (
	"net/http"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/pagination"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	consensusService    service.ConsensusService
	verificationService service.VerificationService
	requestService      service.RequestService
	deliveryService     service.DeliveryService
	analyticsService    service.AnalyticsService
	userService         service.UserService
	auditRepo           repository.AuditRepository
}

func NewAdminHandler(
	consensusService service.ConsensusService,
	verificationService service.VerificationService,
	requestService service.RequestService,
	deliveryService service.DeliveryService,
	analyticsService service.AnalyticsService,
	userService service.UserService,
	auditRepo repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		consensusService:    consensusService,
		verificationService: verificationService,
		requestService:      requestService,
		deliveryService:     deliveryService,
		analyticsService:    analyticsService,
		userService:         userService,
		auditRepo:           auditRepo,
	}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin")
	{
		admin.GET("/dashboard", middleware.RequireCapability(middleware.CapAdminRead), h.Dashboard)
		admin.GET("/users", middleware.RequireCapability(middleware.CapAdminRead), h.ListUsers)
		admin.GET("/audit-logs", middleware.RequireCapability(middleware.CapAdminRead), h.ListAuditLogs)
		admin.GET("/requests", middleware.RequireCapability(middleware.CapAdminRead), h.ListRequests)
		admin.GET("/deliveries", middleware.RequireCapability(middleware.CapAdminRead), h.ListDeliveries)

		verifications := admin.Group("/verifications")
		{
			verifications.GET("/ngos", middleware.RequireCapability(middleware.CapAdminRead), h.ListPendingNGOs)
			verifications.GET("/volunteers", middleware.RequireCapability(middleware.CapAdminRead), h.ListPendingVolunteers)
			verifications.PUT("/ngos/:id/approve", middleware.RequireCapability(middleware.CapVerificationsVote), h.ApproveNGO)
			verifications.PUT("/ngos/:id/reject", middleware.RequireCapability(middleware.CapVerificationsVote), h.RejectNGO)
			verifications.PUT("/volunteers/:userId/approve", middleware.RequireCapability(middleware.CapVerificationsVote), h.ApproveVolunteer)
			verifications.PUT("/volunteers/:userId/reject", middleware.RequireCapability(middleware.CapVerificationsVote), h.RejectVolunteer)
		}

		deliveries := admin.Group("/deliveries")
		{
			deliveries.PUT("/:id/flag-extra", middleware.RequireCapability(middleware.CapDeliveriesEscalate), h.FlagExtraVolunteer)
			deliveries.PUT("/:id/credit", middleware.RequireCapability(middleware.CapDeliveriesEscalate), h.CreditVolunteer)
		}
	}
}

// Dashboard returns the operational overview counters
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// ListUsers returns all users, paginated
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	users, total, err := h.userService.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   users,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// ListAuditLogs returns the audit trail, newest first
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	entries, total, err := h.auditRepo.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   entries,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// ListRequests returns every food request regardless of status
func (h *AdminHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	requests, err := h.requestService.ListAll(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// ListDeliveries returns every delivery for oversight
func (h *AdminHandler) ListDeliveries(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	deliveries, err := h.deliveryService.ListAll(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deliveries))
}

// ListPendingNGOs returns NGO verifications awaiting review
func (h *AdminHandler) ListPendingNGOs(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	verifications, err := h.verificationService.ListPendingNGOs(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, verifications))
}

// ListPendingVolunteers returns volunteer verifications awaiting review
func (h *AdminHandler) ListPendingVolunteers(c *gin.Context) {
	params := pagination.Parse(c, pagination.AdminMaxLimit)
	verifications, err := h.verificationService.ListPendingVolunteers(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, verifications))
}

// ApproveNGO casts the caller's approval vote on an NGO verification
// @Summary      Approve NGO verification
// @Description  Records an approval vote; the verification completes when a second, different admin approves
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "NGO verification ID"
// @Success      200  {object}  response.Response{data=service.VoteResult}
// @Failure      409  {object}  response.Response
// @Router       /admin/verifications/ngos/{id}/approve [put]
func (h *AdminHandler) ApproveNGO(c *gin.Context) {
	adminID, _ := currentUser(c)
	result, err := h.consensusService.Approve(c.Request.Context(), adminID, c.Param("id"), model.ApprovalTargetNGO)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectNGO rejects an NGO verification (single admin suffices)
func (h *AdminHandler) RejectNGO(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		// Reason is optional
		req.Reason = ""
	}

	adminID, _ := currentUser(c)
	if err := h.consensusService.Reject(c.Request.Context(), adminID, c.Param("id"), model.ApprovalTargetNGO, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Verification rejected"}))
}

// ApproveVolunteer casts the caller's approval vote on a volunteer
func (h *AdminHandler) ApproveVolunteer(c *gin.Context) {
	adminID, _ := currentUser(c)
	result, err := h.consensusService.Approve(c.Request.Context(), adminID, c.Param("userId"), model.ApprovalTargetVolunteer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectVolunteer rejects a volunteer verification (single admin suffices)
func (h *AdminHandler) RejectVolunteer(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	adminID, _ := currentUser(c)
	if err := h.consensusService.Reject(c.Request.Context(), adminID, c.Param("userId"), model.ApprovalTargetVolunteer, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Verification rejected"}))
}

// FlagExtraVolunteer marks a delivery as needing a second volunteer
func (h *AdminHandler) FlagExtraVolunteer(c *gin.Context) {
	adminID, _ := currentUser(c)
	if err := h.deliveryService.FlagExtraVolunteer(c.Request.Context(), adminID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Extra volunteer flagged"}))
}

// CreditVolunteer adds a helper volunteer to a delivery's credit list
func (h *AdminHandler) CreditVolunteer(c *gin.Context) {
	var req struct {
		VolunteerID string `json:"volunteer_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	adminID, _ := currentUser(c)
	if err := h.deliveryService.CreditVolunteer(c.Request.Context(), adminID, c.Param("id"), req.VolunteerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Volunteer credited"}))
}
