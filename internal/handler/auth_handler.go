package handler

import (
	"net/http"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService service.UserService
}

func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/select-role", middleware.RequireAuth(), h.SelectRole)
		auth.POST("/verify-phone", middleware.RequireAuth(), h.VerifyPhone)
		auth.GET("/me", middleware.RequireAuth(), h.GetMe)
	}
}

// Register creates a new account
// @Summary      Register user
// @Description  Creates an account with an optional role; the role can also be selected later, once
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterDTO  true  "Registration Payload"
// @Success      201      {object}  response.Response{data=service.AuthResult}
// @Failure      400      {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, result.Token)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// Login authenticates by email and password
// @Summary      Login user
// @Description  Authenticates a user, returning a JWT token and setting it as an HttpOnly cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginDTO  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.AuthResult}
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid email or password"))
		return
	}

	middleware.SetTokenCookie(c, result.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// SelectRole assigns the caller's role, once
// @Summary      Select role
// @Description  Assigns ngo, donor or volunteer to an account that has no role yet
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      object{role=string}  true  "Role Selection"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      409      {object}  response.Response
// @Router       /auth/select-role [post]
func (h *AuthHandler) SelectRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID, _ := currentUser(c)
	user, err := h.userService.SelectRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// VerifyPhone verifies the caller's phone via OTP
func (h *AuthHandler) VerifyPhone(c *gin.Context) {
	var req service.VerifyPhoneDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID, _ := currentUser(c)
	if err := h.userService.VerifyPhone(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Phone verified"}))
}

// GetMe returns the current authenticated user
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      404  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := currentUser(c)
	user, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
