package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookie stores the access token as an HttpOnly cookie so browser
// clients don't have to manage the Authorization header themselves.
func SetTokenCookie(c *gin.Context, token string) {
	secure := os.Getenv("GIN_MODE") == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, int((24 * time.Hour).Seconds()), "/", "", secure, true)
}

// ClearTokenCookie expires the access token cookie on logout.
func ClearTokenCookie(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
}

// Capability codes. Every protected endpoint names the single capability it
// needs; the role→capability table below is the one place authorization is
// decided.
const (
	CapRequestsCreate     = "requests.create"
	CapRequestsRead       = "requests.read"
	CapRequestsConfirm    = "requests.confirm"
	CapRequestsApprove    = "requests.approve"
	CapFulfillmentsCreate = "fulfillments.create"
	CapDeliveriesAccept   = "deliveries.accept"
	CapDeliveriesEscalate = "deliveries.escalate"
	CapVerificationsVote  = "verifications.vote"
	CapAdminRead          = "admin.read"
	CapProfileRead        = "profile.read"
)

// roleCapabilities is the closed capability table: one row per role, checked
// centrally by RequireCapability instead of ad-hoc role strings per call site.
var roleCapabilities = map[string][]string{
	model.RoleNGO: {
		CapRequestsCreate, CapRequestsRead, CapRequestsConfirm, CapProfileRead,
	},
	model.RoleDonor: {
		CapRequestsRead, CapFulfillmentsCreate, CapProfileRead,
	},
	model.RoleVolunteer: {
		CapRequestsRead, CapDeliveriesAccept, CapProfileRead,
	},
	model.RoleAdmin: {
		CapRequestsRead, CapRequestsApprove, CapDeliveriesEscalate,
		CapVerificationsVote, CapAdminRead, CapProfileRead,
	},
}

func roleHasCapability(role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// parseToken extracts and validates the JWT from cookie or Authorization
// header, storing userID/userRole on the context. Returns false after
// aborting on failure.
func parseToken(c *gin.Context) bool {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})

	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return false
	}

	userID, _ := claims["sub"].(string)
	userRole, _ := claims["role"].(string)
	c.Set("userID", userID)
	c.Set("userRole", userRole)

	return true
}

// RequireAuth validates the JWT without any capability check. Used for
// endpoints open to every authenticated actor regardless of role (e.g.
// role selection, /me).
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !parseToken(c) {
			return
		}
		c.Next()
	}
}

// RequireCapability validates the JWT and checks the capability table for
// the caller's role.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !parseToken(c) {
			return
		}

		role := c.GetString("userRole")
		if !roleHasCapability(role, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}
