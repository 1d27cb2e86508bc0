package handler

import (
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// currentUser returns the authenticated caller's id and role, set by the
// auth middleware.
func currentUser(c *gin.Context) (id string, role string) {
	return c.GetString("userID"), c.GetString("userRole")
}
