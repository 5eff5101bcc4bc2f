package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/models"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID parses a positive numeric path parameter. On failure it writes a
// 400 response and returns false.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the id of the authenticated user. On failure it writes
// a 401 response and returns false.
func currentUser(c *gin.Context) (uint, bool) {
	userID, err := middlewares.ExtractUserIDFromContext(c.Request.Context())
	if err != nil {
		c.JSON(401, gin.H{"error": err.Error()})
		return 0, false
	}
	return userID, true
}

func bindError(err error) error {
	return &models.ValidationError{Fields: map[string]string{"body": err.Error()}}
}
