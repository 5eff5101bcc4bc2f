package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "MediCitas API")
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetupRootRoute mounts the welcome and health routes.
func SetupRootRoute(router gin.IRouter) {
	router.GET("/", rootHandler)
	router.GET("/healthz", healthHandler)
}
