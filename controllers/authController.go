package controllers

import (
	"MediCitas/handlers"
	"MediCitas/middlewares"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
	Tokens  middlewares.TokenValidator
}

func NewAuthController(authHandler *handlers.AuthHandler, tokens middlewares.TokenValidator) *AuthController {
	return &AuthController{Handler: authHandler, Tokens: tokens}
}

// RegisterRoutes mounts the account routes.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.POST("/auth/register", ac.Handler.Register)
	router.POST("/auth/login", ac.Handler.Login)
	router.POST("/auth/logout", ac.Handler.Logout)
	router.GET("/auth/roles", ac.Handler.ListRoles)

	authGroup := router.Group("/auth").Use(middlewares.TokenAuthMiddleware(ac.Tokens))
	{
		authGroup.GET("/user/profile", ac.Handler.Profile)
	}
}
