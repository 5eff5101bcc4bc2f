package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/services"
	"MediCitas/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenGenerator issues the token pair returned on login.
type TokenGenerator interface {
	GenerateTokens(userID uint, roles []string) (accessToken, refreshToken string, err error)
}

type AuthHandler struct {
	service       services.UsuarioService
	tokens        TokenGenerator
	log           *zap.Logger
	secureCookies bool
}

func NewAuthHandler(service services.UsuarioService, tokens TokenGenerator, log *zap.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens, log: log, secureCookies: secureCookies}
}

type registerRequest struct {
	Login     string `json:"login" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password"`
	Nombre    string `json:"nombre" binding:"required"`
	Documento string `json:"documento"`
	RolesIDs  []uint `json:"roles_ids"`
}

func (r registerRequest) identity() services.Identity {
	return services.Identity{
		Login:     r.Login,
		Email:     r.Email,
		Password:  r.Password,
		Nombre:    r.Nombre,
		Documento: r.Documento,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	usuario, err := h.service.ResolveOrRegister(c.Request.Context(), req.identity(), req.RolesIDs)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(201, usuario)
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	usuario, ok := h.service.Authenticate(c.Request.Context(), req.Login, req.Password)
	if !ok {
		c.JSON(401, gin.H{"error": "Usuario o contraseña incorrectos."})
		return
	}
	roles := usuario.RoleNames()
	accessToken, refreshToken, err := h.tokens.GenerateTokens(usuario.ID, roles)
	if err != nil {
		middlewares.HttpError(c, h.log, "failed to generate tokens", 500, err)
		return
	}
	utils.SetAuthCookies(c, accessToken, refreshToken, h.secureCookies)
	c.JSON(200, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"usuario":       usuario,
		"dashboard":     services.DashboardRoute(roles),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	utils.ClearAuthCookies(c, h.secureCookies)
	c.Status(204)
}

func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, roles)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	usuario, err := h.service.FindUser(c.Request.Context(), userID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, gin.H{
		"usuario":   usuario,
		"dashboard": services.DashboardRoute(usuario.RoleNames()),
	})
}
