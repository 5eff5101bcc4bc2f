package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/models"
	"MediCitas/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClinicaHandler struct {
	service services.UsuarioService
	log     *zap.Logger
}

func NewClinicaHandler(service services.UsuarioService, log *zap.Logger) *ClinicaHandler {
	return &ClinicaHandler{service: service, log: log}
}

// RegisterDoctor registers a doctor for clinic :id, which must be owned by
// the authenticated user.
func (h *ClinicaHandler) RegisterDoctor(c *gin.Context) {
	clinicaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	clinica, err := h.service.FindClinic(c.Request.Context(), clinicaID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	if clinica.UsuarioID != userID {
		middlewares.RespondError(c, h.log, &models.PermissionError{Reason: "Solo el dueño de la clínica puede registrar médicos."})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	medico, err := h.service.RegisterDoctorForClinic(c.Request.Context(), req.identity(), clinica.UsuarioID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(201, medico)
}

func (h *ClinicaHandler) ListClinics(c *gin.Context) {
	clinicas, err := h.service.ListClinics(c.Request.Context())
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, clinicas)
}

func (h *ClinicaHandler) GetClinic(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	clinica, err := h.service.FindClinic(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, clinica)
}

func (h *ClinicaHandler) ListDoctors(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	medicos, err := h.service.ListDoctorsByClinic(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, medicos)
}
