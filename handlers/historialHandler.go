package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/models"
	"MediCitas/services"
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HistorialHandler struct {
	service services.HistorialService
	access  citaAccess
	log     *zap.Logger
}

func NewHistorialHandler(service services.HistorialService, citas services.CitaService, usuarios services.UsuarioService, log *zap.Logger) *HistorialHandler {
	return &HistorialHandler{
		service: service,
		access:  citaAccess{citas: citas, usuarios: usuarios, log: log},
		log:     log,
	}
}

// FindByCita returns the record of cita :id to its patient, its doctor or the
// clinic owner.
func (h *HistorialHandler) FindByCita(c *gin.Context) {
	cita, ok := h.access.authorize(c, anyParticipant, "No tienes permiso para ver este historial.")
	if !ok {
		return
	}
	historial, err := h.service.FindByCita(c.Request.Context(), cita.ID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	if historial == nil {
		c.JSON(404, gin.H{"error": "La cita no tiene historial médico."})
		return
	}
	c.JSON(200, historial)
}

func (h *HistorialHandler) ListByPatient(c *gin.Context) {
	h.list(c, h.service.ListByPatient)
}

func (h *HistorialHandler) ListByDoctor(c *gin.Context) {
	h.list(c, h.service.ListByDoctor)
}

// list answers with the fetched records of citas the authenticated user takes part in.
func (h *HistorialHandler) list(c *gin.Context, fetch func(context.Context, uint) ([]models.HistorialMedico, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	historiales, err := fetch(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	historiales, err = h.access.visibleHistoriales(c.Request.Context(), historiales, userID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, historiales)
}
