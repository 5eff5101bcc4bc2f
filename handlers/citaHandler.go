package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/models"
	"MediCitas/services"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CitaHandler struct {
	service  services.CitaService
	usuarios services.UsuarioService
	access   citaAccess
	log      *zap.Logger
}

func NewCitaHandler(service services.CitaService, usuarios services.UsuarioService, log *zap.Logger) *CitaHandler {
	return &CitaHandler{
		service:  service,
		usuarios: usuarios,
		access:   citaAccess{citas: service, usuarios: usuarios, log: log},
		log:      log,
	}
}

type bookRequest struct {
	MedicoID       uint      `json:"medico_id" binding:"required"`
	FechaHora      time.Time `json:"fecha_hora"`
	CorreoContacto string    `json:"correo_contacto"`
	Motivo         string    `json:"motivo"`
}

// Book reserves a cita for the authenticated patient.
func (h *CitaHandler) Book(c *gin.Context) {
	pacienteID, ok := currentUser(c)
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	cita, err := h.service.Book(c.Request.Context(), services.BookRequest{
		PacienteID:     pacienteID,
		MedicoID:       req.MedicoID,
		FechaHora:      req.FechaHora,
		CorreoContacto: req.CorreoContacto,
		Motivo:         req.Motivo,
	})
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(201, cita)
}

// Get returns a cita to its patient, its doctor or the clinic owner.
func (h *CitaHandler) Get(c *gin.Context) {
	cita, ok := h.access.authorize(c, anyParticipant, "No tienes permiso para ver esta cita.")
	if !ok {
		return
	}
	c.JSON(200, cita)
}

type rescheduleRequest struct {
	FechaHora time.Time `json:"fecha_hora"`
}

// Reschedule moves a cita. Its patient, its doctor or the clinic owner may do it.
func (h *CitaHandler) Reschedule(c *gin.Context) {
	current, ok := h.access.authorize(c, anyParticipant, "No tienes permiso para reprogramar esta cita.")
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	cita, err := h.service.Reschedule(c.Request.Context(), current.ID, req.FechaHora)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, cita)
}

// Cancel cancels the cita on behalf of the authenticated user.
func (h *CitaHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cita, err := h.service.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, cita)
}

type invoiceRequest struct {
	ValorPagar float64 `json:"valor_pagar"`
}

// Invoice bills a cita. Only the owner of the cita's clinic may do it.
func (h *CitaHandler) Invoice(c *gin.Context) {
	current, ok := h.access.authorize(c, asClinica, "Solo la clínica de la cita puede facturarla.")
	if !ok {
		return
	}
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	cita, err := h.service.Invoice(c.Request.Context(), current.ID, req.ValorPagar)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, cita)
}

type performRequest struct {
	Diagnostico string `json:"diagnostico"`
	Receta      string `json:"receta"`
}

// Perform records the attention. Only the cita's doctor may do it.
func (h *CitaHandler) Perform(c *gin.Context) {
	current, ok := h.access.authorize(c, asMedico, "Solo el médico de la cita puede realizarla.")
	if !ok {
		return
	}
	var req performRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, h.log, bindError(err))
		return
	}
	cita, err := h.service.Perform(c.Request.Context(), current.ID, req.Diagnostico, req.Receta)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, cita)
}

// RemoveFromClinic deletes a cita of a clinic owned by the authenticated user.
func (h *CitaHandler) RemoveFromClinic(c *gin.Context) {
	clinicaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	citaID, ok := paramID(c, "cita_id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	clinica, err := h.usuarios.FindClinic(c.Request.Context(), clinicaID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	if clinica.UsuarioID != userID {
		middlewares.RespondError(c, h.log, &models.PermissionError{Reason: "No puedes eliminar una cita que no pertenece a tu clínica."})
		return
	}
	if err := h.service.RemoveFromClinic(c.Request.Context(), citaID, clinicaID); err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.Status(204)
}

// list answers with the fetched citas the authenticated user takes part in.
func (h *CitaHandler) list(c *gin.Context, fetch func(*gin.Context, uint) ([]models.Cita, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	citas, err := fetch(c, id)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	citas, err = h.access.visibleCitas(c.Request.Context(), citas, userID)
	if err != nil {
		middlewares.RespondError(c, h.log, err)
		return
	}
	c.JSON(200, citas)
}

func (h *CitaHandler) ListByPatient(c *gin.Context) {
	h.list(c, func(c *gin.Context, id uint) ([]models.Cita, error) {
		return h.service.ListByPatient(c.Request.Context(), id)
	})
}

func (h *CitaHandler) ListByDoctor(c *gin.Context) {
	h.list(c, func(c *gin.Context, id uint) ([]models.Cita, error) {
		return h.service.ListByDoctor(c.Request.Context(), id)
	})
}

func (h *CitaHandler) ListByClinic(c *gin.Context) {
	h.list(c, func(c *gin.Context, id uint) ([]models.Cita, error) {
		return h.service.ListByClinic(c.Request.Context(), id)
	})
}
