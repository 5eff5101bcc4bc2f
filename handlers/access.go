package handlers

import (
	"MediCitas/middlewares"
	"MediCitas/models"
	"MediCitas/services"
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// citaRole is the part a user plays in a cita.
type citaRole int

const (
	asPaciente citaRole = 1 << iota
	asMedico
	asClinica

	anyParticipant = asPaciente | asMedico | asClinica
)

// citaAccess decides which citas an authenticated user may see or act on.
type citaAccess struct {
	citas    services.CitaService
	usuarios services.UsuarioService
	log      *zap.Logger
}

// allowed reports whether userID plays one of roles in cita. asClinica means
// owning the cita's clinic.
func (a citaAccess) allowed(ctx context.Context, cita *models.Cita, userID uint, roles citaRole) (bool, error) {
	if roles&asPaciente != 0 && cita.PacienteID == userID {
		return true, nil
	}
	if roles&asMedico != 0 && cita.MedicoID == userID {
		return true, nil
	}
	if roles&asClinica == 0 {
		return false, nil
	}
	clinica, err := a.usuarios.FindClinic(ctx, cita.ClinicaID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return clinica.UsuarioID == userID, nil
}

// authorize loads cita :id for the authenticated user. On failure it writes
// the response and returns false.
func (a citaAccess) authorize(c *gin.Context, roles citaRole, reason string) (*models.Cita, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	cita, err := a.citas.Get(c.Request.Context(), id)
	if err != nil {
		middlewares.RespondError(c, a.log, err)
		return nil, false
	}
	ok, err = a.allowed(c.Request.Context(), cita, userID, roles)
	if err != nil {
		middlewares.RespondError(c, a.log, err)
		return nil, false
	}
	if !ok {
		middlewares.RespondError(c, a.log, &models.PermissionError{Reason: reason})
		return nil, false
	}
	return cita, true
}

// visibleCitas keeps the citas userID takes part in.
func (a citaAccess) visibleCitas(ctx context.Context, citas []models.Cita, userID uint) ([]models.Cita, error) {
	visible := make([]models.Cita, 0, len(citas))
	for i := range citas {
		ok, err := a.allowed(ctx, &citas[i], userID, anyParticipant)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, citas[i])
		}
	}
	return visible, nil
}

// visibleHistoriales keeps the records of citas userID takes part in.
func (a citaAccess) visibleHistoriales(ctx context.Context, historiales []models.HistorialMedico, userID uint) ([]models.HistorialMedico, error) {
	visible := make([]models.HistorialMedico, 0, len(historiales))
	for _, h := range historiales {
		if h.PacienteID == userID || h.MedicoID == userID {
			visible = append(visible, h)
			continue
		}
		cita, err := a.citas.Get(ctx, h.CitaID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ok, err := a.allowed(ctx, cita, userID, asClinica)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, h)
		}
	}
	return visible, nil
}
