package services

import (
	"MediCitas/models"
	"MediCitas/repositories"
	"context"
)

// HistorialService is the read side of medical records. Records are written
// only by CitaService.Perform.
type HistorialService interface {
	ListByPatient(ctx context.Context, pacienteID uint) ([]models.HistorialMedico, error)
	ListByDoctor(ctx context.Context, medicoID uint) ([]models.HistorialMedico, error)
	// FindByCita returns nil, nil when the cita was never performed.
	FindByCita(ctx context.Context, citaID uint) (*models.HistorialMedico, error)
}

type historialService struct {
	store repositories.Store
}

func NewHistorialService(store repositories.Store) HistorialService {
	return &historialService{store: store}
}

func (s *historialService) ListByPatient(ctx context.Context, pacienteID uint) ([]models.HistorialMedico, error) {
	return s.store.Historiales().ListByPaciente(ctx, pacienteID)
}

func (s *historialService) ListByDoctor(ctx context.Context, medicoID uint) ([]models.HistorialMedico, error) {
	return s.store.Historiales().ListByMedico(ctx, medicoID)
}

func (s *historialService) FindByCita(ctx context.Context, citaID uint) (*models.HistorialMedico, error) {
	return s.store.Historiales().FindByCita(ctx, citaID)
}
