package repositories

import (
	"MediCitas/models"
	"context"

	"gorm.io/gorm"
)

type historialRepository struct {
	db *gorm.DB
}

func (r *historialRepository) FindByCita(ctx context.Context, citaID uint) (*models.HistorialMedico, error) {
	var historial models.HistorialMedico
	if err := r.db.WithContext(ctx).Where("cita_id = ?", citaID).First(&historial).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch historial")
	}
	return &historial, nil
}

func (r *historialRepository) ListByPaciente(ctx context.Context, pacienteID uint) ([]models.HistorialMedico, error) {
	var historiales []models.HistorialMedico
	err := r.db.WithContext(ctx).Where("paciente_id = ?", pacienteID).Order("created_at").Find(&historiales).Error
	if err != nil {
		return nil, translateError(err, "failed to list historiales")
	}
	return historiales, nil
}

func (r *historialRepository) ListByMedico(ctx context.Context, medicoID uint) ([]models.HistorialMedico, error) {
	var historiales []models.HistorialMedico
	err := r.db.WithContext(ctx).Where("medico_id = ?", medicoID).Order("created_at").Find(&historiales).Error
	if err != nil {
		return nil, translateError(err, "failed to list historiales")
	}
	return historiales, nil
}

func (r *historialRepository) Create(ctx context.Context, historial *models.HistorialMedico) error {
	return translateError(r.db.WithContext(ctx).Create(historial).Error, "failed to create historial")
}
