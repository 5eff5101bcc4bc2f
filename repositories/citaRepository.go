package repositories

import (
	"MediCitas/models"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type citaRepository struct {
	db *gorm.DB
}

func (r *citaRepository) FindByID(ctx context.Context, id uint) (*models.Cita, error) {
	var cita models.Cita
	err := r.db.WithContext(ctx).Preload("Historial").First(&cita, id).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch cita")
	}
	return &cita, nil
}

func (r *citaRepository) FindForUpdate(ctx context.Context, id uint) (*models.Cita, error) {
	var cita models.Cita
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cita, id).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to lock cita")
	}
	return &cita, nil
}

func (r *citaRepository) FindActiveBySlot(ctx context.Context, clinicaID uint, fechaHora time.Time, excludeID uint) (*models.Cita, error) {
	query := r.db.WithContext(ctx).
		Where("clinica_id = ? AND fecha_hora = ? AND estado <> ?", clinicaID, fechaHora, models.EstadoCancelada)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var cita models.Cita
	if err := query.Order("id").First(&cita).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to check slot")
	}
	return &cita, nil
}

func (r *citaRepository) list(ctx context.Context, column string, id uint) ([]models.Cita, error) {
	var citas []models.Cita
	err := r.db.WithContext(ctx).
		Preload("Historial").
		Where(column+" = ?", id).
		Order("fecha_hora").
		Find(&citas).Error
	if err != nil {
		return nil, translateError(err, "failed to list citas")
	}
	return citas, nil
}

func (r *citaRepository) ListByPaciente(ctx context.Context, pacienteID uint) ([]models.Cita, error) {
	return r.list(ctx, "paciente_id", pacienteID)
}

func (r *citaRepository) ListByMedico(ctx context.Context, medicoID uint) ([]models.Cita, error) {
	return r.list(ctx, "medico_id", medicoID)
}

func (r *citaRepository) ListByClinica(ctx context.Context, clinicaID uint) ([]models.Cita, error) {
	return r.list(ctx, "clinica_id", clinicaID)
}

// Save inserts a new cita or updates the mutable columns of an existing one.
// The owned historial is written separately through HistorialRepository.
func (r *citaRepository) Save(ctx context.Context, cita *models.Cita) error {
	db := r.db.WithContext(ctx).Omit("Historial")
	if cita.ID == 0 {
		return translateError(db.Create(cita).Error, "failed to create cita")
	}
	err := db.Model(cita).
		Select("fecha_hora", "correo_contacto", "motivo", "valor_pagar", "estado", "updated_at").
		Updates(cita).Error
	return translateError(err, "failed to update cita")
}

func (r *citaRepository) Delete(ctx context.Context, id uint) error {
	return translateError(r.db.WithContext(ctx).Delete(&models.Cita{}, id).Error, "failed to delete cita")
}
