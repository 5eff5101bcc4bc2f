package services

import (
	"MediCitas/database"
	"MediCitas/models"
	"MediCitas/repositories"
	"MediCitas/utils"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	slotTakenReason = "Ya existe otra cita en la misma fecha/hora para esta clínica."
	slotBusyReason  = "La fecha/hora solicitada se está reservando en este momento."

	subjectReservada    = "Confirmación de cita"
	subjectReprogramada = "Cita reprogramada"
)

// BookRequest is the input of Book.
type BookRequest struct {
	PacienteID     uint
	MedicoID       uint
	FechaHora      time.Time
	CorreoContacto string
	Motivo         string
}

type CitaService interface {
	Book(ctx context.Context, req BookRequest) (*models.Cita, error)
	Reschedule(ctx context.Context, citaID uint, fechaHora time.Time) (*models.Cita, error)
	Cancel(ctx context.Context, citaID, actingUserID uint) (*models.Cita, error)
	Invoice(ctx context.Context, citaID uint, valor float64) (*models.Cita, error)
	Perform(ctx context.Context, citaID uint, diagnostico, receta string) (*models.Cita, error)
	RemoveFromClinic(ctx context.Context, citaID, clinicaID uint) error
	ListByPatient(ctx context.Context, pacienteID uint) ([]models.Cita, error)
	ListByDoctor(ctx context.Context, medicoID uint) ([]models.Cita, error)
	ListByClinic(ctx context.Context, clinicaID uint) ([]models.Cita, error)
	Get(ctx context.Context, citaID uint) (*models.Cita, error)
}

type citaService struct {
	store repositories.Store
	deps
}

func NewCitaService(store repositories.Store, opts ...Option) CitaService {
	return &citaService{store: store, deps: newDeps(opts)}
}

func (s *citaService) Book(ctx context.Context, req BookRequest) (*models.Cita, error) {
	if err := utils.ValidateBooking(req.FechaHora, req.CorreoContacto, req.Motivo); err != nil {
		return nil, err
	}

	medico, err := s.store.Usuarios().FindByID(ctx, req.MedicoID)
	if err != nil {
		return nil, err
	}
	if medico == nil {
		return nil, &models.NotFoundError{Entity: "medico", Key: req.MedicoID}
	}
	if medico.ClinicaID == nil {
		return nil, &models.NotFoundError{Entity: "clinica del medico", Key: req.MedicoID}
	}

	release, err := s.lock(ctx, database.SlotLockKey(*medico.ClinicaID, req.FechaHora), slotBusyReason)
	if err != nil {
		return nil, err
	}
	defer release()

	var cita *models.Cita
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		paciente, err := tx.Usuarios().FindByID(ctx, req.PacienteID)
		if err != nil {
			return err
		}
		if paciente == nil {
			return &models.NotFoundError{Entity: "paciente", Key: req.PacienteID}
		}
		// Re-read inside the transaction so the clinic cannot change under us.
		medico, err := tx.Usuarios().FindByID(ctx, req.MedicoID)
		if err != nil {
			return err
		}
		if medico == nil {
			return &models.NotFoundError{Entity: "medico", Key: req.MedicoID}
		}
		if medico.ClinicaID == nil {
			return &models.NotFoundError{Entity: "clinica del medico", Key: req.MedicoID}
		}
		clinica, err := tx.Clinicas().FindByID(ctx, *medico.ClinicaID)
		if err != nil {
			return err
		}
		if clinica == nil {
			return &models.NotFoundError{Entity: "clinica", Key: *medico.ClinicaID}
		}

		if err := s.ensureSlotFree(ctx, tx, clinica.ID, req.FechaHora, 0); err != nil {
			return err
		}

		cita = &models.Cita{
			PacienteID:     paciente.ID,
			MedicoID:       medico.ID,
			ClinicaID:      clinica.ID,
			FechaHora:      req.FechaHora,
			CorreoContacto: req.CorreoContacto,
			Motivo:         req.Motivo,
			PacienteNombre: paciente.Nombre,
			MedicoNombre:   medico.Nombre,
			ClinicaNombre:  clinica.Nombre,
			Documento:      paciente.Documento,
			Estado:         models.EstadoReservada,
		}
		return s.saveSlot(ctx, tx, cita)
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(cita, "book")
	s.notify(ctx, *cita, subjectReservada)
	return cita, nil
}

func (s *citaService) Reschedule(ctx context.Context, citaID uint, fechaHora time.Time) (*models.Cita, error) {
	if err := utils.ValidateReschedule(fechaHora); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, citaID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, database.SlotLockKey(current.ClinicaID, fechaHora), slotBusyReason)
	if err != nil {
		return nil, err
	}
	defer release()

	cita, err := s.mutate(ctx, citaID, func(tx repositories.Store, cita *models.Cita) error {
		if cita.Estado != models.EstadoReservada {
			return &models.StateError{CitaID: cita.ID, Estado: cita.Estado, Operation: "reprogramar"}
		}
		if err := s.ensureSlotFree(ctx, tx, cita.ClinicaID, fechaHora, cita.ID); err != nil {
			return err
		}
		cita.FechaHora = fechaHora
		return s.saveSlot(ctx, tx, cita)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cita rescheduled", zap.Uint("cita_id", cita.ID), zap.Time("fecha_hora", cita.FechaHora))
	s.notify(ctx, *cita, subjectReprogramada)
	return cita, nil
}

func (s *citaService) Cancel(ctx context.Context, citaID, actingUserID uint) (*models.Cita, error) {
	cita, err := s.mutate(ctx, citaID, func(tx repositories.Store, cita *models.Cita) error {
		if !cita.Estado.CanTransitionTo(models.EstadoCancelada) {
			return &models.StateError{CitaID: cita.ID, Estado: cita.Estado, Operation: "cancelar"}
		}
		if actingUserID != cita.PacienteID && actingUserID != cita.MedicoID {
			return &models.PermissionError{Reason: "No tienes permiso para cancelar esta cita."}
		}
		cita.Estado = models.EstadoCancelada
		return tx.Citas().Save(ctx, cita)
	})
	if err != nil {
		return nil, err
	}
	s.transitioned(cita, "cancel")
	return cita, nil
}

func (s *citaService) Invoice(ctx context.Context, citaID uint, valor float64) (*models.Cita, error) {
	if err := utils.ValidateInvoice(valor); err != nil {
		return nil, err
	}
	cita, err := s.mutate(ctx, citaID, func(tx repositories.Store, cita *models.Cita) error {
		if !cita.Estado.CanTransitionTo(models.EstadoFacturada) {
			return &models.StateError{CitaID: cita.ID, Estado: cita.Estado, Operation: "facturar"}
		}
		cita.ValorPagar = &valor
		cita.Estado = models.EstadoFacturada
		return tx.Citas().Save(ctx, cita)
	})
	if err != nil {
		return nil, err
	}
	s.transitioned(cita, "invoice")
	return cita, nil
}

func (s *citaService) Perform(ctx context.Context, citaID uint, diagnostico, receta string) (*models.Cita, error) {
	if err := utils.ValidatePerform(diagnostico, receta); err != nil {
		return nil, err
	}
	cita, err := s.mutate(ctx, citaID, func(tx repositories.Store, cita *models.Cita) error {
		if !cita.Estado.CanTransitionTo(models.EstadoRealizada) {
			return &models.StateError{CitaID: cita.ID, Estado: cita.Estado, Operation: "realizar"}
		}
		historial := &models.HistorialMedico{
			CitaID:      cita.ID,
			PacienteID:  cita.PacienteID,
			MedicoID:    cita.MedicoID,
			Diagnostico: diagnostico,
			Receta:      receta,
		}
		if err := tx.Historiales().Create(ctx, historial); err != nil {
			return duplicateAsConflict(err, "La cita ya tiene un historial médico.")
		}
		cita.Estado = models.EstadoRealizada
		cita.Historial = historial
		return tx.Citas().Save(ctx, cita)
	})
	if err != nil {
		return nil, err
	}
	s.transitioned(cita, "perform")
	return cita, nil
}

func (s *citaService) RemoveFromClinic(ctx context.Context, citaID, clinicaID uint) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		cita, err := tx.Citas().FindForUpdate(ctx, citaID)
		if err != nil {
			return err
		}
		if cita == nil {
			return &models.NotFoundError{Entity: "cita", Key: citaID}
		}
		if cita.ClinicaID != clinicaID {
			return &models.PermissionError{Reason: "No puedes eliminar una cita que no pertenece a tu clínica."}
		}
		if err := tx.Citas().Delete(ctx, citaID); err != nil {
			return err
		}
		s.log.Info("cita removed", zap.Uint("cita_id", citaID), zap.Uint("clinica_id", clinicaID))
		return nil
	})
}

func (s *citaService) ListByPatient(ctx context.Context, pacienteID uint) ([]models.Cita, error) {
	return s.store.Citas().ListByPaciente(ctx, pacienteID)
}

func (s *citaService) ListByDoctor(ctx context.Context, medicoID uint) ([]models.Cita, error) {
	return s.store.Citas().ListByMedico(ctx, medicoID)
}

func (s *citaService) ListByClinic(ctx context.Context, clinicaID uint) ([]models.Cita, error) {
	return s.store.Citas().ListByClinica(ctx, clinicaID)
}

func (s *citaService) Get(ctx context.Context, citaID uint) (*models.Cita, error) {
	cita, err := s.store.Citas().FindByID(ctx, citaID)
	if err != nil {
		return nil, err
	}
	if cita == nil {
		return nil, &models.NotFoundError{Entity: "cita", Key: citaID}
	}
	return cita, nil
}

// mutate loads the cita under a row lock and applies fn in one transaction.
func (s *citaService) mutate(ctx context.Context, citaID uint, fn func(tx repositories.Store, cita *models.Cita) error) (*models.Cita, error) {
	var result *models.Cita
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		cita, err := tx.Citas().FindForUpdate(ctx, citaID)
		if err != nil {
			return err
		}
		if cita == nil {
			return &models.NotFoundError{Entity: "cita", Key: citaID}
		}
		if err := fn(tx, cita); err != nil {
			return err
		}
		result = cita
		return nil
	})
	return result, err
}

func (s *citaService) ensureSlotFree(ctx context.Context, tx repositories.Store, clinicaID uint, fechaHora time.Time, excludeID uint) error {
	other, err := tx.Citas().FindActiveBySlot(ctx, clinicaID, fechaHora, excludeID)
	if err != nil {
		return err
	}
	if other != nil {
		s.slotConflict(clinicaID, fechaHora)
		return &models.ConflictError{Reason: slotTakenReason}
	}
	return nil
}

// saveSlot writes a slot-affecting change; the unique index has the final word.
func (s *citaService) saveSlot(ctx context.Context, tx repositories.Store, cita *models.Cita) error {
	err := tx.Citas().Save(ctx, cita)
	if errors.Is(err, repositories.ErrDuplicateKey) {
		s.slotConflict(cita.ClinicaID, cita.FechaHora)
		return &models.ConflictError{Reason: slotTakenReason}
	}
	return err
}

func (s *citaService) slotConflict(clinicaID uint, fechaHora time.Time) {
	s.log.Info("slot conflict", zap.Uint("clinica_id", clinicaID), zap.Time("fecha_hora", fechaHora))
	if s.metrics != nil {
		s.metrics.SlotConflicts.Inc()
	}
}

func (s *citaService) transitioned(cita *models.Cita, operation string) {
	s.log.Info("cita transitioned",
		zap.String("operation", operation),
		zap.Uint("cita_id", cita.ID),
		zap.String("estado", string(cita.Estado)),
	)
	if s.metrics != nil {
		s.metrics.CitaTransitions.WithLabelValues(string(cita.Estado)).Inc()
	}
}

// notify sends a best-effort confirmation; failures are logged only.
func (s *citaService) notify(ctx context.Context, cita models.Cita, subject string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCita(ctx, cita, subject); err != nil {
		s.log.Warn("failed to send cita notification", zap.Uint("cita_id", cita.ID), zap.Error(err))
		if s.metrics != nil {
			s.metrics.NotificationFail.Inc()
		}
	}
}
