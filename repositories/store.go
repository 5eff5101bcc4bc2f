package repositories

import (
	"MediCitas/models"
	"context"
	"errors"
	"time"
)

// ErrDuplicateKey is returned when a write violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// Lookups that find nothing return (nil, nil); only infrastructure failures are errors.

type UsuarioRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Usuario, error)
	FindByLogin(ctx context.Context, login string) (*models.Usuario, error)
	FindByEmail(ctx context.Context, email string) (*models.Usuario, error)
	ListMedicosByClinica(ctx context.Context, clinicaID uint) ([]models.Usuario, error)
	Save(ctx context.Context, usuario *models.Usuario) error
}

type RolRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Rol, error)
	FindByNombre(ctx context.Context, nombre string) (*models.Rol, error)
	List(ctx context.Context) ([]models.Rol, error)
}

type ClinicaRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Clinica, error)
	FindByUsuario(ctx context.Context, usuarioID uint) (*models.Clinica, error)
	List(ctx context.Context) ([]models.Clinica, error)
	Create(ctx context.Context, clinica *models.Clinica) error
}

type CitaRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Cita, error)
	// FindForUpdate loads the cita and holds a row lock until the transaction ends.
	FindForUpdate(ctx context.Context, id uint) (*models.Cita, error)
	// FindActiveBySlot returns the first non-cancelled cita at the clinic and
	// instant, ignoring excludeID (0 ignores nothing).
	FindActiveBySlot(ctx context.Context, clinicaID uint, fechaHora time.Time, excludeID uint) (*models.Cita, error)
	ListByPaciente(ctx context.Context, pacienteID uint) ([]models.Cita, error)
	ListByMedico(ctx context.Context, medicoID uint) ([]models.Cita, error)
	ListByClinica(ctx context.Context, clinicaID uint) ([]models.Cita, error)
	Save(ctx context.Context, cita *models.Cita) error
	Delete(ctx context.Context, id uint) error
}

type HistorialRepository interface {
	FindByCita(ctx context.Context, citaID uint) (*models.HistorialMedico, error)
	ListByPaciente(ctx context.Context, pacienteID uint) ([]models.HistorialMedico, error)
	ListByMedico(ctx context.Context, medicoID uint) ([]models.HistorialMedico, error)
	Create(ctx context.Context, historial *models.HistorialMedico) error
}

// Store groups the repositories behind one transaction boundary.
type Store interface {
	Usuarios() UsuarioRepository
	Roles() RolRepository
	Clinicas() ClinicaRepository
	Citas() CitaRepository
	Historiales() HistorialRepository

	// Transaction runs fn against a store bound to a single transaction.
	// Any error returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
