package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by PostgreSQL through gorm.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Usuarios() UsuarioRepository { return &usuarioRepository{db: s.db} }
func (s *gormStore) Roles() RolRepository { return &rolRepository{db: s.db} }
func (s *gormStore) Clinicas() ClinicaRepository { return &clinicaRepository{db: s.db} }
func (s *gormStore) Citas() CitaRepository { return &citaRepository{db: s.db} }
func (s *gormStore) Historiales() HistorialRepository { return &historialRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translateError maps driver errors onto repository errors and wraps the rest.
func translateError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrapf(ErrDuplicateKey, "%s: %s", msg, pgErr.ConstraintName)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(ErrDuplicateKey, msg)
	}
	return errors.Wrap(err, msg)
}

func notFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}
