package repositories

import (
	"MediCitas/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGormStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

// setupDryRunStore builds statements without executing them.
func setupDryRunStore(t *testing.T) Store {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Discard,
		DryRun:                 true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewGormStore(db)
}

func TestGormStore_UpdateKeepsRoleSlice(t *testing.T) {
	store := setupDryRunStore(t)
	usuario := &models.Usuario{
		ID:     7,
		Login:  "sanrafael",
		Email:  "sanrafael@example.com",
		Nombre: "San Rafael",
		Roles: []models.Rol{
			{ID: 1, Nombre: models.RolPaciente},
			{ID: 3, Nombre: models.RolClinica},
		},
	}

	require.NoError(t, store.Usuarios().Save(context.Background(), usuario))
	require.NoError(t, store.Usuarios().Save(context.Background(), usuario))

	assert.Equal(t, []string{models.RolPaciente, models.RolClinica}, usuario.RoleNames())
}

func TestGormStore_FindByLoginNotFound(t *testing.T) {
	store, mock := setupGormStore(t)

	mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE login = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "email"}))

	u, err := store.Usuarios().FindByLogin(context.Background(), "nadie")
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindForUpdateLocksRow(t *testing.T) {
	store, mock := setupGormStore(t)

	mock.ExpectQuery(`SELECT \* FROM "citas" WHERE "citas"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinica_id", "estado"}).
			AddRow(3, 1, string(models.EstadoReservada)))

	cita, err := store.Citas().FindForUpdate(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, cita)
	assert.Equal(t, uint(3), cita.ID)
	assert.Equal(t, models.EstadoReservada, cita.Estado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindActiveBySlotExcludesID(t *testing.T) {
	store, mock := setupGormStore(t)
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "citas" WHERE .*clinica_id = \$1 AND fecha_hora = \$2 AND estado <> \$3.* AND id <> \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cita, err := store.Citas().FindActiveBySlot(context.Background(), 1, when, 9)
	assert.NoError(t, err)
	assert.Nil(t, cita)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UniqueViolationIsDuplicateKey(t *testing.T) {
	store, mock := setupGormStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "citas"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_citas_slot_activa"})
	mock.ExpectRollback()

	err := store.Citas().Save(context.Background(), &models.Cita{
		ClinicaID: 1,
		FechaHora: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Estado:    models.EstadoReservada,
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "idx_citas_slot_activa")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransactionRollsBackOnError(t *testing.T) {
	store, mock := setupGormStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "clinicas" WHERE usuario_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "usuario_id"}).AddRow(4, "Central", 2))
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(tx Store) error {
		clinica, err := tx.Clinicas().FindByUsuario(context.Background(), 2)
		require.NoError(t, err)
		require.NotNil(t, clinica)
		assert.Equal(t, "Central", clinica.Nombre)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil, "x"))

	dup := translateError(&pgconn.PgError{Code: "23505"}, "failed")
	assert.ErrorIs(t, dup, ErrDuplicateKey)

	other := translateError(&pgconn.PgError{Code: "40001"}, "failed")
	assert.NotErrorIs(t, other, ErrDuplicateKey)
	assert.Contains(t, other.Error(), "failed")

	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey, "failed"), ErrDuplicateKey)
}
