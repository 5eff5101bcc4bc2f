package repositories

import (
	"MediCitas/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slot = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMemoryStore_SeedsBaseRoles(t *testing.T) {
	store := NewMemoryStore()
	roles, err := store.Roles().List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, models.RolPaciente, roles[0].Nombre)
	assert.Equal(t, models.RolMedico, roles[1].Nombre)
	assert.Equal(t, models.RolClinica, roles[2].Nombre)
}

func TestMemoryStore_LookupsOfMissingRowsReturnNil(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, err := store.Usuarios().FindByLogin(ctx, "nadie")
	assert.NoError(t, err)
	assert.Nil(t, u)

	c, err := store.Citas().FindByID(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, c)

	h, err := store.Historiales().FindByCita(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestMemoryStore_TransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.Usuarios().Save(ctx, &models.Usuario{Login: "ana", Email: "ana@example.com", Nombre: "Ana"}))
		require.NoError(t, tx.Clinicas().Create(ctx, &models.Clinica{Nombre: "Ana", UsuarioID: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := store.Usuarios().FindByLogin(ctx, "ana")
	require.NoError(t, err)
	assert.Nil(t, u)
	clinicas, err := store.Clinicas().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, clinicas)
}

func TestMemoryStore_TransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Transaction(ctx, func(tx Store) error {
		return tx.Usuarios().Save(ctx, &models.Usuario{Login: "ana", Email: "ana@example.com", Nombre: "Ana"})
	})
	require.NoError(t, err)

	u, err := store.Usuarios().FindByLogin(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, uint(1), u.ID)
}

func TestMemoryStore_UniqueLoginAndEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Usuarios().Save(ctx, &models.Usuario{Login: "ana", Email: "ana@example.com"}))

	err := store.Usuarios().Save(ctx, &models.Usuario{Login: "ana", Email: "otra@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	err = store.Usuarios().Save(ctx, &models.Usuario{Login: "otra", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryStore_UsuarioUpdateMergesRoles(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	u := &models.Usuario{Login: "ana", Email: "ana@example.com", Roles: []models.Rol{{ID: 1, Nombre: models.RolPaciente}}}
	require.NoError(t, store.Usuarios().Save(ctx, u))

	u.Roles = []models.Rol{{ID: 3, Nombre: models.RolClinica}}
	require.NoError(t, store.Usuarios().Save(ctx, u))

	stored, err := store.Usuarios().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RolPaciente, models.RolClinica}, stored.RoleNames())
}

func TestMemoryStore_OneClinicaPerOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Clinicas().Create(ctx, &models.Clinica{Nombre: "A", UsuarioID: 7}))
	err := store.Clinicas().Create(ctx, &models.Clinica{Nombre: "B", UsuarioID: 7})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryStore_OneActiveCitaPerSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	citas := store.Citas()

	first := &models.Cita{ClinicaID: 1, FechaHora: slot, Estado: models.EstadoReservada}
	require.NoError(t, citas.Save(ctx, first))

	second := &models.Cita{ClinicaID: 1, FechaHora: slot.In(time.FixedZone("COT", -5*3600)), Estado: models.EstadoReservada}
	assert.ErrorIs(t, citas.Save(ctx, second), ErrDuplicateKey)

	otherClinic := &models.Cita{ClinicaID: 2, FechaHora: slot, Estado: models.EstadoReservada}
	assert.NoError(t, citas.Save(ctx, otherClinic))

	first.Estado = models.EstadoCancelada
	require.NoError(t, citas.Save(ctx, first))
	assert.NoError(t, citas.Save(ctx, second))
}

func TestMemoryStore_FindActiveBySlotExcludesID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cita := &models.Cita{ClinicaID: 1, FechaHora: slot, Estado: models.EstadoReservada}
	require.NoError(t, store.Citas().Save(ctx, cita))

	found, err := store.Citas().FindActiveBySlot(ctx, 1, slot, 0)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cita.ID, found.ID)

	found, err = store.Citas().FindActiveBySlot(ctx, 1, slot, cita.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryStore_ReturnedValuesAreDetached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	valor := 100.0
	cita := &models.Cita{ClinicaID: 1, FechaHora: slot, Estado: models.EstadoFacturada, ValorPagar: &valor}
	require.NoError(t, store.Citas().Save(ctx, cita))

	loaded, err := store.Citas().FindByID(ctx, cita.ID)
	require.NoError(t, err)
	*loaded.ValorPagar = 1
	loaded.Estado = models.EstadoCancelada

	again, err := store.Citas().FindByID(ctx, cita.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *again.ValorPagar)
	assert.Equal(t, models.EstadoFacturada, again.Estado)
}

func TestMemoryStore_DeleteCitaRemovesHistorial(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cita := &models.Cita{ClinicaID: 1, FechaHora: slot, Estado: models.EstadoRealizada}
	require.NoError(t, store.Citas().Save(ctx, cita))
	require.NoError(t, store.Historiales().Create(ctx, &models.HistorialMedico{CitaID: cita.ID, Diagnostico: "gripe"}))

	loaded, err := store.Citas().FindByID(ctx, cita.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Historial)

	require.NoError(t, store.Citas().Delete(ctx, cita.ID))
	h, err := store.Historiales().FindByCita(ctx, cita.ID)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestMemoryStore_ListsAreOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	later := &models.Cita{PacienteID: 5, ClinicaID: 1, FechaHora: slot.Add(time.Hour), Estado: models.EstadoReservada}
	earlier := &models.Cita{PacienteID: 5, ClinicaID: 1, FechaHora: slot, Estado: models.EstadoReservada}
	require.NoError(t, store.Citas().Save(ctx, later))
	require.NoError(t, store.Citas().Save(ctx, earlier))

	citas, err := store.Citas().ListByPaciente(ctx, 5)
	require.NoError(t, err)
	require.Len(t, citas, 2)
	assert.Equal(t, earlier.ID, citas[0].ID)
	assert.Equal(t, later.ID, citas[1].ID)
}

func TestMemoryStore_TransactionHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Transaction(ctx, func(tx Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryStore_NestedTransactionRollsBackAlone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.Clinicas().Create(ctx, &models.Clinica{Nombre: "Ana", UsuarioID: 1}))
		inner := tx.Transaction(ctx, func(inner Store) error {
			return inner.Clinicas().Create(ctx, &models.Clinica{Nombre: "Ana", UsuarioID: 1})
		})
		assert.ErrorIs(t, inner, ErrDuplicateKey)
		return tx.Clinicas().Create(ctx, &models.Clinica{Nombre: "Beto", UsuarioID: 2})
	})
	require.NoError(t, err)

	clinicas, err := store.Clinicas().List(ctx)
	require.NoError(t, err)
	assert.Len(t, clinicas, 2)
}
