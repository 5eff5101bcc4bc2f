package services

import (
	"MediCitas/models"
	"MediCitas/repositories"
	"MediCitas/utils"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	rolPacienteID uint = 1
	rolMedicoID   uint = 2
	rolClinicaID  uint = 3

	testPassword = "Secreta#2025"
)

var slotMarzo = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testHasher() utils.BcryptHasher {
	return utils.BcryptHasher{Cost: bcrypt.MinCost}
}

func identity(login string) Identity {
	return Identity{
		Login:     login,
		Email:     login + "@example.com",
		Password:  testPassword,
		Nombre:    "Nombre " + login,
		Documento: "CC-" + login,
	}
}

// fixture is a memory store with two patients, one clinic and two doctors
// working for it.
type fixture struct {
	store    *repositories.MemoryStore
	usuarios UsuarioService
	p1, p2   *models.Usuario
	owner    *models.Usuario
	clinica  *models.Clinica
	d1, d2   *models.Usuario
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	f := &fixture{store: store, usuarios: NewUsuarioService(store, testHasher(), opts...)}

	var err error
	f.p1, err = f.usuarios.ResolveOrRegister(ctx, identity("paciente1"), []uint{rolPacienteID})
	require.NoError(t, err)
	f.p2, err = f.usuarios.ResolveOrRegister(ctx, identity("paciente2"), []uint{rolPacienteID})
	require.NoError(t, err)
	f.owner, err = f.usuarios.ResolveOrRegister(ctx, identity("clinica1"), []uint{rolClinicaID})
	require.NoError(t, err)
	f.clinica, err = store.Clinicas().FindByUsuario(ctx, f.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, f.clinica)
	f.d1, err = f.usuarios.RegisterDoctorForClinic(ctx, identity("medico1"), f.owner.ID)
	require.NoError(t, err)
	f.d2, err = f.usuarios.RegisterDoctorForClinic(ctx, identity("medico2"), f.owner.ID)
	require.NoError(t, err)
	return f
}

type sentMail struct {
	cita    models.Cita
	subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) NotifyCita(_ context.Context, cita models.Cita, subject string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{cita: cita, subject: subject})
	return n.err
}

type fakeLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	hits    int
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}
