package repositories

import (
	"MediCitas/models"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type memoryData struct {
	usuarios    map[uint]models.Usuario
	roles       map[uint]models.Rol
	clinicas    map[uint]models.Clinica
	citas       map[uint]models.Cita
	historiales map[uint]models.HistorialMedico
	lastID      map[string]uint
}

func newMemoryData() *memoryData {
	return &memoryData{
		usuarios:    map[uint]models.Usuario{},
		roles:       map[uint]models.Rol{},
		clinicas:    map[uint]models.Clinica{},
		citas:       map[uint]models.Cita{},
		historiales: map[uint]models.HistorialMedico{},
		lastID:      map[string]uint{},
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.usuarios {
		c.usuarios[k] = copyUsuario(v)
	}
	for k, v := range d.roles {
		c.roles[k] = v
	}
	for k, v := range d.clinicas {
		c.clinicas[k] = v
	}
	for k, v := range d.citas {
		c.citas[k] = v
	}
	for k, v := range d.historiales {
		c.historiales[k] = v
	}
	for k, v := range d.lastID {
		c.lastID[k] = v
	}
	return c
}

func (d *memoryData) nextID(table string) uint {
	d.lastID[table]++
	return d.lastID[table]
}

func copyUsuario(u models.Usuario) models.Usuario {
	u.Roles = append([]models.Rol(nil), u.Roles...)
	if u.ClinicaID != nil {
		id := *u.ClinicaID
		u.ClinicaID = &id
	}
	return u
}

// MemoryStore is an in-process Store. Transactions are serialized by a mutex
// and run against a copy that replaces the live data only when fn succeeds.
// Code running inside Transaction must use the tx store it is handed.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
	tx   bool
}

// NewMemoryStore returns an empty store seeded with the base roles.
func NewMemoryStore() *MemoryStore {
	d := newMemoryData()
	for _, nombre := range []string{models.RolPaciente, models.RolMedico, models.RolClinica} {
		id := d.nextID("roles")
		d.roles[id] = models.Rol{ID: id, Nombre: nombre}
	}
	return &MemoryStore{data: d}
}

func (s *MemoryStore) Usuarios() UsuarioRepository { return memoryUsuarios{s} }
func (s *MemoryStore) Roles() RolRepository { return memoryRoles{s} }
func (s *MemoryStore) Clinicas() ClinicaRepository { return memoryClinicas{s} }
func (s *MemoryStore) Citas() CitaRepository { return memoryCitas{s} }
func (s *MemoryStore) Historiales() HistorialRepository { return memoryHistoriales{s} }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if !s.tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	work := &MemoryStore{data: s.data.clone(), tx: true}
	if err := fn(work); err != nil {
		return err
	}
	*s.data = *work.data
	return nil
}

// view runs fn with the data guarded when called outside a transaction.
func (s *MemoryStore) view(fn func(d *memoryData) error) error {
	if !s.tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

type memoryUsuarios struct{ s *MemoryStore }

func (r memoryUsuarios) find(match func(models.Usuario) bool) (*models.Usuario, error) {
	var found *models.Usuario
	err := r.s.view(func(d *memoryData) error {
		for _, u := range d.usuarios {
			if match(u) {
				c := copyUsuario(u)
				found = &c
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r memoryUsuarios) FindByID(_ context.Context, id uint) (*models.Usuario, error) {
	return r.find(func(u models.Usuario) bool { return u.ID == id })
}

func (r memoryUsuarios) FindByLogin(_ context.Context, login string) (*models.Usuario, error) {
	return r.find(func(u models.Usuario) bool { return u.Login == login })
}

func (r memoryUsuarios) FindByEmail(_ context.Context, email string) (*models.Usuario, error) {
	return r.find(func(u models.Usuario) bool { return u.Email == email })
}

func (r memoryUsuarios) ListMedicosByClinica(_ context.Context, clinicaID uint) ([]models.Usuario, error) {
	var medicos []models.Usuario
	err := r.s.view(func(d *memoryData) error {
		for _, u := range d.usuarios {
			if u.ClinicaID != nil && *u.ClinicaID == clinicaID && u.HasRole(models.RolMedico) {
				medicos = append(medicos, copyUsuario(u))
			}
		}
		return nil
	})
	sort.Slice(medicos, func(i, j int) bool { return medicos[i].ID < medicos[j].ID })
	return medicos, err
}

func (r memoryUsuarios) Save(_ context.Context, usuario *models.Usuario) error {
	return r.s.view(func(d *memoryData) error {
		for _, u := range d.usuarios {
			if u.ID == usuario.ID {
				continue
			}
			if u.Login == usuario.Login || u.Email == usuario.Email {
				return errors.Wrap(ErrDuplicateKey, "failed to save usuario")
			}
		}
		stored := copyUsuario(*usuario)
		if usuario.ID == 0 {
			stored.ID = d.nextID("usuarios")
			stored.CreatedAt = time.Now()
		} else if prev, ok := d.usuarios[usuario.ID]; ok {
			merged := copyUsuario(prev)
			merged.MergeRoles(stored.Roles...)
			stored.Roles = merged.Roles
			stored.CreatedAt = prev.CreatedAt
		}
		d.usuarios[stored.ID] = stored
		usuario.ID = stored.ID
		usuario.CreatedAt = stored.CreatedAt
		return nil
	})
}

type memoryRoles struct{ s *MemoryStore }

func (r memoryRoles) FindByID(_ context.Context, id uint) (*models.Rol, error) {
	var found *models.Rol
	err := r.s.view(func(d *memoryData) error {
		if rol, ok := d.roles[id]; ok {
			found = &rol
		}
		return nil
	})
	return found, err
}

func (r memoryRoles) FindByNombre(_ context.Context, nombre string) (*models.Rol, error) {
	var found *models.Rol
	err := r.s.view(func(d *memoryData) error {
		for _, rol := range d.roles {
			if rol.Nombre == nombre {
				rol := rol
				found = &rol
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r memoryRoles) List(_ context.Context) ([]models.Rol, error) {
	var roles []models.Rol
	err := r.s.view(func(d *memoryData) error {
		for _, rol := range d.roles {
			roles = append(roles, rol)
		}
		return nil
	})
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, err
}

type memoryClinicas struct{ s *MemoryStore }

func (r memoryClinicas) FindByID(_ context.Context, id uint) (*models.Clinica, error) {
	var found *models.Clinica
	err := r.s.view(func(d *memoryData) error {
		if c, ok := d.clinicas[id]; ok {
			found = &c
		}
		return nil
	})
	return found, err
}

func (r memoryClinicas) FindByUsuario(_ context.Context, usuarioID uint) (*models.Clinica, error) {
	var found *models.Clinica
	err := r.s.view(func(d *memoryData) error {
		for _, c := range d.clinicas {
			if c.UsuarioID == usuarioID {
				c := c
				found = &c
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r memoryClinicas) List(_ context.Context) ([]models.Clinica, error) {
	var clinicas []models.Clinica
	err := r.s.view(func(d *memoryData) error {
		for _, c := range d.clinicas {
			clinicas = append(clinicas, c)
		}
		return nil
	})
	sort.Slice(clinicas, func(i, j int) bool { return clinicas[i].ID < clinicas[j].ID })
	return clinicas, err
}

func (r memoryClinicas) Create(_ context.Context, clinica *models.Clinica) error {
	return r.s.view(func(d *memoryData) error {
		for _, c := range d.clinicas {
			if c.UsuarioID == clinica.UsuarioID {
				return errors.Wrap(ErrDuplicateKey, "failed to create clinica")
			}
		}
		clinica.ID = d.nextID("clinicas")
		clinica.CreatedAt = time.Now()
		d.clinicas[clinica.ID] = *clinica
		return nil
	})
}

type memoryCitas struct{ s *MemoryStore }

// withHistorial returns a detached copy of c carrying its historial, if any.
func withHistorial(d *memoryData, c models.Cita) models.Cita {
	c.Historial = nil
	for _, h := range d.historiales {
		if h.CitaID == c.ID {
			h := h
			c.Historial = &h
			break
		}
	}
	if c.ValorPagar != nil {
		v := *c.ValorPagar
		c.ValorPagar = &v
	}
	return c
}

func (r memoryCitas) FindByID(_ context.Context, id uint) (*models.Cita, error) {
	var found *models.Cita
	err := r.s.view(func(d *memoryData) error {
		if c, ok := d.citas[id]; ok {
			c = withHistorial(d, c)
			found = &c
		}
		return nil
	})
	return found, err
}

// FindForUpdate needs no extra locking: transactions are already exclusive.
func (r memoryCitas) FindForUpdate(ctx context.Context, id uint) (*models.Cita, error) {
	return r.FindByID(ctx, id)
}

func activeSlotTaken(d *memoryData, clinicaID uint, fechaHora time.Time, excludeID uint) *models.Cita {
	var first *models.Cita
	for _, c := range d.citas {
		if c.ID == excludeID || c.ClinicaID != clinicaID || c.Estado == models.EstadoCancelada {
			continue
		}
		if !c.FechaHora.Equal(fechaHora) {
			continue
		}
		if first == nil || c.ID < first.ID {
			c := c
			first = &c
		}
	}
	return first
}

func (r memoryCitas) FindActiveBySlot(_ context.Context, clinicaID uint, fechaHora time.Time, excludeID uint) (*models.Cita, error) {
	var found *models.Cita
	err := r.s.view(func(d *memoryData) error {
		if c := activeSlotTaken(d, clinicaID, fechaHora, excludeID); c != nil {
			cc := withHistorial(d, *c)
			found = &cc
		}
		return nil
	})
	return found, err
}

func (r memoryCitas) list(match func(models.Cita) bool) ([]models.Cita, error) {
	var citas []models.Cita
	err := r.s.view(func(d *memoryData) error {
		for _, c := range d.citas {
			if match(c) {
				citas = append(citas, withHistorial(d, c))
			}
		}
		return nil
	})
	sort.Slice(citas, func(i, j int) bool {
		if citas[i].FechaHora.Equal(citas[j].FechaHora) {
			return citas[i].ID < citas[j].ID
		}
		return citas[i].FechaHora.Before(citas[j].FechaHora)
	})
	return citas, err
}

func (r memoryCitas) ListByPaciente(_ context.Context, pacienteID uint) ([]models.Cita, error) {
	return r.list(func(c models.Cita) bool { return c.PacienteID == pacienteID })
}

func (r memoryCitas) ListByMedico(_ context.Context, medicoID uint) ([]models.Cita, error) {
	return r.list(func(c models.Cita) bool { return c.MedicoID == medicoID })
}

func (r memoryCitas) ListByClinica(_ context.Context, clinicaID uint) ([]models.Cita, error) {
	return r.list(func(c models.Cita) bool { return c.ClinicaID == clinicaID })
}

// Save enforces the same one-active-cita-per-slot rule as the partial unique index.
func (r memoryCitas) Save(_ context.Context, cita *models.Cita) error {
	return r.s.view(func(d *memoryData) error {
		if cita.Estado != models.EstadoCancelada {
			if activeSlotTaken(d, cita.ClinicaID, cita.FechaHora, cita.ID) != nil {
				return errors.Wrap(ErrDuplicateKey, "failed to save cita: idx_citas_slot_activa")
			}
		}
		now := time.Now()
		stored := *cita
		stored.Historial = nil
		if stored.ValorPagar != nil {
			v := *stored.ValorPagar
			stored.ValorPagar = &v
		}
		if stored.ID == 0 {
			stored.ID = d.nextID("citas")
			stored.CreatedAt = now
		} else if prev, ok := d.citas[stored.ID]; ok {
			stored.CreatedAt = prev.CreatedAt
		}
		stored.UpdatedAt = now
		d.citas[stored.ID] = stored
		cita.ID = stored.ID
		cita.CreatedAt = stored.CreatedAt
		cita.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r memoryCitas) Delete(_ context.Context, id uint) error {
	return r.s.view(func(d *memoryData) error {
		delete(d.citas, id)
		for hid, h := range d.historiales {
			if h.CitaID == id {
				delete(d.historiales, hid)
			}
		}
		return nil
	})
}

type memoryHistoriales struct{ s *MemoryStore }

func (r memoryHistoriales) FindByCita(_ context.Context, citaID uint) (*models.HistorialMedico, error) {
	var found *models.HistorialMedico
	err := r.s.view(func(d *memoryData) error {
		for _, h := range d.historiales {
			if h.CitaID == citaID {
				h := h
				found = &h
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r memoryHistoriales) list(match func(models.HistorialMedico) bool) ([]models.HistorialMedico, error) {
	var historiales []models.HistorialMedico
	err := r.s.view(func(d *memoryData) error {
		for _, h := range d.historiales {
			if match(h) {
				historiales = append(historiales, h)
			}
		}
		return nil
	})
	sort.Slice(historiales, func(i, j int) bool { return historiales[i].ID < historiales[j].ID })
	return historiales, err
}

func (r memoryHistoriales) ListByPaciente(_ context.Context, pacienteID uint) ([]models.HistorialMedico, error) {
	return r.list(func(h models.HistorialMedico) bool { return h.PacienteID == pacienteID })
}

func (r memoryHistoriales) ListByMedico(_ context.Context, medicoID uint) ([]models.HistorialMedico, error) {
	return r.list(func(h models.HistorialMedico) bool { return h.MedicoID == medicoID })
}

func (r memoryHistoriales) Create(_ context.Context, historial *models.HistorialMedico) error {
	return r.s.view(func(d *memoryData) error {
		for _, h := range d.historiales {
			if h.CitaID == historial.CitaID {
				return errors.Wrap(ErrDuplicateKey, "failed to create historial")
			}
		}
		historial.ID = d.nextID("historiales_medicos")
		historial.CreatedAt = time.Now()
		d.historiales[historial.ID] = *historial
		return nil
	})
}
