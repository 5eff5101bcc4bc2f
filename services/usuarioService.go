package services

import (
	"MediCitas/database"
	"MediCitas/models"
	"MediCitas/repositories"
	"MediCitas/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	listingCacheExpiry = 10 * time.Minute
	clinicasCacheKey   = "clinicas:all"
)

func medicosCacheKey(clinicaID uint) string {
	return fmt.Sprintf("clinicas:%d:medicos", clinicaID)
}

// Identity is the registration data of an account.
type Identity struct {
	Login     string
	Email     string
	Password  string
	Nombre    string
	Documento string
}

type UsuarioService interface {
	ResolveOrRegister(ctx context.Context, identity Identity, roleIDs []uint) (*models.Usuario, error)
	RegisterDoctorForClinic(ctx context.Context, identity Identity, clinicOwnerUserID uint) (*models.Usuario, error)
	Authenticate(ctx context.Context, login, plaintext string) (*models.Usuario, bool)
	ListDoctorsByClinic(ctx context.Context, clinicaID uint) ([]models.Usuario, error)
	ListClinics(ctx context.Context) ([]models.Clinica, error)
	FindUser(ctx context.Context, id uint) (*models.Usuario, error)
	FindClinic(ctx context.Context, id uint) (*models.Clinica, error)
	FindByLogin(ctx context.Context, login string) (*models.Usuario, error)
	ListRoles(ctx context.Context) ([]models.Rol, error)
}

type usuarioService struct {
	store  repositories.Store
	hasher PasswordHasher
	deps
}

func NewUsuarioService(store repositories.Store, hasher PasswordHasher, opts ...Option) UsuarioService {
	return &usuarioService{store: store, hasher: hasher, deps: newDeps(opts)}
}

// registration collects what a transaction did so side effects run after commit.
type registration struct {
	usuario         *models.Usuario
	createdUsuario  bool
	createdClinica  *models.Clinica
	attachedClinica uint
	detachedClinica uint
}

func (s *usuarioService) ResolveOrRegister(ctx context.Context, identity Identity, roleIDs []uint) (*models.Usuario, error) {
	if err := utils.ValidateIdentity(identity.Login, identity.Email, identity.Nombre); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, database.UsuarioLockKey(identity.Login), "registro en curso para "+identity.Login)
	if err != nil {
		return nil, err
	}
	defer release()

	var reg registration
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		reg, err = s.resolveOrRegister(ctx, tx, identity, roleIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterRegistration(ctx, reg)
	return reg.usuario, nil
}

func (s *usuarioService) resolveOrRegister(ctx context.Context, tx repositories.Store, identity Identity, roleIDs []uint) (registration, error) {
	var reg registration

	byLogin, err := tx.Usuarios().FindByLogin(ctx, identity.Login)
	if err != nil {
		return reg, err
	}
	byEmail, err := tx.Usuarios().FindByEmail(ctx, identity.Email)
	if err != nil {
		return reg, err
	}
	if byLogin != nil && byLogin.Email != identity.Email {
		return reg, &models.ConflictError{Reason: "El nombre de usuario ya está en uso con otro email."}
	}
	if byEmail != nil && byEmail.Login != identity.Login {
		return reg, &models.ConflictError{Reason: "El email ya está registrado con otro usuario."}
	}

	usuario := byLogin
	if usuario == nil {
		if err := utils.ValidatePassword(identity.Password); err != nil {
			return reg, err
		}
		hash, err := s.hasher.Hash(identity.Password)
		if err != nil {
			return reg, err
		}
		usuario = &models.Usuario{
			Login:     identity.Login,
			Email:     identity.Email,
			Password:  hash,
			Nombre:    identity.Nombre,
			Documento: identity.Documento,
		}
		reg.createdUsuario = true
	}

	roles := make([]models.Rol, 0, len(roleIDs))
	for _, id := range roleIDs {
		rol, err := tx.Roles().FindByID(ctx, id)
		if err != nil {
			return reg, err
		}
		if rol == nil {
			return reg, &models.NotFoundError{Entity: "rol", Key: id}
		}
		roles = append(roles, *rol)
	}
	usuario.MergeRoles(roles...)

	if err := tx.Usuarios().Save(ctx, usuario); err != nil {
		return reg, duplicateAsConflict(err, "El login o el email ya están registrados.")
	}

	if usuario.HasRole(models.RolClinica) {
		clinica, err := tx.Clinicas().FindByUsuario(ctx, usuario.ID)
		if err != nil {
			return reg, err
		}
		if clinica == nil {
			created, err := s.createClinica(ctx, tx, usuario)
			if err != nil {
				return reg, err
			}
			reg.createdClinica = created
		}
	}

	reg.usuario = usuario
	return reg, nil
}

// createClinica creates the clinic owned by usuario. It returns nil when a
// concurrent registration created it first.
func (s *usuarioService) createClinica(ctx context.Context, tx repositories.Store, usuario *models.Usuario) (*models.Clinica, error) {
	clinica := &models.Clinica{Nombre: usuario.Nombre, UsuarioID: usuario.ID}
	// A savepoint keeps the outer transaction usable after a unique violation.
	err := tx.Transaction(ctx, func(inner repositories.Store) error {
		return inner.Clinicas().Create(ctx, clinica)
	})
	if err == nil {
		return clinica, nil
	}
	if !errors.Is(err, repositories.ErrDuplicateKey) {
		return nil, err
	}
	existing, err := tx.Clinicas().FindByUsuario(ctx, usuario.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &models.ConflictError{Reason: "La cuenta ya tiene una clínica registrada."}
	}
	return nil, nil
}

func (s *usuarioService) RegisterDoctorForClinic(ctx context.Context, identity Identity, clinicOwnerUserID uint) (*models.Usuario, error) {
	if err := utils.ValidateIdentity(identity.Login, identity.Email, identity.Nombre); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, database.UsuarioLockKey(identity.Login), "registro en curso para "+identity.Login)
	if err != nil {
		return nil, err
	}
	defer release()

	var reg registration
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		rolMedico, err := tx.Roles().FindByNombre(ctx, models.RolMedico)
		if err != nil {
			return err
		}
		if rolMedico == nil {
			return &models.NotFoundError{Entity: "rol", Key: models.RolMedico}
		}

		reg, err = s.resolveOrRegister(ctx, tx, identity, []uint{rolMedico.ID})
		if err != nil {
			return err
		}

		clinica, err := tx.Clinicas().FindByUsuario(ctx, clinicOwnerUserID)
		if err != nil {
			return err
		}
		if clinica == nil {
			return &models.NotFoundError{Entity: "clinica del usuario", Key: clinicOwnerUserID}
		}

		if prev := reg.usuario.ClinicaID; prev != nil && *prev != clinica.ID {
			reg.detachedClinica = *prev
		}
		reg.usuario.ClinicaID = &clinica.ID
		reg.attachedClinica = clinica.ID
		return tx.Usuarios().Save(ctx, reg.usuario)
	})
	if err != nil {
		return nil, err
	}
	s.afterRegistration(ctx, reg)
	return reg.usuario, nil
}

func (s *usuarioService) afterRegistration(ctx context.Context, reg registration) {
	if reg.createdUsuario {
		s.log.Info("usuario registered", zap.Uint("usuario_id", reg.usuario.ID), zap.Strings("roles", reg.usuario.RoleNames()))
		if s.metrics != nil {
			s.metrics.UsuariosCreated.Inc()
		}
	}
	if reg.createdClinica != nil {
		s.log.Info("clinica created", zap.Uint("clinica_id", reg.createdClinica.ID), zap.Uint("usuario_id", reg.usuario.ID))
		if s.metrics != nil {
			s.metrics.ClinicasCreated.Inc()
		}
		s.invalidate(ctx, clinicasCacheKey)
	}
	if reg.attachedClinica != 0 {
		s.invalidate(ctx, medicosCacheKey(reg.attachedClinica))
	}
	if reg.detachedClinica != 0 {
		s.invalidate(ctx, medicosCacheKey(reg.detachedClinica))
	}
}

func (s *usuarioService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("failed to invalidate cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *usuarioService) Authenticate(ctx context.Context, login, plaintext string) (*models.Usuario, bool) {
	usuario, err := s.store.Usuarios().FindByLogin(ctx, login)
	if err != nil {
		s.log.Error("failed to look up login", zap.String("login", login), zap.Error(err))
		return nil, false
	}
	if usuario == nil || !s.hasher.Verify(plaintext, usuario.Password) {
		return nil, false
	}
	return usuario, true
}

func (s *usuarioService) ListDoctorsByClinic(ctx context.Context, clinicaID uint) ([]models.Usuario, error) {
	var medicos []models.Usuario
	key := medicosCacheKey(clinicaID)
	if s.readCache(ctx, key, &medicos) {
		return medicos, nil
	}
	medicos, err := s.store.Usuarios().ListMedicosByClinica(ctx, clinicaID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, medicos)
	return medicos, nil
}

func (s *usuarioService) ListClinics(ctx context.Context) ([]models.Clinica, error) {
	var clinicas []models.Clinica
	if s.readCache(ctx, clinicasCacheKey, &clinicas) {
		return clinicas, nil
	}
	clinicas, err := s.store.Clinicas().List(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, clinicasCacheKey, clinicas)
	return clinicas, nil
}

func (s *usuarioService) readCache(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.log.Warn("failed to read cache", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *usuarioService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, listingCacheExpiry); err != nil {
		s.log.Warn("failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *usuarioService) FindUser(ctx context.Context, id uint) (*models.Usuario, error) {
	usuario, err := s.store.Usuarios().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, &models.NotFoundError{Entity: "usuario", Key: id}
	}
	return usuario, nil
}

func (s *usuarioService) FindClinic(ctx context.Context, id uint) (*models.Clinica, error) {
	clinica, err := s.store.Clinicas().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinica == nil {
		return nil, &models.NotFoundError{Entity: "clinica", Key: id}
	}
	return clinica, nil
}

func (s *usuarioService) FindByLogin(ctx context.Context, login string) (*models.Usuario, error) {
	usuario, err := s.store.Usuarios().FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, &models.NotFoundError{Entity: "usuario", Key: login}
	}
	return usuario, nil
}

func (s *usuarioService) ListRoles(ctx context.Context) ([]models.Rol, error) {
	return s.store.Roles().List(ctx)
}
