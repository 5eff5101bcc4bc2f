package repositories

import (
	"MediCitas/models"
	"context"

	"gorm.io/gorm"
)

type usuarioRepository struct {
	db *gorm.DB
}

func (r *usuarioRepository) findOne(ctx context.Context, query string, arg any) (*models.Usuario, error) {
	var usuario models.Usuario
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where(query, arg).
		First(&usuario).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch usuario")
	}
	return &usuario, nil
}

func (r *usuarioRepository) FindByID(ctx context.Context, id uint) (*models.Usuario, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *usuarioRepository) FindByLogin(ctx context.Context, login string) (*models.Usuario, error) {
	return r.findOne(ctx, "login = ?", login)
}

func (r *usuarioRepository) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *usuarioRepository) ListMedicosByClinica(ctx context.Context, clinicaID uint) ([]models.Usuario, error) {
	var medicos []models.Usuario
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Joins("JOIN usuario_roles ur ON ur.usuario_id = usuarios.id").
		Joins("JOIN roles r ON r.id = ur.rol_id").
		Where("usuarios.clinica_id = ? AND r.nombre = ?", clinicaID, models.RolMedico).
		Order("usuarios.id").
		Find(&medicos).Error
	if err != nil {
		return nil, translateError(err, "failed to list medicos")
	}
	return medicos, nil
}

// Save creates or updates the account and adds any new role links.
func (r *usuarioRepository) Save(ctx context.Context, usuario *models.Usuario) error {
	db := r.db.WithContext(ctx)
	if usuario.ID == 0 {
		return translateError(db.Create(usuario).Error, "failed to create usuario")
	}
	err := db.Model(usuario).
		Select("login", "email", "password", "nombre", "documento", "clinica_id").
		Updates(usuario).Error
	if err != nil {
		return translateError(err, "failed to update usuario")
	}
	if len(usuario.Roles) > 0 {
		// Append also grows the model's own slice, so link through a detached copy.
		roles := append([]models.Rol(nil), usuario.Roles...)
		if err := db.Model(&models.Usuario{ID: usuario.ID}).Association("Roles").Append(roles); err != nil {
			return translateError(err, "failed to link roles")
		}
	}
	return nil
}

type rolRepository struct {
	db *gorm.DB
}

func (r *rolRepository) FindByID(ctx context.Context, id uint) (*models.Rol, error) {
	var rol models.Rol
	if err := r.db.WithContext(ctx).First(&rol, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch rol")
	}
	return &rol, nil
}

func (r *rolRepository) FindByNombre(ctx context.Context, nombre string) (*models.Rol, error) {
	var rol models.Rol
	if err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&rol).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch rol")
	}
	return &rol, nil
}

func (r *rolRepository) List(ctx context.Context) ([]models.Rol, error) {
	var roles []models.Rol
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, translateError(err, "failed to list roles")
	}
	return roles, nil
}

type clinicaRepository struct {
	db *gorm.DB
}

func (r *clinicaRepository) FindByID(ctx context.Context, id uint) (*models.Clinica, error) {
	var clinica models.Clinica
	if err := r.db.WithContext(ctx).First(&clinica, id).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch clinica")
	}
	return &clinica, nil
}

func (r *clinicaRepository) FindByUsuario(ctx context.Context, usuarioID uint) (*models.Clinica, error) {
	var clinica models.Clinica
	if err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).First(&clinica).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, translateError(err, "failed to fetch clinica")
	}
	return &clinica, nil
}

func (r *clinicaRepository) List(ctx context.Context) ([]models.Clinica, error) {
	var clinicas []models.Clinica
	if err := r.db.WithContext(ctx).Order("id").Find(&clinicas).Error; err != nil {
		return nil, translateError(err, "failed to list clinicas")
	}
	return clinicas, nil
}

func (r *clinicaRepository) Create(ctx context.Context, clinica *models.Clinica) error {
	return translateError(r.db.WithContext(ctx).Create(clinica).Error, "failed to create clinica")
}
