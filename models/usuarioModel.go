package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names seeded on startup.
const (
	RolPaciente = "PACIENTE"
	RolMedico   = "MEDICO"
	RolClinica  = "CLINICA"
)

// Rol model
type Rol struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Nombre string `gorm:"column:nombre;unique;not null" json:"nombre"`
}

func (Rol) TableName() string {
	return "roles"
}

// Usuario model. Roles are only ever added to an account, never removed.
type Usuario struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Login     string    `gorm:"column:login;unique;not null" json:"login"`
	Email     string    `gorm:"column:email;unique;not null" json:"email"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	Nombre    string    `gorm:"column:nombre;not null" json:"nombre"`
	Documento string    `gorm:"column:documento" json:"documento"`
	ClinicaID *uint     `gorm:"column:clinica_id;index" json:"clinica_id,omitempty"`
	Roles     []Rol     `gorm:"many2many:usuario_roles;joinForeignKey:UsuarioID;joinReferences:RolID" json:"roles"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

// HasRole reports whether the account holds the named role.
func (u *Usuario) HasRole(nombre string) bool {
	for _, r := range u.Roles {
		if r.Nombre == nombre {
			return true
		}
	}
	return false
}

// MergeRoles adds every role not already held, keyed by role id.
// It returns the number of roles actually added.
func (u *Usuario) MergeRoles(roles ...Rol) int {
	held := make(map[uint]struct{}, len(u.Roles))
	for _, r := range u.Roles {
		held[r.ID] = struct{}{}
	}
	added := 0
	for _, r := range roles {
		if _, ok := held[r.ID]; ok {
			continue
		}
		held[r.ID] = struct{}{}
		u.Roles = append(u.Roles, r)
		added++
	}
	return added
}

// RoleNames returns the names of the held roles in assignment order.
func (u *Usuario) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Nombre)
	}
	return names
}

// Clinica model. At most one per owning account.
type Clinica struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Nombre    string    `gorm:"column:nombre;not null" json:"nombre"`
	UsuarioID uint      `gorm:"column:usuario_id;not null;uniqueIndex:idx_clinica_usuario" json:"usuario_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Clinica) TableName() string {
	return "clinicas"
}

// SeedRoles inserts the base roles if they do not exist yet.
func SeedRoles(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, nombre := range []string{RolPaciente, RolMedico, RolClinica} {
			rol := Rol{Nombre: nombre}
			if err := tx.Where(Rol{Nombre: nombre}).FirstOrCreate(&rol).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
