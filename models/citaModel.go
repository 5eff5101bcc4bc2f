package models

import "time"

// Estado is the lifecycle state of a Cita.
type Estado string

const (
	EstadoReservada Estado = "RESERVADA"
	EstadoFacturada Estado = "FACTURADA"
	EstadoRealizada Estado = "REALIZADA"
	EstadoCancelada Estado = "CANCELADA"
)

var citaTransitions = map[Estado][]Estado{
	EstadoReservada: {EstadoFacturada, EstadoCancelada},
	EstadoFacturada: {EstadoRealizada},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
func (s Estado) CanTransitionTo(next Estado) bool {
	for _, allowed := range citaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Estado) IsTerminal() bool {
	return len(citaTransitions[s]) == 0
}

// Cita model. Names and document are copied at booking time.
type Cita struct {
	ID             uint             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PacienteID     uint             `gorm:"column:paciente_id;not null;index" json:"paciente_id"`
	MedicoID       uint             `gorm:"column:medico_id;not null;index" json:"medico_id"`
	ClinicaID      uint             `gorm:"column:clinica_id;not null;index" json:"clinica_id"`
	FechaHora      time.Time        `gorm:"column:fecha_hora;not null" json:"fecha_hora"`
	CorreoContacto string           `gorm:"column:correo_contacto" json:"correo_contacto"`
	Motivo         string           `gorm:"column:motivo;size:500" json:"motivo"`
	ValorPagar     *float64         `gorm:"column:valor_pagar;type:numeric(12,2)" json:"valor_pagar,omitempty"`
	PacienteNombre string           `gorm:"column:paciente_nombre" json:"paciente_nombre"`
	MedicoNombre   string           `gorm:"column:medico_nombre" json:"medico_nombre"`
	ClinicaNombre  string           `gorm:"column:clinica_nombre" json:"clinica_nombre"`
	Documento      string           `gorm:"column:documento" json:"documento"`
	Estado         Estado           `gorm:"column:estado;not null;check:estado IN ('RESERVADA', 'FACTURADA', 'REALIZADA', 'CANCELADA')" json:"estado"`
	Historial      *HistorialMedico `gorm:"foreignKey:CitaID;references:ID;constraint:OnDelete:CASCADE" json:"historial,omitempty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Cita) TableName() string {
	return "citas"
}

// HistorialMedico is created only when a Cita is performed.
type HistorialMedico struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	CitaID      uint      `gorm:"column:cita_id;not null;uniqueIndex:idx_historial_cita" json:"cita_id"`
	PacienteID  uint      `gorm:"column:paciente_id;not null;index" json:"paciente_id"`
	MedicoID    uint      `gorm:"column:medico_id;not null;index" json:"medico_id"`
	Diagnostico string    `gorm:"column:diagnostico;type:text;not null" json:"diagnostico"`
	Receta      string    `gorm:"column:receta;type:text" json:"receta"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (HistorialMedico) TableName() string {
	return "historiales_medicos"
}
