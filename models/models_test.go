package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstado_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Estado
		want     bool
	}{
		{EstadoReservada, EstadoFacturada, true},
		{EstadoReservada, EstadoCancelada, true},
		{EstadoReservada, EstadoRealizada, false},
		{EstadoFacturada, EstadoRealizada, true},
		{EstadoFacturada, EstadoCancelada, false},
		{EstadoRealizada, EstadoCancelada, false},
		{EstadoCancelada, EstadoReservada, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEstado_IsTerminal(t *testing.T) {
	assert.False(t, EstadoReservada.IsTerminal())
	assert.False(t, EstadoFacturada.IsTerminal())
	assert.True(t, EstadoRealizada.IsTerminal())
	assert.True(t, EstadoCancelada.IsTerminal())
}

func TestUsuario_MergeRolesIsIdempotent(t *testing.T) {
	paciente := Rol{ID: 1, Nombre: RolPaciente}
	clinica := Rol{ID: 3, Nombre: RolClinica}

	u := &Usuario{Roles: []Rol{paciente}}
	assert.Equal(t, 0, u.MergeRoles(paciente))
	assert.Len(t, u.Roles, 1)

	assert.Equal(t, 1, u.MergeRoles(clinica, clinica))
	assert.Equal(t, []string{RolPaciente, RolClinica}, u.RoleNames())
	assert.True(t, u.HasRole(RolClinica))
	assert.False(t, u.HasRole(RolMedico))
}

func TestErrors_MatchSentinels(t *testing.T) {
	wrapped := fmt.Errorf("booking: %w", &ConflictError{Reason: "slot"})
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.NotErrorIs(t, wrapped, ErrState)

	assert.ErrorIs(t, &NotFoundError{Entity: "cita", Key: 9}, ErrNotFound)
	assert.ErrorIs(t, &StateError{CitaID: 1, Estado: EstadoRealizada, Operation: "cancelar"}, ErrState)
	assert.ErrorIs(t, &PermissionError{Reason: "no"}, ErrPermission)
	assert.ErrorIs(t, &ValidationError{Fields: map[string]string{"a": "b"}}, ErrValidation)

	var stateErr *StateError
	assert.True(t, errors.As(fmt.Errorf("x: %w", &StateError{CitaID: 4, Estado: EstadoCancelada}), &stateErr))
	assert.Equal(t, uint(4), stateErr.CitaID)
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t, "cita 7 no encontrado", (&NotFoundError{Entity: "cita", Key: 7}).Error())
	assert.Equal(t, "cita 2 en estado FACTURADA no admite cancelar",
		(&StateError{CitaID: 2, Estado: EstadoFacturada, Operation: "cancelar"}).Error())
	assert.Equal(t, "validation failed: email: must be a valid email address; login: cannot be blank",
		(&ValidationError{Fields: map[string]string{
			"login": "cannot be blank",
			"email": "must be a valid email address",
		}}).Error())
}
