package services

import (
	"MediCitas/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardRoute(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  string
	}{
		{"no roles", nil, RouteHome},
		{"paciente", []string{models.RolPaciente}, "/paciente/dashboard"},
		{"medico", []string{models.RolMedico}, "/medico/dashboard"},
		{"clinica", []string{models.RolClinica}, "/clinica/dashboard"},
		{"unknown", []string{"ADMIN"}, RouteHome},
		{"several", []string{models.RolPaciente, models.RolMedico}, RouteSelectRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardRoute(tt.roles))
		})
	}
}
