package services

import "MediCitas/models"

const (
	RouteHome       = "/home"
	RouteSelectRole = "/home/select-role"
)

var dashboardRoutes = map[string]string{
	models.RolPaciente: "/paciente/dashboard",
	models.RolMedico:   "/medico/dashboard",
	models.RolClinica:  "/clinica/dashboard",
}

// DashboardRoute picks the landing page for an account holding roles.
func DashboardRoute(roles []string) string {
	switch len(roles) {
	case 0:
		return RouteHome
	case 1:
		if route, ok := dashboardRoutes[roles[0]]; ok {
			return route
		}
		return RouteHome
	default:
		return RouteSelectRole
	}
}
