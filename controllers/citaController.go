package controllers

import (
	"MediCitas/handlers"
	"MediCitas/middlewares"
	"MediCitas/models"

	"github.com/gin-gonic/gin"
)

// SetupCitaRoutes mounts clinic, cita and historial routes. Every route
// requires a user access token.
func SetupCitaRoutes(router gin.IRouter, tokens middlewares.TokenValidator, clinicaHandler *handlers.ClinicaHandler, citaHandler *handlers.CitaHandler, historialHandler *handlers.HistorialHandler) {
	api := router.Group("/", middlewares.TokenAuthMiddleware(tokens))

	clinicaOnly := middlewares.RoleAuthMiddleware(models.RolClinica)
	pacienteOnly := middlewares.RoleAuthMiddleware(models.RolPaciente)
	medicoOnly := middlewares.RoleAuthMiddleware(models.RolMedico)
	staff := middlewares.RoleAuthMiddleware(models.RolMedico, models.RolClinica)

	api.GET("/clinicas", clinicaHandler.ListClinics)
	api.GET("/clinicas/:id", clinicaHandler.GetClinic)
	api.GET("/clinicas/:id/medicos", clinicaHandler.ListDoctors)
	api.POST("/clinicas/:id/medicos", clinicaOnly, clinicaHandler.RegisterDoctor)

	api.POST("/citas", pacienteOnly, citaHandler.Book)
	api.GET("/citas/:id", citaHandler.Get)
	api.PUT("/citas/:id/fecha", citaHandler.Reschedule)
	api.POST("/citas/:id/cancelar", citaHandler.Cancel)
	api.POST("/citas/:id/facturar", clinicaOnly, citaHandler.Invoice)
	api.POST("/citas/:id/realizar", medicoOnly, citaHandler.Perform)
	api.DELETE("/clinicas/:id/citas/:cita_id", clinicaOnly, citaHandler.RemoveFromClinic)

	api.GET("/pacientes/:id/citas", citaHandler.ListByPatient)
	api.GET("/medicos/:id/citas", citaHandler.ListByDoctor)
	api.GET("/clinicas/:id/citas", staff, citaHandler.ListByClinic)

	api.GET("/citas/:id/historial", historialHandler.FindByCita)
	api.GET("/pacientes/:id/historiales", historialHandler.ListByPatient)
	api.GET("/medicos/:id/historiales", historialHandler.ListByDoctor)
}
