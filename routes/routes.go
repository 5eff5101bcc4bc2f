package routes

import (
	"MediCitas/config"
	"MediCitas/controllers"
	"MediCitas/handlers"
	"MediCitas/metrics"
	"MediCitas/middlewares"
	"MediCitas/repositories"
	"MediCitas/services"
	"MediCitas/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Locker, Cache, Notifier and Metrics are optional.
type Dependencies struct {
	Config   *config.AppConfig
	Store    repositories.Store
	Tokens   *utils.TokenIssuer
	Hasher   services.PasswordHasher
	Locker   services.Locker
	Cache    services.ListingCache
	Notifier services.Notifier
	Metrics  *metrics.Collector
	Log      *zap.Logger
}

func (d Dependencies) serviceOptions() []services.Option {
	opts := []services.Option{services.WithLogger(d.Log)}
	if d.Locker != nil {
		opts = append(opts, services.WithLocker(d.Locker))
	}
	if d.Cache != nil {
		opts = append(opts, services.WithCache(d.Cache))
	}
	if d.Notifier != nil {
		opts = append(opts, services.WithNotifier(d.Notifier))
	}
	if d.Metrics != nil {
		opts = append(opts, services.WithMetrics(d.Metrics))
	}
	return opts
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(d Dependencies) http.Handler {
	if !d.Config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.LoggingMiddleware(d.Log, d.Metrics))

	// Health checks and scrapes do not carry the client API token.
	controllers.SetupRootRoute(router)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(d.Config.CORSOrigins)))
	router.Use(middlewares.ValidateBearerToken(d.Config.GetBearerToken()))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: d.Config.RateLimitRPS,
		Burst:             d.Config.RateLimitBurst,
	}))

	opts := d.serviceOptions()
	usuarioService := services.NewUsuarioService(d.Store, d.Hasher, opts...)
	citaService := services.NewCitaService(d.Store, opts...)
	historialService := services.NewHistorialService(d.Store)

	authHandler := handlers.NewAuthHandler(usuarioService, d.Tokens, d.Log, !d.Config.IsDev())
	clinicaHandler := handlers.NewClinicaHandler(usuarioService, d.Log)
	citaHandler := handlers.NewCitaHandler(citaService, usuarioService, d.Log)
	historialHandler := handlers.NewHistorialHandler(historialService, citaService, usuarioService, d.Log)

	controllers.NewAuthController(authHandler, d.Tokens).RegisterRoutes(router)
	controllers.SetupCitaRoutes(router, d.Tokens, clinicaHandler, citaHandler, historialHandler)

	return router
}
