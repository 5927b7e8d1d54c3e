// Package handlers expone la API REST del servicio de reportes.
package handlers

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/auth"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/middleware"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/services"
)

// ReportGenerator produce reportes a partir de un request validado.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req *models.ReportRequest) (*models.ReportResult, error)
}

// DatabaseStatus expone el estado de la base de datos para health y stats.
type DatabaseStatus interface {
	IsConnected(ctx context.Context) bool
	Ping(ctx context.Context) (time.Duration, error)
	Type() string
	Stats(ctx context.Context) map[string]interface{}
}

// CacheStatus expone el estado del caché para health y stats.
type CacheStatus interface {
	Enabled() bool
	IsConnected(ctx context.Context) bool
	HitRate() float64
	Stats() map[string]interface{}
}

// Server agrupa las dependencias de los handlers REST.
type Server struct {
	cfg       *config.Config
	reports   ReportGenerator
	db        DatabaseStatus
	cache     CacheStatus
	pdf       *services.PDFGenerator
	excel     *services.ExcelGenerator
	keys      *auth.KeyManager
	jwt       *auth.JWTService
	startTime time.Time
}

func NewServer(
	cfg *config.Config,
	reports ReportGenerator,
	db DatabaseStatus,
	cacheStatus CacheStatus,
	pdf *services.PDFGenerator,
	excel *services.ExcelGenerator,
	keys *auth.KeyManager,
	jwtService *auth.JWTService,
) *Server {
	return &Server{
		cfg:       cfg,
		reports:   reports,
		db:        db,
		cache:     cacheStatus,
		pdf:       pdf,
		excel:     excel,
		keys:      keys,
		jwt:       jwtService,
		startTime: time.Now(),
	}
}

// SetupRoutes arma el engine gin con middleware y rutas del servicio.
func (s *Server) SetupRoutes() *gin.Engine {
	gin.SetMode(s.cfg.Server.Mode)
	r := gin.New()

	// El logging va por fuera del recovery para que los panics capturados
	// queden contabilizados con su status 500.
	r.Use(middleware.RequestLogging())
	r.Use(middleware.Recovery())

	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if s.cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst))
	}

	r.NoRoute(middleware.NotFoundHandler())

	authMW := auth.NewMiddleware(s.keys, s.jwt, s.cfg.Auth.Enabled)

	r.GET("/", s.Root)
	r.GET("/health", s.HealthCheck)

	if s.cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	} else {
		r.GET("/metrics", func(c *gin.Context) {
			c.JSON(404, gin.H{"error": "Metrics disabled"})
		})
	}

	api := r.Group("/api")
	{
		api.GET("/reportes", authMW.Require(auth.PermReportsRead), s.GetReports)
		api.GET("/reportes/export/pdf", authMW.Require(auth.PermReportsGenerate), s.ExportPDF)
		api.GET("/reportes/export/excel", authMW.Require(auth.PermReportsGenerate), s.ExportExcel)
		api.POST("/auth/token", s.IssueToken)
		api.GET("/stats", authMW.Optional(), s.GetStats)
	}

	return r
}
