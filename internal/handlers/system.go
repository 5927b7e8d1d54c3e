package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
)

// GET /
func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
		"status":  "running",
		"endpoints": gin.H{
			"health":       "/health",
			"metrics":      "/metrics",
			"reportes":     "/api/reportes",
			"export_pdf":   "/api/reportes/export/pdf",
			"export_excel": "/api/reportes/export/excel",
			"auth_token":   "/api/auth/token",
			"stats":        "/api/stats",
		},
	})
}

// GET /health
func (s *Server) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	resp := models.HealthCheckResponse{
		Status:        "healthy",
		Version:       s.cfg.App.Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	latency, err := s.db.Ping(ctx)
	resp.Database = models.DatabaseHealth{
		Connected: err == nil,
		Type:      s.db.Type(),
	}
	if err == nil {
		ms := float64(latency.Microseconds()) / 1000.0
		resp.Database.LatencyMS = &ms
	} else {
		resp.Status = "unhealthy"
	}

	if s.cache.Enabled() {
		cacheHealth := &models.CacheHealth{
			Connected: s.cache.IsConnected(ctx),
			HitRate:   s.cache.HitRate(),
		}
		resp.Cache = cacheHealth
		if !cacheHealth.Connected && resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	code := http.StatusOK
	if resp.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}

// POST /api/auth/token intercambia una API key válida por un JWT de corta vida.
func (s *Server) IssueToken(c *gin.Context) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "API Key requerida",
		})
		return
	}

	client := s.keys.Validate(apiKey)
	if client == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "API Key inválida",
		})
		return
	}

	token, err := s.jwt.GenerateToken(client)
	if err != nil {
		slog.Error("Token generation failed", "client", client.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generando token",
		})
		return
	}

	slog.Info("Token issued", "client", client.Name)

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(s.jwt.Expiry().Seconds()),
	})
}

// GET /api/stats
func (s *Server) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"database":       s.db.Stats(ctx),
			"cache":          s.cache.Stats(),
			"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		},
	})
}
