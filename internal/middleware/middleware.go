// Package middleware contiene los middleware gin del servicio:
// request-id, logging estructurado, métricas Prometheus y rate limiting.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/metrics"
)

// RequestIDKey es la clave de contexto gin con el id de la petición.
const RequestIDKey = "request_id"

// RequestLogging asigna un request id corto y emite una línea de log
// al inicio y al final de cada petición, con métricas Prometheus.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()[:8]
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		metrics.ActiveRequests.Inc()

		slog.Info("request started",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
		)

		// Diferido para que un panic en un handler no deje el gauge
		// ni los contadores desbalanceados.
		defer func() {
			duration := time.Since(start)
			status := c.Writer.Status()
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = "unknown"
			}

			metrics.RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
			metrics.RequestLatency.WithLabelValues(c.Request.Method, endpoint).Observe(duration.Seconds())
			metrics.ActiveRequests.Dec()

			slog.Info("request completed",
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"duration_ms", float64(duration.Microseconds())/1000.0,
			)
		}()

		c.Next()
	}
}

// NotFoundHandler responde 404 con el envelope de error estándar.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Warn("Endpoint not found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Endpoint no encontrado",
			"path":    c.Request.URL.Path,
		})
	}
}

// Recovery captura panics y responde 500 con el envelope estándar.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("Unhandled panic", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error interno del servidor",
		})
	})
}

// ipLimiter mantiene un token bucket por IP de cliente.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimit limita peticiones por IP con un token bucket.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	l := &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}

	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			slog.Warn("Rate limit exceeded", "remote_addr", c.ClientIP(), "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Demasiadas peticiones",
			})
			return
		}
		c.Next()
	}
}
