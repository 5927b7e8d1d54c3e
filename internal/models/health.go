package models

// DatabaseHealth es el estado de la base de datos en el health check.
type DatabaseHealth struct {
	Connected bool     `json:"connected"`
	Type      string   `json:"type"`
	LatencyMS *float64 `json:"latency_ms"`
}

// CacheHealth es el estado del caché en el health check.
type CacheHealth struct {
	Connected bool    `json:"connected"`
	HitRate   float64 `json:"hit_rate"`
}

// HealthCheckResponse es la respuesta de GET /health.
type HealthCheckResponse struct {
	Status        string         `json:"status"` // healthy, degraded o unhealthy
	Version       string         `json:"version"`
	Database      DatabaseHealth `json:"database"`
	Cache         *CacheHealth   `json:"cache,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
}

// ErrorResponse es la estructura estándar de respuestas de error.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}
