package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/auth"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/services"
)

type stubReports struct {
	result *models.ReportResult
	err    error
}

func (s *stubReports) GenerateReport(ctx context.Context, req *models.ReportRequest) (*models.ReportResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.ReportType = req.ReportType
	result.Period = req.Period
	return &result, nil
}

type stubDB struct {
	connected bool
}

func (s *stubDB) IsConnected(ctx context.Context) bool { return s.connected }

func (s *stubDB) Ping(ctx context.Context) (time.Duration, error) {
	if !s.connected {
		return 0, errors.New("sin conexión")
	}
	return 2 * time.Millisecond, nil
}

func (s *stubDB) Type() string { return "sqlite" }

func (s *stubDB) Stats(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"db_type": "sqlite", "connected": s.connected}
}

type stubCache struct {
	enabled   bool
	connected bool
}

func (s *stubCache) Enabled() bool                        { return s.enabled }
func (s *stubCache) IsConnected(ctx context.Context) bool { return s.connected }
func (s *stubCache) HitRate() float64                     { return 0.5 }
func (s *stubCache) Stats() map[string]interface{} {
	return map[string]interface{}{"enabled": s.enabled}
}

func salesResult() *models.ReportResult {
	return &models.ReportResult{
		GeneratedAt: time.Now(),
		Data: &models.SalesReport{
			Data: []models.SalesReportItem{
				{Periodo: "2026-08-15", TotalVentas: 150.0, NumeroPedidos: 2, TicketPromedio: 75.0},
			},
			TotalRevenue:  150.0,
			TotalOrders:   2,
			AverageTicket: 75.0,
		},
		ExecutionTimeMS: 1.2,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:    "Reportes Service",
			Version: "2.0.0",
			Env:     config.EnvTesting,
		},
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: "5001", Mode: "test"},
		Auth:    config.AuthConfig{KeyHubPedidos: "test_key_123", JWTSecret: "secreto-de-prueba", JWTExpiration: time.Hour},
		Reports: config.ReportsConfig{CompanyName: "Minimarket Test"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, reports ReportGenerator, db DatabaseStatus, cacheStatus CacheStatus) http.Handler {
	t.Helper()

	srv := NewServer(
		cfg,
		reports,
		db,
		cacheStatus,
		services.NewPDFGenerator(cfg.Reports.CompanyName),
		services.NewExcelGenerator(cfg.Reports.CompanyName),
		auth.NewKeyManager(cfg.Auth),
		auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration),
	)
	return srv.SetupRoutes()
}

func defaultTestServer(t *testing.T) http.Handler {
	return newTestServer(t, testConfig(),
		&stubReports{result: salesResult()},
		&stubDB{connected: true},
		&stubCache{enabled: true, connected: true},
	)
}

func get(handler http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRootEndpoint(t *testing.T) {
	w := get(defaultTestServer(t), "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Reportes Service", body["service"])
	assert.Equal(t, "running", body["status"])
	assert.NotEmpty(t, body["endpoints"])
}

func TestHealthCheckHealthy(t *testing.T) {
	w := get(defaultTestServer(t), "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.Database.Connected)
	assert.Equal(t, "sqlite", body.Database.Type)
	require.NotNil(t, body.Database.LatencyMS)
	require.NotNil(t, body.Cache)
	assert.True(t, body.Cache.Connected)
}

func TestHealthCheckDegraded(t *testing.T) {
	handler := newTestServer(t, testConfig(),
		&stubReports{result: salesResult()},
		&stubDB{connected: true},
		&stubCache{enabled: true, connected: false},
	)

	w := get(handler, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestHealthCheckUnhealthy(t *testing.T) {
	handler := newTestServer(t, testConfig(),
		&stubReports{result: salesResult()},
		&stubDB{connected: false},
		&stubCache{enabled: false},
	)

	w := get(handler, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Nil(t, body.Cache)
}

func TestGetReports(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes?report_type=ventas&period=semana", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ventas", body["report_type"])
	assert.Equal(t, "semana", body["period"])
	assert.NotNil(t, body["data"])
}

func TestGetReportsDefaults(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ventas", body["report_type"])
	assert.Equal(t, "semana", body["period"])
}

func TestGetReportsInvalidType(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes?report_type=inventario", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Parámetros inválidos")
}

func TestGetReportsCustomPeriodRequiresDates(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes?period=personalizado", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start_date")
}

func TestGetReportsCustomPeriod(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes?period=personalizado&start_date=2026-08-01&end_date=2026-08-15", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetReportsBadFilter(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes?customer_id=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "customer_id")
}

func TestGetReportsServiceError(t *testing.T) {
	handler := newTestServer(t, testConfig(),
		&stubReports{err: errors.New("base de datos no disponible")},
		&stubDB{connected: true},
		&stubCache{},
	)

	w := get(handler, "/api/reportes", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "base de datos no disponible")
}

func TestExportPDF(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes/export/pdf?report_type=ventas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reporte_ventas_semana.pdf")
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestExportExcel(t *testing.T) {
	w := get(defaultTestServer(t), "/api/reportes/export/excel?report_type=ventas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reporte_ventas_semana.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestExportExcelUnsupportedType(t *testing.T) {
	result := salesResult()
	result.Data = &models.SummaryMetrics{TotalRevenueToday: 150.0}

	handler := newTestServer(t, testConfig(),
		&stubReports{result: result},
		&stubDB{connected: true},
		&stubCache{},
	)

	w := get(handler, "/api/reportes/export/excel?report_type=resumen", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no soportado para Excel")
}

func TestIssueToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("X-API-Key", "test_key_123")
	w := httptest.NewRecorder()
	defaultTestServer(t).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, float64(3600), body["expires_in"])
}

func TestIssueTokenWithoutKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	w := httptest.NewRecorder()
	defaultTestServer(t).ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API Key requerida")
}

func TestIssueTokenInvalidKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("X-API-Key", "clave-falsa")
	w := httptest.NewRecorder()
	defaultTestServer(t).ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API Key inválida")
}

func TestGetStats(t *testing.T) {
	w := get(defaultTestServer(t), "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, stats["database"])
	assert.NotNil(t, stats["cache"])
	assert.Contains(t, stats, "uptime_seconds")
}

func TestNotFound(t *testing.T) {
	w := get(defaultTestServer(t), "/no-existe", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Endpoint no encontrado")
}

func TestMetricsDisabled(t *testing.T) {
	w := get(defaultTestServer(t), "/metrics", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Metrics disabled")
}

func TestAuthEnabledProtectsReports(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true

	handler := newTestServer(t, cfg,
		&stubReports{result: salesResult()},
		&stubDB{connected: true},
		&stubCache{},
	)

	w := get(handler, "/api/reportes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(handler, "/api/reportes", map[string]string{"X-API-Key": "test_key_123"})
	assert.Equal(t, http.StatusOK, w.Code)
}
