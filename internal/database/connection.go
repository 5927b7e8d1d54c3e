package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/metrics"
)

const slowQueryThreshold = time.Second

// Manager encapsula la conexión gorm con pool, circuit breaker y
// failover automático de MySQL a SQLite.
type Manager struct {
	db      *gorm.DB
	dbType  string
	cfg     config.DatabaseConfig
	breaker *Breaker

	queriesExecuted atomic.Int64
	slowQueries     atomic.Int64
	queryErrors     atomic.Int64
}

// Connect abre la conexión según DB_TYPE. Si MySQL no está disponible en el
// arranque, hace fallback a SQLite.
func Connect(cfg config.DatabaseConfig, brk config.BreakerConfig) (*Manager, error) {
	m := &Manager{
		cfg:     cfg,
		breaker: NewBreaker(brk.Threshold, brk.Timeout),
	}

	if cfg.Type == "mysql" {
		if err := m.connectMySQL(); err != nil {
			slog.Warn("MySQL unavailable, falling back to SQLite", "error", err)
			if err := m.connectSQLite(); err != nil {
				return nil, err
			}
		}
	} else {
		if err := m.connectSQLite(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Manager) connectMySQL() error {
	slog.Info("Connecting to database",
		"type", "mysql",
		"host", m.cfg.Host,
		"port", m.cfg.Port,
		"database", m.cfg.DBName,
	)

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&loc=UTC",
		m.cfg.User,
		m.cfg.Password,
		m.cfg.Host,
		m.cfg.Port,
		m.cfg.DBName,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(m.cfg.PoolSize)
	sqlDB.SetMaxOpenConns(m.cfg.PoolSize * 4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}

	m.db = db
	m.dbType = "mysql"
	slog.Info("Database connection successful", "type", "mysql")
	return nil
}

func (m *Manager) connectSQLite() error {
	path := m.cfg.SQLitePath
	if path == "" {
		path = ":memory:"
	}

	slog.Info("Connecting to database", "type", "sqlite", "path", path)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	m.db = db
	m.dbType = "sqlite"
	slog.Info("Database connection successful", "type", "sqlite")
	return nil
}

// DB expone el handle gorm (migraciones y seeds de tests).
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Type retorna el driver activo: mysql o sqlite.
func (m *Manager) Type() string {
	return m.dbType
}

// Query ejecuta una consulta SQL de solo lectura y escanea las filas en dest.
func (m *Manager) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := m.breaker.Allow(); err != nil {
		return err
	}

	start := time.Now()

	err := m.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error

	elapsed := time.Since(start)
	m.queriesExecuted.Add(1)
	metrics.DatabaseQueries.WithLabelValues("select").Inc()

	if err != nil {
		m.queryErrors.Add(1)
		m.breaker.Failure()
		slog.Error("Query failed", "error", err)
		return fmt.Errorf("error de base de datos: %w", err)
	}

	m.breaker.Success()

	if elapsed > slowQueryThreshold {
		m.slowQueries.Add(1)
		slog.Warn("Slow query", "duration_ms", elapsed.Milliseconds(), "query", truncate(query, 100))
	} else {
		slog.Debug("Query executed", "duration_ms", elapsed.Milliseconds())
	}

	return nil
}

// Ping verifica la conexión y mide la latencia.
func (m *Manager) Ping(ctx context.Context) (time.Duration, error) {
	if err := m.breaker.Allow(); err != nil {
		return 0, err
	}

	start := time.Now()

	var one int
	if err := m.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		m.breaker.Failure()
		return 0, err
	}

	m.breaker.Success()
	return time.Since(start), nil
}

// IsConnected indica si la base de datos responde.
func (m *Manager) IsConnected(ctx context.Context) bool {
	if m.breaker.IsOpen() {
		return false
	}
	_, err := m.Ping(ctx)
	return err == nil
}

// Stats retorna métricas internas para /api/stats.
func (m *Manager) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"db_type":          m.dbType,
		"connected":        m.IsConnected(ctx),
		"circuit_open":     m.breaker.IsOpen(),
		"failure_count":    m.breaker.FailureCount(),
		"queries_executed": m.queriesExecuted.Load(),
		"slow_queries":     m.slowQueries.Load(),
		"errors":           m.queryErrors.Load(),
	}

	if m.dbType == "mysql" {
		stats["pool_size"] = m.cfg.PoolSize
	} else {
		stats["pool_size"] = "N/A"
	}

	return stats
}

// Close cierra la conexión subyacente.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
