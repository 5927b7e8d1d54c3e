// Package cache implementa el caché de reportes sobre Redis con
// fallback a memoria cuando Redis no está disponible.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/metrics"
)

const failureThreshold = 3

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Manager coordina Redis y el caché en memoria, con un breaker propio
// para dejar de intentar Redis tras fallos consecutivos.
type Manager struct {
	enabled    bool
	defaultTTL time.Duration
	client     *redis.Client

	mu     sync.RWMutex
	memory map[string]memoryEntry

	statsMu     sync.Mutex
	hits        int64
	misses      int64
	sets        int64
	failures    int
	circuitOpen bool
}

// New crea el gestor de caché. Si la URL de Redis no es alcanzable,
// se trabaja solo con memoria.
func New(redisURL string, enabled bool, defaultTTL time.Duration) *Manager {
	m := &Manager{
		enabled:    enabled,
		defaultTTL: defaultTTL,
		memory:     make(map[string]memoryEntry),
	}

	if !enabled {
		slog.Info("Cache disabled")
		return m
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("Invalid Redis URL, using memory cache", "error", err)
		return m
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 5 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unreachable, using memory cache", "error", err)
		return m
	}

	m.client = client
	slog.Info("Connected to Redis", "url", redisURL)
	return m
}

// Key genera una clave de caché estable a partir de los parámetros del reporte.
func Key(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
		sb.WriteByte(';')
	}

	sum := md5.Sum([]byte(sb.String()))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:])[:8])
}

// Get recupera y deserializa un valor cacheado en dest. Retorna false si no existe.
func (m *Manager) Get(ctx context.Context, key string, dest interface{}) bool {
	if !m.enabled {
		return false
	}

	if m.redisAvailable() {
		raw, err := m.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				m.recordHit()
				metrics.CacheHits.WithLabelValues("redis").Inc()
				return true
			}
		case err == redis.Nil:
			m.recordMiss()
			metrics.CacheMisses.WithLabelValues("redis").Inc()
			return false
		default:
			slog.Error("Redis GET failed", "error", err, "key", key)
			m.recordFailure()
		}
	}

	m.mu.RLock()
	entry, ok := m.memory[key]
	m.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		if err := json.Unmarshal(entry.value, dest); err == nil {
			m.recordHit()
			metrics.CacheHits.WithLabelValues("memory").Inc()
			return true
		}
	}

	m.recordMiss()
	metrics.CacheMisses.WithLabelValues("memory").Inc()
	return false
}

// Set serializa y guarda un valor con el TTL dado (defaultTTL si ttl <= 0).
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if !m.enabled {
		return false
	}

	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("Cache value not serializable", "error", err, "key", key)
		return false
	}

	if m.redisAvailable() {
		if err := m.client.Set(ctx, key, raw, ttl).Err(); err != nil {
			slog.Error("Redis SET failed", "error", err, "key", key)
			m.recordFailure()
		} else {
			m.recordSet()
			return true
		}
	}

	m.mu.Lock()
	m.memory[key] = memoryEntry{value: raw, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()

	m.recordSet()
	return true
}

// Delete elimina una clave de Redis y de memoria.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	deleted := false

	if m.redisAvailable() {
		if err := m.client.Del(ctx, key).Err(); err != nil {
			slog.Error("Redis DEL failed", "error", err, "key", key)
		} else {
			deleted = true
		}
	}

	m.mu.Lock()
	if _, ok := m.memory[key]; ok {
		delete(m.memory, key)
		deleted = true
	}
	m.mu.Unlock()

	return deleted
}

// DeletePattern elimina las claves que coinciden con un patrón glob (ej. report:*).
func (m *Manager) DeletePattern(ctx context.Context, pattern string) int {
	count := 0

	if m.redisAvailable() {
		keys, err := m.client.Keys(ctx, pattern).Result()
		if err != nil {
			slog.Error("Redis KEYS failed", "error", err, "pattern", pattern)
		} else if len(keys) > 0 {
			n, err := m.client.Del(ctx, keys...).Result()
			if err == nil {
				count += int(n)
			}
		}
	}

	m.mu.Lock()
	for key := range m.memory {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.memory, key)
			count++
		}
	}
	m.mu.Unlock()

	return count
}

// InvalidateReports elimina todos los reportes cacheados.
func (m *Manager) InvalidateReports(ctx context.Context) int {
	count := m.DeletePattern(ctx, "report:*")
	slog.Info("Cached reports invalidated", "count", count)
	return count
}

// IsConnected indica si Redis responde.
func (m *Manager) IsConnected(ctx context.Context) bool {
	if !m.redisAvailable() {
		return false
	}
	return m.client.Ping(ctx).Err() == nil
}

// Enabled indica si el caché está activo.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// HitRate calcula la tasa de aciertos acumulada.
func (m *Manager) HitRate() float64 {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	total := m.hits + m.misses
	if total == 0 {
		return 0
	}
	return float64(m.hits) / float64(total)
}

// Stats retorna métricas del caché para /api/stats.
func (m *Manager) Stats() map[string]interface{} {
	m.statsMu.Lock()
	hits, misses, sets := m.hits, m.misses, m.sets
	circuitOpen := m.circuitOpen
	m.statsMu.Unlock()

	m.mu.RLock()
	memSize := len(m.memory)
	m.mu.RUnlock()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return map[string]interface{}{
		"enabled":           m.enabled,
		"using_redis":       m.client != nil && !circuitOpen,
		"circuit_open":      circuitOpen,
		"hits":              hits,
		"misses":            misses,
		"sets":              sets,
		"hit_rate":          hitRate,
		"memory_cache_size": memSize,
	}
}

// Close libera la conexión Redis y limpia la memoria.
func (m *Manager) Close() {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			slog.Error("Error closing Redis client", "error", err)
		}
	}

	m.mu.Lock()
	m.memory = make(map[string]memoryEntry)
	m.mu.Unlock()
}

func (m *Manager) redisAvailable() bool {
	if m.client == nil {
		return false
	}
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return !m.circuitOpen
}

func (m *Manager) recordHit() {
	m.statsMu.Lock()
	m.hits++
	m.statsMu.Unlock()
}

func (m *Manager) recordMiss() {
	m.statsMu.Lock()
	m.misses++
	m.statsMu.Unlock()
}

func (m *Manager) recordSet() {
	m.statsMu.Lock()
	m.sets++
	m.statsMu.Unlock()
}

func (m *Manager) recordFailure() {
	m.statsMu.Lock()
	m.failures++
	if m.failures >= failureThreshold && !m.circuitOpen {
		m.circuitOpen = true
		slog.Error("Cache circuit breaker opened")
	}
	m.statsMu.Unlock()
}
