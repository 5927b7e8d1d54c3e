package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemoryManager crea un gestor que trabaja solo con memoria
// (la URL inválida descarta Redis en el arranque).
func newMemoryManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	return New("url-invalida", true, ttl)
}

func TestKeyIsStable(t *testing.T) {
	a := Key("report:sales", map[string]string{"period": "semana", "start": "2026-08-01"})
	b := Key("report:sales", map[string]string{"start": "2026-08-01", "period": "semana"})

	assert.Equal(t, a, b)
	assert.Contains(t, a, "report:sales:")
}

func TestKeyDiffersByParams(t *testing.T) {
	a := Key("report:sales", map[string]string{"period": "semana"})
	b := Key("report:sales", map[string]string{"period": "mes"})

	assert.NotEqual(t, a, b)
}

func TestSetAndGetMemory(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	type payload struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	require.True(t, m.Set(ctx, "report:sales:abc", payload{Total: 150.5, Count: 3}, 0))

	var got payload
	require.True(t, m.Get(ctx, "report:sales:abc", &got))
	assert.Equal(t, 150.5, got.Total)
	assert.Equal(t, 3, got.Count)
}

func TestGetMissingKey(t *testing.T) {
	m := newMemoryManager(t, time.Minute)

	var got map[string]interface{}
	assert.False(t, m.Get(context.Background(), "no-existe", &got))
}

func TestMemoryEntryExpires(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "efimera", "valor", 10*time.Millisecond)

	var got string
	require.True(t, m.Get(ctx, "efimera", &got))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, m.Get(ctx, "efimera", &got))
}

func TestDeletePattern(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "report:sales:1", "a", 0)
	m.Set(ctx, "report:products:1", "b", 0)
	m.Set(ctx, "otro:1", "c", 0)

	count := m.InvalidateReports(ctx)
	assert.Equal(t, 2, count)

	var got string
	assert.False(t, m.Get(ctx, "report:sales:1", &got))
	assert.True(t, m.Get(ctx, "otro:1", &got))
}

func TestDelete(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "clave", "valor", 0)
	assert.True(t, m.Delete(ctx, "clave"))
	assert.False(t, m.Delete(ctx, "clave"))
}

func TestDisabledCache(t *testing.T) {
	m := New("url-invalida", false, time.Minute)
	ctx := context.Background()

	assert.False(t, m.Enabled())
	assert.False(t, m.Set(ctx, "clave", "valor", 0))

	var got string
	assert.False(t, m.Get(ctx, "clave", &got))
}

func TestHitRate(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	assert.Equal(t, 0.0, m.HitRate())

	m.Set(ctx, "clave", "valor", 0)

	var got string
	m.Get(ctx, "clave", &got)   // hit
	m.Get(ctx, "otra", &got)    // miss
	m.Get(ctx, "clave", &got)   // hit

	assert.InDelta(t, 2.0/3.0, m.HitRate(), 0.001)
}

func TestStats(t *testing.T) {
	m := newMemoryManager(t, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "clave", "valor", 0)

	stats := m.Stats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, false, stats["using_redis"])
	assert.Equal(t, int64(1), stats["sets"])
	assert.Equal(t, 1, stats["memory_cache_size"])
}
