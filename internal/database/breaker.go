package database

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen se retorna cuando el circuit breaker rechaza la operación.
var ErrCircuitOpen = errors.New("circuit breaker abierto: base de datos no disponible")

// Breaker protege a la base de datos de ráfagas de fallos consecutivos.
// Se abre tras alcanzar el umbral y se reintenta después del timeout.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	timeout     time.Duration
	failures    int
	open        bool
	lastFailure time.Time
}

func NewBreaker(threshold int, timeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Breaker{threshold: threshold, timeout: timeout}
}

// Allow retorna ErrCircuitOpen mientras el breaker siga abierto.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}

	if time.Since(b.lastFailure) > b.timeout {
		slog.Info("Circuit breaker half-open, retrying database")
		b.open = false
		b.failures = 0
		return nil
	}

	return ErrCircuitOpen
}

// Success descuenta un fallo acumulado tras una operación exitosa.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures > 0 {
		b.failures--
	}
}

// Failure registra un fallo y abre el breaker al alcanzar el umbral.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = time.Now()

	if b.failures >= b.threshold && !b.open {
		b.open = true
		slog.Error("Circuit breaker opened", "failures", b.failures)
	}
}

// IsOpen indica si el breaker está abierto actualmente.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// FailureCount retorna los fallos acumulados.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
