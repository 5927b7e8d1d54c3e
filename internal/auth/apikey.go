// Package auth implementa autenticación por API Key (SHA-256) con
// permisos por cliente, y emisión de tokens JWT.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
)

// Permisos conocidos por el servicio.
const (
	PermReportsRead     = "reports:read"
	PermReportsGenerate = "reports:generate"
	PermReportsDelete   = "reports:delete"
	PermAdminAccess     = "admin:access"
)

// ClientInfo describe al cliente dueño de una API Key.
type ClientInfo struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Active      bool     `json:"active"`
}

// HasPermission verifica si el cliente tiene un permiso específico.
func (c *ClientInfo) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// KeyManager guarda los hashes SHA-256 de las API Keys configuradas.
type KeyManager struct {
	keys map[string]*ClientInfo
}

// NewKeyManager carga las API Keys desde la configuración.
func NewKeyManager(cfg config.AuthConfig) *KeyManager {
	m := &KeyManager{keys: make(map[string]*ClientInfo)}

	clients := []struct {
		name        string
		key         string
		permissions []string
	}{
		{"HubPedidos", cfg.KeyHubPedidos, []string{PermReportsRead, PermReportsGenerate}},
		{"Admin", cfg.KeyAdmin, []string{PermReportsRead, PermReportsGenerate, PermReportsDelete, PermAdminAccess}},
		{"Analytics", cfg.KeyAnalytics, []string{PermReportsRead}},
	}

	for _, c := range clients {
		if c.key == "" {
			continue
		}
		m.keys[hashKey(c.key)] = &ClientInfo{
			Name:        c.name,
			Permissions: c.permissions,
			Active:      true,
		}
		slog.Info("API Key loaded", "client", c.name)
	}

	if len(m.keys) == 0 {
		slog.Warn("No API Keys configured, authenticated endpoints will reject all requests")
	}

	return m
}

// Validate retorna la información del cliente si la key es válida y está activa.
func (m *KeyManager) Validate(apiKey string) *ClientInfo {
	if apiKey == "" {
		return nil
	}

	client, ok := m.keys[hashKey(apiKey)]
	if !ok || !client.Active {
		slog.Warn("Invalid API Key", "prefix", prefix(apiKey, 10))
		return nil
	}

	return client
}

func hashKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
