package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientContextKey es la clave de contexto gin con el cliente autenticado.
const ClientContextKey = "api_client"

// Middleware protege endpoints con API Keys (header X-API-Key) o con
// bearer tokens JWT emitidos por el propio servicio.
type Middleware struct {
	keys    *KeyManager
	jwt     *JWTService
	enabled bool
}

func NewMiddleware(keys *KeyManager, jwtService *JWTService, enabled bool) *Middleware {
	return &Middleware{
		keys:    keys,
		jwt:     jwtService,
		enabled: enabled,
	}
}

// Require exige un cliente autenticado con el permiso dado. Cuando la
// autenticación está deshabilitada por configuración se comporta como Optional.
func (m *Middleware) Require(permission string) gin.HandlerFunc {
	if !m.enabled {
		return m.Optional()
	}

	return func(c *gin.Context) {
		client := m.resolveClient(c)
		if client == nil {
			slog.Warn("Request without valid credentials", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "API Key requerida",
				"message": "Incluya X-API-Key en los headers",
			})
			return
		}

		if permission != "" && !client.HasPermission(permission) {
			slog.Warn("Client lacks permission",
				"client", client.Name,
				"permission", permission,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":             false,
				"error":               "Permisos insuficientes",
				"required_permission": permission,
			})
			return
		}

		c.Set(ClientContextKey, client)
		c.Next()
	}
}

// Optional valida credenciales si están presentes pero nunca bloquea.
func (m *Middleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if client := m.resolveClient(c); client != nil {
			c.Set(ClientContextKey, client)
		}
		c.Next()
	}
}

// ClientFrom recupera el cliente autenticado del contexto, si hay uno.
func ClientFrom(c *gin.Context) *ClientInfo {
	v, ok := c.Get(ClientContextKey)
	if !ok {
		return nil
	}
	client, _ := v.(*ClientInfo)
	return client
}

func (m *Middleware) resolveClient(c *gin.Context) *ClientInfo {
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return m.keys.Validate(apiKey)
	}

	if token := extractBearer(c); token != "" {
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			slog.Warn("Invalid bearer token", "error", err)
			return nil
		}
		return &ClientInfo{
			Name:        claims.Client,
			Permissions: claims.Permissions,
			Active:      true,
		}
	}

	return nil
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
