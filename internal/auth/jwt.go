package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService emite y valida tokens firmados con HS256 para clientes
// que intercambian su API Key por un bearer token.
type JWTService struct {
	secretKey []byte
	expiry    time.Duration
}

// Claims son los claims propios del servicio de reportes.
type Claims struct {
	Client      string   `json:"client"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTService{
		secretKey: []byte(secret),
		expiry:    expiry,
	}
}

// GenerateToken emite un token con los permisos del cliente.
func (s *JWTService) GenerateToken(client *ClientInfo) (string, error) {
	claims := &Claims{
		Client:      client.Name,
		Permissions: client.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "reportes-service",
			Subject:   client.Name,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Expiry retorna la vigencia configurada de los tokens.
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

// ValidateToken valida el token y extrae los claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
