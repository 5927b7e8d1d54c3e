package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("un-secreto-de-prueba", time.Hour)

	client := &ClientInfo{
		Name:        "HubPedidos",
		Permissions: []string{PermReportsRead, PermReportsGenerate},
		Active:      true,
	}

	token, err := svc.GenerateToken(client)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "HubPedidos", claims.Client)
	assert.Equal(t, client.Permissions, claims.Permissions)
	assert.Equal(t, "reportes-service", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secreto-a", time.Hour)
	verifier := NewJWTService("secreto-b", time.Hour)

	token, err := issuer.GenerateToken(&ClientInfo{Name: "Admin", Active: true})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("un-secreto-de-prueba", time.Hour)
	svc.expiry = -time.Minute

	token, err := svc.GenerateToken(&ClientInfo{Name: "Admin", Active: true})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService("un-secreto-de-prueba", time.Hour)

	_, err := svc.ValidateToken("no.es.un.token")
	assert.Error(t, err)
}

func TestJWTDefaultExpiry(t *testing.T) {
	svc := NewJWTService("secreto", 0)
	assert.Equal(t, 24*time.Hour, svc.Expiry())
}
