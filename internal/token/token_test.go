package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_APPLICATION_ID", "app-1")
	t.Setenv("JWT_APPLICATION_NAME", "teamstats")
	t.Setenv("JWT_APPLICATION_HOSTNAME", "localhost")
	t.Setenv("JWT_ORG_ID", "org-1")
	t.Setenv("JWT_CUSTOMER_GUID", "cust-1")
	t.Setenv("JWT_EMPLOYEE_ID", "emp-1")
	t.Setenv("JWT_SCOPE", "read,write")
}

func TestClaimsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_EMPLOYEE_FULL_NAME", "Alice Example")

	claims, err := ClaimsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "app-1", claims.ApplicationID)
	assert.Equal(t, "Alice Example", claims.EmployeeFullName)
	assert.Equal(t, []string{"read", "write"}, claims.Scope)
}

func TestClaimsFromEnv_ReportsAllMissingVariables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ORG_ID", "")
	t.Setenv("JWT_SCOPE", "")

	_, err := ClaimsFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ORG_ID")
	assert.Contains(t, err.Error(), "JWT_SCOPE")
}

func TestGenerate_RoundTrip(t *testing.T) {
	secret := []byte("super-secret-signing-key")
	encoded := base64.StdEncoding.EncodeToString(secret)
	now := time.Now()

	claims := &Claims{
		ApplicationID: "app-1",
		EmployeeID:    "emp-1",
		Scope:         []string{"read"},
	}

	signed, err := Generate(claims, encoded, now)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	mapClaims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "app-1", mapClaims["applicationId"])
	assert.Equal(t, "emp-1", mapClaims["employeeId"])

	exp, err := mapClaims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(24*time.Hour), exp.Time, 2*time.Second)
}

func TestGenerate_InvalidSecret(t *testing.T) {
	_, err := Generate(&Claims{}, "not-base64!!!", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64")
}
