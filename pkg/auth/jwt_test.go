package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	svc, err := NewJWTService(Config{Secret: "test-secret", Expiry: time.Hour})
	require.NoError(t, err)

	user := &model.User{ID: "2", Email: "john@dentalcare.test", Role: model.RolePatient, PatientID: "p1"}
	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.Equal(t, model.RolePatient, claims.Role)
	assert.Equal(t, "p1", claims.PatientID)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	svc, err := NewJWTService(Config{Secret: "test-secret", Expiry: time.Hour})
	require.NoError(t, err)
	other, err := NewJWTService(Config{Secret: "other-secret", Expiry: time.Hour})
	require.NoError(t, err)

	user := &model.User{ID: "1", Email: "admin@dentalcare.test", Role: model.RoleAdmin}
	token, _, err := other.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := svc.(*jwtService)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.GenerateAccessToken(user)
	require.NoError(t, err)
	expired.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(Config{})
	assert.Error(t, err)
}
