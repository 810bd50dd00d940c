package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func registerRequest(email, username string) types.RegisterRequest {
	return types.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "s3cret-pass",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest("ada@example.com", "ada"))
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("ada@example.com", "ada"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterUniqueness(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("ada@example.com", "ada"))
	require.NoError(t, err)

	var ve *service.ValidationError

	_, err = svc.Register(ctx, registerRequest("ada@example.com", "other"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.Register(ctx, registerRequest("other@example.com", "ada"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Field)
}

func TestRegisterUsernamePattern(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	ctx := context.Background()

	for _, username := range []string{"has space", "semi;colon", "sla/sh"} {
		_, err := svc.Register(ctx, registerRequest("u@example.com", username))
		var ve *service.ValidationError
		require.ErrorAs(t, err, &ve, "username %q", username)
		assert.Equal(t, "username", ve.Field)
	}

	_, err := svc.Register(ctx, registerRequest("ok@example.com", "user.name+tag@host-1"))
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest("ada@example.com", "ada"))
	require.NoError(t, err)

	err = svc.SetPassword(ctx, user.ID, "wrong-pass", "new-pass")
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "current_password", ve.Field)

	require.NoError(t, svc.SetPassword(ctx, user.ID, "s3cret-pass", "new-pass"))

	_, err = svc.Login(ctx, "ada@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ada@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-jwt-secret")
	other := service.NewAuthService(db, "different-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("ada@example.com", "ada"))
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
