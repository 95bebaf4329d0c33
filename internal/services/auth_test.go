package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
)

const testJWTSecret = "test-secret-key"

func newTestAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	log := newTestLogger(t)
	return NewAuthService(db, log, repos.NewUserRepo(db, log), nil, testJWTSecret, time.Hour, nil)
}

func TestAnonymousSigninCreatesAndReusesUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)

	device := uuid.New().String()
	token, user, err := svc.AnonymousSignin(context.Background(), device)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, user.DeviceUUID)
	require.Equal(t, device, *user.DeviceUUID)
	require.Nil(t, user.AppleSub)

	_, again, err := svc.AnonymousSignin(context.Background(), device)
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID, "same device must map to the same user")
}

func TestAnonymousSigninRejectsNonV4(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)

	cases := []struct {
		name   string
		device string
	}{
		{"not a uuid", "definitely-not-a-uuid"},
		{"empty", ""},
		{"version 1", "c232ab00-9414-11ec-b3c8-9f68deced846"},
		{"nil uuid", uuid.Nil.String()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.AnonymousSignin(context.Background(), tc.device)
			require.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)

	token, user, err := svc.AnonymousSignin(context.Background(), uuid.New().String())
	require.NoError(t, err)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)
	rd := requestdata.GetRequestData(ctx)
	require.NotNil(t, rd)
	require.Equal(t, user.ID, rd.UserID)
	require.False(t, rd.IsAdmin)
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)

	_, err := svc.SetContextFromToken(context.Background(), "not.a.jwt")
	require.True(t, errors.Is(err, ErrUnauthorized))

	// token signed with a different secret
	log := newTestLogger(t)
	otherSvc := NewAuthService(db, log, repos.NewUserRepo(db, log), nil, "other-secret", time.Hour, nil)
	token, _, err := otherSvc.AnonymousSignin(context.Background(), uuid.New().String())
	require.NoError(t, err)

	_, err = svc.SetContextFromToken(context.Background(), token)
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAppleSigninUnconfigured(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)

	_, _, err := svc.AppleSignin(context.Background(), "some-identity-token", "")
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestDeleteUserTombstones(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(t, db)
	log := newTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)

	device := uuid.New().String()
	_, user, err := svc.AnonymousSignin(context.Background(), device)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	found, err := userRepo.GetByDeviceUUID(context.Background(), nil, device)
	require.NoError(t, err)
	require.Nil(t, found, "soft-deleted user must not resolve")
}
