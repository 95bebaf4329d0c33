package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"adm,omitempty"`
}

type AuthService interface {
	// AnonymousSignin accepts a UUIDv4 device identifier and finds or
	// creates the matching user. Any other UUID version is rejected.
	AnonymousSignin(ctx context.Context, deviceUUID string) (string, *types.User, error)
	AppleSignin(ctx context.Context, identityToken string, fullName string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	appleVerifier AppleVerifier
	jwtSecretKey  string
	accessTTL     time.Duration
	adminEmails   map[string]bool
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	appleVerifier AppleVerifier,
	jwtSecretKey string,
	accessTTL time.Duration,
	adminEmails []string,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	admins := map[string]bool{}
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
		}
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		appleVerifier: appleVerifier,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		adminEmails:   admins,
	}
}

func (as *authService) AnonymousSignin(ctx context.Context, deviceUUID string) (string, *types.User, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(deviceUUID))
	if err != nil {
		return "", nil, fmt.Errorf("%w: device_uuid is not a valid UUID", ErrValidation)
	}
	if parsed.Version() != 4 {
		return "", nil, fmt.Errorf("%w: device_uuid must be a version 4 UUID", ErrValidation)
	}
	canonical := parsed.String()

	user, err := as.userRepo.GetByDeviceUUID(ctx, nil, canonical)
	if err != nil {
		return "", nil, fmt.Errorf("Failed to look up device user: %w", err)
	}
	if user == nil {
		user = &types.User{ID: uuid.New(), DeviceUUID: &canonical}
		if _, cErr := as.userRepo.Create(ctx, nil, []*types.User{user}); cErr != nil {
			// duplicate-creation race: the unique device index means a
			// concurrent signin won; use its row
			raced, rErr := as.userRepo.GetByDeviceUUID(ctx, nil, canonical)
			if rErr != nil || raced == nil {
				return "", nil, fmt.Errorf("Failed to create device user: %w", cErr)
			}
			user = raced
		}
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (as *authService) AppleSignin(ctx context.Context, identityToken string, fullName string) (string, *types.User, error) {
	if as.appleVerifier == nil {
		return "", nil, fmt.Errorf("%w: apple sign-in is not configured", ErrUnauthorized)
	}
	identity, err := as.appleVerifier.Verify(ctx, identityToken)
	if err != nil {
		return "", nil, err
	}

	user, err := as.userRepo.GetByAppleSub(ctx, nil, identity.Sub)
	if err != nil {
		return "", nil, fmt.Errorf("Failed to look up apple user: %w", err)
	}
	if user == nil {
		sub := identity.Sub
		user = &types.User{ID: uuid.New(), AppleSub: &sub, FullName: strings.TrimSpace(fullName)}
		if identity.Email != "" {
			email := identity.Email
			user.Email = &email
			user.IsAdmin = as.adminEmails[strings.ToLower(email)]
		}
		if _, cErr := as.userRepo.Create(ctx, nil, []*types.User{user}); cErr != nil {
			raced, rErr := as.userRepo.GetByAppleSub(ctx, nil, identity.Sub)
			if rErr != nil || raced == nil {
				return "", nil, fmt.Errorf("Failed to create apple user: %w", cErr)
			}
			user = raced
		}
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		IsAdmin: user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("Failed to sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", ErrUnauthorized)
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		IsAdmin:     claims.IsAdmin,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := as.userRepo.SoftDelete(ctx, nil, userID); err != nil {
		return fmt.Errorf("Failed to delete user: %w", err)
	}
	return nil
}
