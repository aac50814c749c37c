package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, nivelIdioma string) (*types.User, string, error)
	LoginUser(ctx context.Context, email, password string) (*types.User, string, error)
	// CurrentUser validates the token signature and expiry, then resolves
	// the subject claim to an active user. Every authenticated endpoint
	// goes through this guard.
	CurrentUser(ctx context.Context, tokenString string) (*types.User, error)
	AccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, email, password, nivelIdioma string) (*types.User, string, error) {
	if email == "" {
		return nil, "", apierr.Validation("email_requerido", fmt.Errorf("el email es obligatorio"))
	}
	if len(password) < 6 {
		return nil, "", apierr.Validation("password_corta", fmt.Errorf("la contraseña debe tener al menos 6 caracteres"))
	}
	if nivelIdioma == "" {
		nivelIdioma = "principiante"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		Email:       email,
		Password:    string(hashed),
		NivelIdioma: nivelIdioma,
		IsActive:    true,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eErr := as.userRepo.EmailExists(ctx, tx, email)
		if eErr != nil {
			return fmt.Errorf("failed to check user email: %w", eErr)
		}
		if exists {
			return apierr.Conflict("email_registrado", fmt.Errorf("El email ya está registrado."))
		}
		user.ID = uuid.New()
		if cErr := as.userRepo.Create(ctx, tx, user); cErr != nil {
			// A concurrent register can slip past the exists check; the
			// unique index still catches it.
			if errors.Is(cErr, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("email_registrado", fmt.Errorf("El email ya está registrado."))
			}
			return fmt.Errorf("failed to create user: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := as.issueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	as.log.Info("User registered", "user_id", user.ID.String())
	return user, token, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*types.User, string, error) {
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user == nil {
		return nil, "", apierr.Unauthorized("credenciales_incorrectas", fmt.Errorf("Credenciales incorrectas."))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apierr.Unauthorized("credenciales_incorrectas", fmt.Errorf("Credenciales incorrectas."))
	}

	token, err := as.issueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (as *authService) CurrentUser(ctx context.Context, tokenString string) (*types.User, error) {
	userID, err := as.parseToken(tokenString)
	if err != nil {
		return nil, apierr.Unauthorized("token_invalido", fmt.Errorf("No se pudo validar el token."))
	}
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for token: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apierr.Unauthorized("token_invalido", fmt.Errorf("No se pudo validar el token."))
	}
	return user, nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) parseToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}
