package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&types.User{}, &types.Leccion{}, &types.Mensaje{}, &types.AICallLog{}))
	return testDB
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	return log
}

func newTestAuthService(t *testing.T, testDB *gorm.DB, ttl time.Duration) AuthService {
	t.Helper()
	log := newTestLogger(t)
	userRepo := repos.NewUserRepo(testDB, log)
	return NewAuthService(testDB, log, userRepo, "test-secret", ttl)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)
	ctx := context.Background()

	user, token, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "principiante", user.NivelIdioma)

	_, _, err = authService.RegisterUser(ctx, "ana@example.com", "otraclave", "avanzado")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.Status)
}

// racingUserRepo models the register race: the exists check sees no row,
// then the insert collides with the unique index.
type racingUserRepo struct {
	repos.UserRepo
}

func (r *racingUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return false, nil
}

func (r *racingUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) error {
	return gorm.ErrDuplicatedKey
}

func TestRegisterUser_ConcurrentDuplicateMapsToConflict(t *testing.T) {
	testDB := newTestDB(t)
	log := newTestLogger(t)
	authService := NewAuthService(testDB, log, &racingUserRepo{UserRepo: repos.NewUserRepo(testDB, log)}, "test-secret", time.Hour)

	_, _, err := authService.RegisterUser(context.Background(), "ana@example.com", "secreta1", "")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.Status)
	assert.Equal(t, "email_registrado", apiErr.Code)
}

func TestRegisterUser_ShortPassword(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)

	_, _, err := authService.RegisterUser(context.Background(), "ana@example.com", "corta", "")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
}

func TestLoginUser_WrongCredentials(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)
	ctx := context.Background()

	_, _, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "")
	require.NoError(t, err)

	_, _, err = authService.LoginUser(ctx, "ana@example.com", "incorrecta")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)

	_, _, err = authService.LoginUser(ctx, "nadie@example.com", "secreta1")
	require.Error(t, err)
	apiErr, ok = apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}

func TestLoginUser_Success(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)
	ctx := context.Background()

	registered, _, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "intermedio")
	require.NoError(t, err)

	user, token, err := authService.LoginUser(ctx, "ana@example.com", "secreta1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "intermedio", user.NivelIdioma)
}

func TestCurrentUser_TokenRoundTrip(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)
	ctx := context.Background()

	registered, token, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "")
	require.NoError(t, err)

	resolved, err := authService.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)
	assert.Equal(t, "ana@example.com", resolved.Email)
}

func TestCurrentUser_ExpiredToken(t *testing.T) {
	testDB := newTestDB(t)
	// Negative TTL: every issued token is already expired.
	authService := newTestAuthService(t, testDB, -time.Minute)
	ctx := context.Background()

	_, token, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "")
	require.NoError(t, err)

	_, err = authService.CurrentUser(ctx, token)
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}

func TestCurrentUser_MalformedToken(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)

	_, err := authService.CurrentUser(context.Background(), "not-a-jwt")
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}

func TestCurrentUser_InactiveUser(t *testing.T) {
	testDB := newTestDB(t)
	authService := newTestAuthService(t, testDB, time.Hour)
	ctx := context.Background()

	registered, token, err := authService.RegisterUser(ctx, "ana@example.com", "secreta1", "")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&types.User{}).Where("id = ?", registered.ID).Update("is_active", false).Error)

	_, err = authService.CurrentUser(ctx, token)
	require.Error(t, err)
	apiErr, ok := apierr.From(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}
