package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/garyai/picks-api/internal/domain/entity"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
	"github.com/garyai/picks-api/pkg/auth"
)

// ============================================================================
// Моки для тестирования AuthService
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func createTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret-key-for-unit-tests", 1)
	require.NoError(t, err)
	return jwtService
}

// ============================================================================
// Тесты для AuthService
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByUsername", "newuser").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	// Act
	user, err := authService.Register("newuser", "new@example.com", "password123")

	// Assert
	require.NoError(t, err, "Регистрация должна быть успешной")
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, entity.PlanFree, user.Plan, "Новый пользователь получает бесплатный план")
	assert.Equal(t, entity.RoleUser, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	existingUser := &entity.User{ID: 1, Username: "existing", Email: "existing@example.com"}
	mockUserRepo.On("GetByEmail", "existing@example.com").Return(existingUser, nil)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	_, err := authService.Register("newuser", "existing@example.com", "password123")

	assert.ErrorIs(t, err, apperrors.ErrConflict, "Повторный email должен давать конфликт")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	existingUser := &entity.User{ID: 1, Username: "taken", Email: "other@example.com"}
	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByUsername", "taken").Return(existingUser, nil)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	_, err := authService.Register("taken", "new@example.com", "password123")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_ValidCredentials(t *testing.T) {
	// Arrange
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{
		ID:       5,
		Username: "player",
		Email:    "player@example.com",
		Password: string(hashed),
		Role:     entity.RoleUser,
	}

	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "player@example.com").Return(user, nil)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	// Act
	token, loggedIn, err := authService.Login("player@example.com", "correct-password")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, token, "Токен должен быть сгенерирован")
	assert.Equal(t, uint(5), loggedIn.ID)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{ID: 5, Email: "player@example.com", Password: string(hashed)}

	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "player@example.com").Return(user, nil)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	_, _, err = authService.Login("player@example.com", "wrong-password")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	authService := NewAuthService(mockUserRepo, createTestJWTService(t))

	_, _, err := authService.Login("nobody@example.com", "whatever")

	// Неизвестный email и неверный пароль неразличимы для клиента
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockUserRepo.AssertExpectations(t)
}
