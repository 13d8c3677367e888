package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
	"github.com/garyai/picks-api/pkg/auth"
)

// AuthService предоставляет методы для аутентификации
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(username, email, password string) (*entity.User, error) {
	// Проверяем уникальность email и username
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("email already taken: %w", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // Хешируется в хуке BeforeSave
		Plan:     entity.PlanFree,
		Role:     entity.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		log.Printf("[AuthService] Ошибка создания пользователя %s: %v", email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login аутентифицирует пользователя и возвращает JWT токен
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrUnauthorized
		}
		return "", nil, err
	}

	if !user.CheckPassword(password) {
		return "", nil, apperrors.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации токена для пользователя ID=%d: %v", user.ID, err)
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}
