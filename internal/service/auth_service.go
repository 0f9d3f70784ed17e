package service

import (
	"errors"
	"fmt"

	"fruitpos-backend/internal/model"
	"fruitpos-backend/internal/repository"
	"fruitpos-backend/pkg/jwt"
	"fruitpos-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

type AuthService interface {
	Register(req *RegisterRequest) (*model.User, error)
	Login(username, password string) (*LoginResponse, error)
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

type LoginResponse struct {
	Token    string    `json:"token"`
	Role     string    `json:"role"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

type authService struct {
	userRepo repository.UserRepository
	secret   []byte
}

func NewAuthService(userRepo repository.UserRepository, secret []byte) AuthService {
	return &authService{
		userRepo: userRepo,
		secret:   secret,
	}
}

func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. Check if username already exists
	existing, _ := s.userRepo.FindByUsername(req.Username)
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	// 3. Default role = staff
	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}

	user := &model.User{
		Username: req.Username,
		Role:     role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Info("user registered")
	return user, nil
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Role, s.secret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	logrus.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Info("user logged in")
	return &LoginResponse{
		Token:    token,
		Role:     user.Role,
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}
