package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"
	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionRevoked     = errors.New("session expired (logged out or logged in elsewhere)")
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"name" validate:"required"`
	RoleCode string `json:"role" validate:"required"`
}

type LoginResponse struct {
	jwt.TokenPair
	User model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	// Authenticate resolves a bearer access token to its still-valid user.
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Login checks credentials and starts a new session. Rotating the token
// version ends any session the user had elsewhere.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return nil, &ValidationError{Field: errs[0].FailedField, Message: errs[0].Message(), Details: errs}
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	user.TokenVersion = uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion); err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.Stringer("user_id", user.ID))
	return s.issue(user)
}

// Refresh trades a refresh token for a new pair within the same session.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.activeUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(ctx, userID, uuid.NewString())
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(accessToken, jwt.TypeAccess)
	if err != nil {
		return nil, err
	}
	return s.activeUser(ctx, claims)
}

func (s *authService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	input.RoleCode = strings.ToUpper(strings.TrimSpace(input.RoleCode))
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		return nil, &ValidationError{Field: errs[0].FailedField, Message: errs[0].Message(), Details: errs}
	}

	role, err := s.roleRepo.FindByCode(ctx, input.RoleCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("role", "unknown role "+input.RoleCode)
		}
		return nil, err
	}

	user := &model.User{
		Email:        input.Email,
		FullName:     input.FullName,
		RoleID:       &role.ID,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("email", "already registered")
		}
		return nil, err
	}
	user.Role = role
	return user, nil
}

// ResetPassword sets a new password and revokes every outstanding token.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 8 {
		return invalid("password", "must be at least 8 characters")
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString())
}

func (s *authService) activeUser(ctx context.Context, claims *jwt.Claims) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionRevoked
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	pair, err := s.tokens.GeneratePair(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResponse{TokenPair: *pair, User: user.ToResponse()}, nil
}
