package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"rptas/internal/model"
	"rptas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for request validation
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required"`
	FullName     string `json:"full_name"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required"`
	Municipality string `json:"municipality"`
}

type UpdateUserRequest struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email" binding:"omitempty,email"`
	Role         string `json:"role"`
	Municipality string `json:"municipality"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse returns a user without sensitive fields.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Municipality string    `json:"municipality,omitempty"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

// UserService handles authentication and administrative user management.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo      repository.UserRepository
	txManager repository.TransactionManager
	resolver  PermissionService
}

// NewUserService returns a new instance of UserService. Role mutations
// invalidate the resolver cache through the given PermissionService.
func NewUserService(repo repository.UserRepository, txManager repository.TransactionManager, resolver PermissionService) UserService {
	return &userService{repo: repo, txManager: txManager, resolver: resolver}
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         user.Role,
		Municipality: user.Municipality,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrBadRequest, req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     string(hashedPassword),
		Role:         string(role),
		Municipality: req.Municipality,
	}

	// Uniqueness checks and the insert share one transaction so a concurrent
	// create with the same username or email cannot slip between them.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByUsername(txCtx, req.Username); err == nil {
			return fmt.Errorf("%w: username already exists", ErrConflict)
		}
		if _, err := s.repo.GetByEmail(txCtx, req.Email); err == nil {
			return fmt.Errorf("%w: email already exists", ErrConflict)
		}
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          user.ID.String(),
		"role":         user.Role,
		"municipality": user.Municipality,
		"exp":          time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, "user")
	}

	roleChanged := false
	if req.Role != "" && req.Role != user.Role {
		role, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role '%s'", ErrBadRequest, req.Role)
		}
		user.Role = string(role)
		roleChanged = true
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		}
		user.Email = req.Email
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Municipality != user.Municipality {
		user.Municipality = req.Municipality
		roleChanged = true // scope change also affects cached permission sets
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if roleChanged && s.resolver != nil {
		s.resolver.Invalidate(id)
	}

	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFoundOrStore(err, "user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if s.resolver != nil {
		s.resolver.Invalidate(id)
	}
	return nil
}
