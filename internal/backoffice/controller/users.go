package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"go.uber.org/zap"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// NewUser is the input of UserService.Create.
type NewUser struct {
	Username string          `form:"username" validate:"required"`
	Password string          `form:"password" validate:"required,min=8"`
	Role     models.Role     `form:"role" validate:"required"`
	Modules  []models.Module `form:"modules"`
}

type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	audit  ActivityRecorder
	logger *zap.Logger
}

func NewUserService(repo UserRepository, hasher PasswordHasher, audit ActivityRecorder, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		audit:  audit,
		logger: logger.Named("user_service"),
	}
}

// Authenticate checks the credentials of an active account. Every failure
// yields ErrUnauthenticated so callers cannot tell unknown users apart.
func (s *UserService) Authenticate(ctx context.Context, username, password, ip string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, e.ErrUnauthenticated
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Warn("Rejected login", zap.String("username", user.Username), zap.String("ip", ip))
		return nil, e.ErrUnauthenticated
	}

	s.audit.Record(ctx, models.UserActor(user.ID, ip), "Login", "")
	return user, nil
}

// Logout records the end of a session.
func (s *UserService) Logout(ctx context.Context, actor models.Actor) {
	s.audit.Record(ctx, actor, "Logout", "")
}

// Create adds an active account with the given module permissions.
// Admins need no permissions; any given are stored anyway.
func (s *UserService) Create(ctx context.Context, actor models.Actor, in NewUser) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleStaff {
		return nil, e.Invalid("Invalid role %q.", in.Role)
	}

	user := &models.User{
		Username: strings.TrimSpace(in.Username),
		Role:     in.Role,
		IsActive: true,
	}
	seen := make(map[models.Module]bool, len(in.Modules))
	for _, m := range in.Modules {
		if !m.Valid() {
			return nil, e.Invalid("Unknown module %q.", m)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		user.Permissions = append(user.Permissions, models.UserPermission{Module: m})
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record(ctx, actor, "User Created",
		fmt.Sprintf("Created user: %s (%s)", user.Username, user.Role))
	return user, nil
}
