package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rptas/internal/model"
	"rptas/internal/repository"

	"github.com/google/uuid"
)

// PermissionSet is the resolved view of one principal: role, scope and the
// flattened feature map.
type PermissionSet struct {
	UserID       uuid.UUID       `json:"user_id"`
	Known        bool            `json:"-"` // false when the principal could not be looked up
	Role         model.Role      `json:"role"`
	Municipality string          `json:"municipality,omitempty"`
	Permissions  map[string]bool `json:"permissions"`
}

// PermissionService resolves principals to permission sets and edits the
// override store.
type PermissionService interface {
	Resolve(ctx context.Context, principalID string) (*PermissionSet, error)
	ListOverrides(ctx context.Context) ([]model.RolePermissionOverride, error)
	SetOverride(ctx context.Context, role, feature string, enabled bool) error
	ResetOverrides(ctx context.Context, role string) error

	// Invalidate drops one principal's cached set; InvalidateAll drops every
	// cached set. Called whenever the override store or a user's role changes.
	Invalidate(principalID string)
	InvalidateAll()
}

type cachedSet struct {
	set       *PermissionSet
	expiresAt time.Time
}

type permissionService struct {
	users    repository.UserRepository
	perms    repository.PermissionRepository
	cache    sync.Map // principalID -> cachedSet
	cacheTTL time.Duration
}

// NewPermissionService wires the resolver over the user and override stores.
func NewPermissionService(users repository.UserRepository, perms repository.PermissionRepository) PermissionService {
	return &permissionService{
		users:    users,
		perms:    perms,
		cacheTTL: 30 * time.Second,
	}
}

func (s *permissionService) Resolve(ctx context.Context, principalID string) (*PermissionSet, error) {
	if entry, ok := s.cache.Load(principalID); ok {
		cached := entry.(cachedSet)
		if time.Now().Before(cached.expiresAt) {
			return cached.set, nil
		}
	}

	set := s.resolveFresh(ctx, principalID)

	s.cache.Store(principalID, cachedSet{set: set, expiresAt: time.Now().Add(s.cacheTTL)})
	return set, nil
}

// resolveFresh builds the permission set without the cache. A failed user
// lookup falls back to the unprivileged defaults instead of failing the
// request.
func (s *permissionService) resolveFresh(ctx context.Context, principalID string) *PermissionSet {
	user, err := s.users.GetByID(ctx, principalID)
	if err != nil {
		return &PermissionSet{
			Known:       false,
			Role:        model.RoleUser,
			Permissions: model.DefaultPermissions(model.RoleUser),
		}
	}

	role, _ := model.ParseRole(user.Role)

	set := &PermissionSet{
		UserID:       user.ID,
		Known:        true,
		Role:         role,
		Municipality: user.Municipality,
		Permissions:  model.DefaultPermissions(role),
	}

	// The reserved role is always all-true; overrides never touch it.
	if role == model.RoleAdmin {
		return set
	}

	overrides, err := s.perms.ListByRole(ctx, string(role))
	if err != nil {
		// Defaults stand when the override store is unreachable.
		return set
	}
	for _, o := range overrides {
		if _, known := set.Permissions[o.Feature]; known {
			set.Permissions[o.Feature] = o.Enabled
		}
	}
	return set
}

func (s *permissionService) ListOverrides(ctx context.Context) ([]model.RolePermissionOverride, error) {
	return s.perms.ListAll(ctx)
}

func (s *permissionService) SetOverride(ctx context.Context, role, feature string, enabled bool) error {
	if _, ok := model.ParseRole(role); !ok {
		return fmt.Errorf("%w: unknown role '%s'", ErrBadRequest, role)
	}
	// An override row for the reserved role is accepted but never applied;
	// the resolver short-circuits admin before the overlay.
	known := false
	for _, f := range model.AllFeatures {
		if f == feature {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown feature '%s'", ErrBadRequest, feature)
	}

	if err := s.perms.Set(ctx, role, feature, enabled); err != nil {
		return fmt.Errorf("failed to save permission override: %w", err)
	}
	s.InvalidateAll()
	return nil
}

func (s *permissionService) ResetOverrides(ctx context.Context, role string) error {
	if _, ok := model.ParseRole(role); !ok {
		return fmt.Errorf("%w: unknown role '%s'", ErrBadRequest, role)
	}
	if err := s.perms.DeleteByRole(ctx, role); err != nil {
		return fmt.Errorf("failed to reset permission overrides: %w", err)
	}
	s.InvalidateAll()
	return nil
}

func (s *permissionService) Invalidate(principalID string) {
	s.cache.Delete(principalID)
}

func (s *permissionService) InvalidateAll() {
	s.cache.Range(func(key, _ interface{}) bool {
		s.cache.Delete(key)
		return true
	})
}
