package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/techinsights/kbsite/internal/authz"
	"github.com/techinsights/kbsite/internal/core"
	"github.com/techinsights/kbsite/internal/data"
	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/observability/statsd"
)

// RoleServiceOptions groups dependencies for RoleService.
type RoleServiceOptions struct {
	Roles    core.RoleRepository
	Profiles core.ProfileRepository
	Metrics  statsd.Sink // Optional
	Logger   *slog.Logger
}

// RoleService answers role lookups for the authorization core and exposes the
// admin-facing role management operations.
type RoleService struct {
	roles    core.RoleRepository
	profiles core.ProfileRepository
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewRoleService constructs a new RoleService.
func NewRoleService(opts RoleServiceOptions) *RoleService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleService{
		roles:    opts.Roles,
		profiles: opts.Profiles,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

var _ authz.RoleChecker = (*RoleService)(nil)

// CheckRole performs the single read-only role lookup behind every access
// decision. The three outcomes are distinct: a found record, an absent record
// (Found=false, no error), and a failed lookup (error). It never writes.
func (s *RoleService) CheckRole(
	ctx context.Context,
	identity domainauth.Identity,
) (authz.CheckResult, error) {
	start := time.Now()

	asg, err := s.roles.Get(ctx, identity.ID)
	s.emitCheckMetrics(start, err)
	if err != nil {
		if errors.Is(err, data.ErrRoleRecordNotFound) {
			return authz.CheckResult{Found: false}, nil
		}
		return authz.CheckResult{}, fmt.Errorf("role lookup: %w", err)
	}

	return authz.CheckResult{Role: asg.Role, Found: true}, nil
}

// SetRole updates the role for a user. Callers must already be authorized.
func (s *RoleService) SetRole(
	ctx context.Context,
	userID string,
	role domainauth.Role,
) (*domainauth.RoleAssignment, error) {
	asg, err := s.roles.Set(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "role updated", "user_id", userID, "role", role)
	return asg, nil
}

// GrantAdminByEmail promotes the profile with the given email to admin. Used
// by the bootstrap CLI to create the first administrator.
func (s *RoleService) GrantAdminByEmail(ctx context.Context, email string) (*domainauth.RoleAssignment, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return s.SetRole(ctx, profile.ID, domainauth.RoleAdmin)
}

// ListUsers returns profiles with their effective roles for the admin user manager.
func (s *RoleService) ListUsers(ctx context.Context, limit, offset int) ([]*model.UserAccount, error) {
	return s.profiles.ListWithRoles(ctx, limit, offset)
}

func (s *RoleService) emitCheckMetrics(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil && !errors.Is(err, data.ErrRoleRecordNotFound) {
		outcome = "error"
	}
	s.metrics.Timing("authz.role_check", time.Since(start), map[string]string{"outcome": outcome})
	s.metrics.Count("authz.role_check.total", 1, map[string]string{"outcome": outcome})
}
