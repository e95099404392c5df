// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/auth"
	"github.com/angelamos/studio-portal/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.AccountInfo, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccountInfo(a), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.AccountInfo, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toAccountInfo(a), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name, role string,
) (*auth.AccountInfo, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"create account: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	a := &Account{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return toAccountInfo(a), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, id string) error {
	return s.repo.IncrementTokenVersion(ctx, id)
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAccounts(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateRole changes the role and invalidates outstanding access tokens.
func (s *Service) UpdateRole(
	ctx context.Context,
	requesterID, id, role string,
) (*Account, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}
	if requesterID == id && role != RoleAdmin {
		return nil, fmt.Errorf("update role: cannot demote yourself: %w", core.ErrForbidden)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteAccount(ctx context.Context, requesterID, id string) error {
	if requesterID == id {
		return fmt.Errorf("delete account: cannot delete yourself: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin accounts: %w", core.ErrForbidden)
	}

	return s.repo.SoftDelete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toAccountInfo(a *Account) *auth.AccountInfo {
	return &auth.AccountInfo{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		TokenVersion: a.TokenVersion,
		CreatedAt:    a.CreatedAt,
	}
}

var _ auth.AccountProvider = (*Service)(nil)
