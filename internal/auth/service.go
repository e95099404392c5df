// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

const (
	blacklistPrefix       = "blacklist:"
	temporaryPasswordSize = 12
	roleClient            = "client"
)

type AccountProvider interface {
	GetByEmail(ctx context.Context, email string) (*AccountInfo, error)
	GetByID(ctx context.Context, id string) (*AccountInfo, error)
	Create(ctx context.Context, email, passwordHash, name, role string) (*AccountInfo, error)
	IncrementTokenVersion(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type Service struct {
	repo     Repository
	jwt      *JWTManager
	accounts AccountProvider
	hasher   *core.PasswordHasher
	guard    *LoginGuard
	redis    *redis.Client
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceConfig struct {
	Repo     Repository
	JWT      *JWTManager
	Accounts AccountProvider
	Hasher   *core.PasswordHasher
	Guard    *LoginGuard
	Redis    *redis.Client
	Logger   *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     cfg.Repo,
		jwt:      cfg.JWT,
		accounts: cfg.Accounts,
		hasher:   cfg.Hasher,
		guard:    cfg.Guard,
		redis:    cfg.Redis,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	if err := s.guard.Check(ctx, req.Email, ipAddress); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("get account: %w", err)
		}
		//nolint:errcheck // equalizes timing for unknown emails
		_, _, _ = s.hasher.VerifyOrBurn(req.Password, nil)
		s.guard.Fail(ctx, req.Email, ipAddress)
		return nil, ErrInvalidCredentials
	}

	valid, rehash, err := s.hasher.VerifyOrBurn(req.Password, &account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		s.guard.Fail(ctx, req.Email, ipAddress)
		return nil, ErrInvalidCredentials
	}

	if rehash != "" {
		if err := s.accounts.UpdatePassword(ctx, account.ID, rehash); err != nil {
			s.logger.Warn("password rehash failed", "account_id", account.ID, "error", err)
		}
	}

	s.guard.Succeed(ctx, req.Email)
	return s.issueTokens(ctx, account, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if stored.IsUsed {
		if err := s.repo.RevokeByFamilyID(ctx, stored.FamilyID); err != nil {
			s.logger.Error("revoke reused token family", "family_id", stored.FamilyID, "error", err)
		}
		return nil, ErrTokenReuse
	}

	if !stored.IsValid(s.now()) {
		if stored.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	account, err := s.accounts.GetByID(ctx, stored.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return s.issueTokens(ctx, account, userAgent, ipAddress, stored.FamilyID, &stored.ID)
}

// Logout revokes the presented refresh token, if any, and blacklists the
// access token that authorized the call.
func (s *Service) Logout(
	ctx context.Context,
	principal *middleware.Principal,
	refreshToken string,
) error {
	if refreshToken != "" {
		stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
		switch {
		case errors.Is(err, core.ErrNotFound):
		case err != nil:
			return fmt.Errorf("find token: %w", err)
		case stored.AccountID != principal.UserID:
			return fmt.Errorf("logout: %w", core.ErrForbidden)
		default:
			if err := s.repo.RevokeByID(ctx, stored.ID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("revoke token: %w", err)
			}
		}
	}

	return s.revokeAccessToken(ctx, principal.TokenID)
}

func (s *Service) LogoutAll(ctx context.Context, accountID string) error {
	if err := s.repo.RevokeAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.accounts.IncrementTokenVersion(ctx, accountID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}
	return nil
}

func (s *Service) revokeAccessToken(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistPrefix+jti, "1", s.jwt.AccessTokenTTL()).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// VerifyAccessToken validates the token and checks it was not revoked by
// logout, a role change or a password change.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.Principal, error) {
	principal, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	exists, err := s.redis.Exists(ctx, blacklistPrefix+principal.TokenID).Result()
	switch {
	case err != nil:
		s.logger.Warn("token blacklist unavailable", "error", err)
	case exists > 0:
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	account, err := s.accounts.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if principal.TokenVersion < account.TokenVersion {
		return nil, fmt.Errorf("verify token: stale version: %w", core.ErrTokenRevoked)
	}

	principal.Email = account.Email
	principal.Role = account.Role
	return principal, nil
}

func (s *Service) ActiveSessions(ctx context.Context, accountID string) ([]SessionInfo, error) {
	tokens, err := s.repo.ActiveSessions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return sessions, nil
}

func (s *Service) RevokeSession(ctx context.Context, accountID, sessionID string) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.AccountID != accountID {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ChangePassword requires the current password and signs out every session.
func (s *Service) ChangePassword(
	ctx context.Context,
	accountID, currentPassword, newPassword string,
) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	valid, _, err := s.hasher.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogoutAll(ctx, accountID)
}

func (s *Service) CurrentAccount(ctx context.Context, accountID string) (*AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := toAccountResponse(account)
	return &resp, nil
}

// Provision creates a client login with a temporary password. There is no
// self-service registration.
func (s *Service) Provision(ctx context.Context, email, name string) (*ProvisionResult, error) {
	password, err := core.GenerateSecureToken(temporaryPasswordSize)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, email, hash, name, roleClient)
	if err != nil {
		return nil, fmt.Errorf("provision account: %w", err)
	}

	return &ProvisionResult{
		AccountID:         account.ID,
		Email:             account.Email,
		TemporaryPassword: password,
	}, nil
}

func (s *Service) issueTokens(
	ctx context.Context,
	account *AccountInfo,
	userAgent, ipAddress, familyID string,
	previousID *string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		AccountID:    account.ID,
		Email:        account.Email,
		Role:         account.Role,
		TokenVersion: account.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newID := uuid.New().String()
	if err := s.repo.Create(ctx, &RefreshToken{
		ID:        newID,
		AccountID: account.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if previousID != nil {
		if err := s.repo.MarkAsUsed(ctx, *previousID, newID); err != nil {
			s.logger.Warn("mark refresh token used", "token_id", *previousID, "error", err)
		}
	}

	return &AuthResponse{
		Account: toAccountResponse(account),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(time.Until(access.ExpiresAt).Seconds()),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
