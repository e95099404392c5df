// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/config"
	"github.com/angelamos/studio-portal/internal/core"
)

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*RefreshToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	f.tokens[t.ID] = &cp
	return nil
}

func (f *fakeTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
}

func (f *fakeTokens) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok || t.IsUsed {
		return fmt.Errorf("mark used: %w", core.ErrNotFound)
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
	return nil
}

func (f *fakeTokens) revokeWhere(match func(*RefreshToken) bool) int {
	now := time.Now()
	n := 0
	for _, t := range f.tokens {
		if t.RevokedAt == nil && match(t) {
			t.RevokedAt = &now
			n++
		}
	}
	return n
}

func (f *fakeTokens) RevokeByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeWhere(func(t *RefreshToken) bool { return t.ID == id }) == 0 {
		return fmt.Errorf("revoke: %w", core.ErrNotFound)
	}
	return nil
}

func (f *fakeTokens) RevokeByFamilyID(_ context.Context, familyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (f *fakeTokens) RevokeAllForAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeWhere(func(t *RefreshToken) bool { return t.AccountID == accountID })
	return nil
}

func (f *fakeTokens) ActiveSessions(_ context.Context, accountID string) ([]RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RefreshToken
	for _, t := range f.tokens {
		if t.AccountID == accountID && t.IsValid(time.Now()) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*AccountInfo
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*AccountInfo{}}
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) Create(_ context.Context, email, hash, name, role string) (*AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return nil, fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
	}
	a := &AccountInfo{ID: uuid.New().String(), Email: email, PasswordHash: hash, Name: name, Role: role}
	f.accounts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id].TokenVersion++
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id].PasswordHash = hash
	return nil
}

type testEnv struct {
	svc      *Service
	accounts *fakeAccounts
	tokens   *fakeTokens
	hasher   *core.PasswordHasher
	redis    *miniredis.Miniredis
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), "keys", "private.pem")
	require.NoError(t, GenerateKey(keyPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     keyPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: time.Hour,
		Issuer:             "studio-portal",
		Audience:           "studio-portal-api",
	})
	require.NoError(t, err)
	return m
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := core.NewPasswordHasher(core.PasswordParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	accounts := newFakeAccounts()
	tokens := newFakeTokens()

	svc := NewService(ServiceConfig{
		Repo:     tokens,
		JWT:      newTestJWT(t),
		Accounts: accounts,
		Hasher:   hasher,
		Guard:    NewLoginGuard(NewMemoryCounterStore(nil), 3, time.Minute, nil),
		Redis:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	})

	return &testEnv{svc: svc, accounts: accounts, tokens: tokens, hasher: hasher, redis: mr}
}

func (e *testEnv) addAccount(t *testing.T, email, password, role string) *AccountInfo {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	a, err := e.accounts.Create(context.Background(), email, hash, "Test", role)
	require.NoError(t, err)
	return a
}

func TestService_LoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	resp, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "ua", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	principal, err := env.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a.ID, principal.UserID)
	assert.Equal(t, "ann@example.com", principal.Email)
	assert.Equal(t, "client", principal.Role)
	assert.NotEmpty(t, principal.TokenID)
}

func TestService_LoginInvalidCredentialsIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	_, errWrong := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "nope"}, "", "")
	_, errMissing := env.svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "nope"}, "", "")

	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errMissing, ErrInvalidCredentials)
}

func TestService_LoginLockout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	for range 3 {
		_, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "bad"}, "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "", "")
	assert.ErrorIs(t, err, ErrLoginLocked)
}

func TestService_RefreshRotationAndReuse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	first, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	second, err := env.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = env.svc.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = env.svc.Refresh(ctx, second.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_LogoutBlacklistsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	resp, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)
	principal, err := env.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, principal, resp.Tokens.RefreshToken))

	_, err = env.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = env.svc.Refresh(ctx, resp.Tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_ChangePasswordRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addAccount(t, "ann@example.com", "s3cret-pass", "client")

	resp, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	assert.ErrorIs(t,
		env.svc.ChangePassword(ctx, a.ID, "wrong", "new-s3cret-pass"),
		ErrInvalidCredentials,
	)
	require.NoError(t, env.svc.ChangePassword(ctx, a.ID, "s3cret-pass", "new-s3cret-pass"))

	_, err = env.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "new-s3cret-pass"}, "", "")
	assert.NoError(t, err)
}

func TestService_Provision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Provision(ctx, "new@example.com", "New Client")
	require.NoError(t, err)
	assert.Len(t, result.TemporaryPassword, 16)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "new@example.com", Password: result.TemporaryPassword}, "", "")
	require.NoError(t, err)

	_, err = env.svc.Provision(ctx, "new@example.com", "Again")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestService_RevokeSessionOfOtherAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "ann@example.com", "s3cret-pass", "client")
	other := env.addAccount(t, "bob@example.com", "s3cret-pass", "client")

	_, err := env.svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"}, "", "")
	require.NoError(t, err)

	for id := range env.tokens.tokens {
		assert.ErrorIs(t, env.svc.RevokeSession(ctx, other.ID, id), core.ErrNotFound)
	}
}
