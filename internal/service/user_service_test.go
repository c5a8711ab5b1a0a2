package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ericlong128/reimbursement-service/internal/auth"
	"github.com/ericlong128/reimbursement-service/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user.CreatedAt = time.Now()
	f.users[user.UserID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	f.users[id] = u
	return &u, nil
}

type staticSecret []byte

func (s staticSecret) Current() []byte { return []byte(s) }

func newUserService(repo *fakeUserRepo) (*UserService, *auth.TokenManager) {
	tokenMgr := auth.NewTokenManager(staticSecret("test-secret"), 60)
	svc := NewUserService(UserDependencies{
		UserRepo:   repo,
		TokenMgr:   tokenMgr,
		Logger:     zap.NewNop(),
		BcryptCost: 4,
	})
	return svc, tokenMgr
}

func TestRegisterDefaultsToEmployee(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), "alice", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	assert.NotEmpty(t, user.UserID)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "alice", "secret123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "other", "")
	require.Error(t, err)
	assert.Equal(t, 409, domainStatus(t, err))
}

func TestRegisterRejectsEmptyCredentials(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "", "secret123", "")
	require.Error(t, err)
	assert.Equal(t, 400, domainStatus(t, err))
}

func TestLoginUnknownUsernameIsNotFound(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, _, _, err := svc.Login(context.Background(), "nobody", "whatever")
	require.Error(t, err)
	assert.Equal(t, 404, domainStatus(t, err))
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "alice", "secret123", "")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, domainStatus(t, err))
}

func TestLoginIssuesTokenWithClaims(t *testing.T) {
	svc, tokenMgr := newUserService(newFakeUserRepo())

	registered, err := svc.Register(context.Background(), "alice", "secret123", domain.RoleManager)
	require.NoError(t, err)

	user, token, exp, err := svc.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, user.UserID)
	assert.True(t, exp.After(time.Now()))

	claims, err := tokenMgr.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestUpdatePasswordReplacesCredential(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newUserService(repo)

	user, err := svc.Register(context.Background(), "alice", "secret123", "")
	require.NoError(t, err)
	oldHash := user.PasswordHash

	updated, err := svc.UpdatePassword(context.Background(), user.UserID, "newpass456")
	require.NoError(t, err)
	assert.Equal(t, user.Username, updated.Username)
	assert.Equal(t, user.Role, updated.Role)
	assert.NotEqual(t, oldHash, updated.PasswordHash)

	_, _, _, err = svc.Login(context.Background(), "alice", "newpass456")
	require.NoError(t, err)
}

func TestUpdatePasswordUnknownUser(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.UpdatePassword(context.Background(), "missing", "newpass")
	require.Error(t, err)
	assert.Equal(t, 404, domainStatus(t, err))
}

func TestToggleRoleFlipsBothWays(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "bob", "secret123", "")
	require.NoError(t, err)

	promoted, err := svc.ToggleRole(context.Background(), domain.RoleManager, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, promoted.Role)

	demoted, err := svc.ToggleRole(context.Background(), domain.RoleManager, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, demoted.Role)
}

func TestToggleRoleRequiresManager(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "bob", "secret123", "")
	require.NoError(t, err)

	_, err = svc.ToggleRole(context.Background(), domain.RoleEmployee, "bob")
	require.Error(t, err)
	assert.Equal(t, 403, domainStatus(t, err))
}

func TestToggleRoleUnknownUser(t *testing.T) {
	svc, _ := newUserService(newFakeUserRepo())

	_, err := svc.ToggleRole(context.Background(), domain.RoleManager, "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, domainStatus(t, err))
}
