package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	seq   int
	users map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*User)}
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memRepo) Create(ctx context.Context, u *User) error {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now().UTC()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *memRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

func TestRegister(t *testing.T) {
	s := NewService(newMemRepo(), plainHasher{})

	u, err := s.Register(context.Background(), "  Student@Campus.EDU ", "supersecret", " Alex ")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "student@campus.edu", u.Email, "email is normalized")
	assert.Equal(t, "Alex", u.Name)
	assert.Equal(t, RoleStudent, u.Role, "self-registration always yields the student role")
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	s := NewService(newMemRepo(), plainHasher{})
	ctx := context.Background()

	_, err := s.Register(ctx, "   ", "supersecret", "Alex")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = s.Register(ctx, "a@b.c", "short", "Alex")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = s.Register(ctx, "a@b.c", "supersecret", "Alex")
	require.NoError(t, err)
	_, err = s.Register(ctx, "A@B.C", "supersecret", "Imposter")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo, plainHasher{})
	ctx := context.Background()

	registered, err := s.Register(ctx, "a@b.c", "supersecret", "Alex")
	require.NoError(t, err)

	u, err := s.Login(ctx, "a@b.c", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.NotNil(t, u.LastLoginAt)

	_, err = s.Login(ctx, "a@b.c", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody@b.c", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo, plainHasher{})
	ctx := context.Background()

	u, err := s.Register(ctx, "a@b.c", "supersecret", "Alex")
	require.NoError(t, err)
	repo.users[u.ID].IsActive = false

	_, err = s.Login(ctx, "a@b.c", "supersecret")
	assert.ErrorIs(t, err, ErrInactiveUser)
}
