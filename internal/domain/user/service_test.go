package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// fakeRepo 测试用内存实现
type fakeRepo struct {
	users  map[string]*User // email → user
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	if _, ok := f.users[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("注册成功且密码落库为bcrypt哈希", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)

		u, err := svc.Register(ctx, "admin@example.com", "passw0rd123", "admin")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)

		stored := repo.users["admin@example.com"]
		assert.NotEqual(t, "passw0rd123", stored.Password, "明文密码不允许落库")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("passw0rd123")))
	})

	t.Run("非法邮箱", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		_, err := svc.Register(ctx, "not-an-email", "passw0rd123", "admin")
		assert.Error(t, err)
	})

	t.Run("弱密码", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		// 过短、纯字母、纯数字都被拒绝
		for _, pw := range []string{"a1", "onlyletters", "12345678"} {
			_, err := svc.Register(ctx, "admin@example.com", pw, "admin")
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "password=%q", pw)
		}
	})

	t.Run("邮箱重复", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		_, err := svc.Register(ctx, "admin@example.com", "passw0rd123", "admin")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "admin@example.com", "passw0rd123", "other")
		assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) Service {
		svc := NewService(newFakeRepo())
		_, err := svc.Register(ctx, "admin@example.com", "passw0rd123", "admin")
		require.NoError(t, err)
		return svc
	}

	t.Run("登录成功", func(t *testing.T) {
		svc := setup(t)
		u, err := svc.Login(ctx, "admin@example.com", "passw0rd123")
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Nickname)
	})

	t.Run("密码错误与账号不存在返回同一错误", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login(ctx, "admin@example.com", "wrongpass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

		// 防账号枚举
		_, err = svc.Login(ctx, "nobody@example.com", "passw0rd123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})
}
