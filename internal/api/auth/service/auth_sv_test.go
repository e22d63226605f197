package authService

import (
	"errors"
	"testing"

	"ReceiptTracker/internal/api/auth"
	authRepository "ReceiptTracker/internal/api/auth/repository"
	"ReceiptTracker/internal/entity"
	"ReceiptTracker/pkg/bcrypt"
	"ReceiptTracker/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeUserStore struct {
	byEmail map[string]entity.User
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user entity.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return auth.ErrEmailAlreadyExists
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return entity.User{}, auth.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, id string) error {
	for email, u := range f.byEmail {
		if u.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return auth.ErrUserNotFound
}

type fakeRepository struct {
	users *fakeUserStore
}

func (f *fakeRepository) NewClient(tx bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    f.users,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func newTestService() (AuthService, *fakeUserStore) {
	store := &fakeUserStore{byEmail: make(map[string]entity.User)}
	logger := logrus.New()
	svc := New(logger, &fakeRepository{users: store}, bcrypt.New(), utils.New())
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	svc, store := newTestService()
	ctx := context.Background()

	res, err := svc.User().RegisterUser(ctx, auth.CreateUserRequest{
		Email:    "user@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	if res.ID == "" {
		t.Fatalf("registered user has no ID")
	}

	stored := store.byEmail["user@example.com"]
	if stored.Password == "hunter2hunter2" {
		t.Fatalf("password stored in plain text")
	}

	login, err := svc.Auth().Login(ctx, auth.LoginUserRequest{
		Email:    "user@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.AccessToken == "" {
		t.Fatalf("login returned no token")
	}
	if login.TokenType != "bearer" {
		t.Fatalf("unexpected token type: %q", login.TokenType)
	}
	if login.ExpiresInMinutes <= 0 || login.ExpiresInMinutes > 31 {
		t.Fatalf("unexpected expiry: %v minutes", login.ExpiresInMinutes)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	svc, _ := newTestService()
	ctx := context.Background()

	req := auth.CreateUserRequest{Email: "dup@example.com", Password: "hunter2hunter2"}
	if _, err := svc.User().RegisterUser(ctx, req); err != nil {
		t.Fatalf("first RegisterUser() error = %v", err)
	}
	if _, err := svc.User().RegisterUser(ctx, req); !errors.Is(err, auth.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.User().RegisterUser(ctx, auth.CreateUserRequest{
		Email:    "user@example.com",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}

	_, err := svc.Auth().Login(ctx, auth.LoginUserRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, auth.ErrInvalidEmailOrPassword) {
		t.Fatalf("expected ErrInvalidEmailOrPassword, got %v", err)
	}
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	svc, _ := newTestService()

	_, err := svc.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, auth.ErrInvalidEmailOrPassword) {
		t.Fatalf("expected ErrInvalidEmailOrPassword, got %v", err)
	}
}
