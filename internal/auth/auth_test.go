package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/cache"
	"enquiry-admin-console/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type fakeUsers struct {
	calls int
	user  models.AuthUser
	err   error
}

func (f *fakeUsers) CurrentUser(context.Context, string) (models.AuthUser, error) {
	f.calls++
	return f.user, f.err
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestCheckMissingToken(t *testing.T) {
	users := &fakeUsers{}
	_, err := NewGate(users, nil).Check(context.Background(), "")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v", err)
	}
	if users.calls != 0 {
		t.Error("backend should not be asked without a token")
	}
}

func TestCheckExpiredTokenSkipsBackend(t *testing.T) {
	users := &fakeUsers{user: models.AuthUser{ID: "u1", Role: models.RoleAdmin}}
	_, err := NewGate(users, nil).Check(context.Background(), signed(t, time.Now().Add(-time.Minute)))
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
	if users.calls != 0 {
		t.Errorf("backend called %d times", users.calls)
	}
}

func TestCheckAdmin(t *testing.T) {
	users := &fakeUsers{user: models.AuthUser{ID: "u1", Email: "a@x.example", Role: models.RoleAdmin}}
	user, err := NewGate(users, nil).Check(context.Background(), signed(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if user.ID != "u1" || users.calls != 1 {
		t.Errorf("user=%+v calls=%d", user, users.calls)
	}
}

func TestCheckOpaqueTokenIsLeftToBackend(t *testing.T) {
	users := &fakeUsers{user: models.AuthUser{ID: "u1", Role: models.RoleAdmin}}
	if _, err := NewGate(users, nil).Check(context.Background(), "opaque-token"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if users.calls != 1 {
		t.Errorf("calls = %d", users.calls)
	}
}

func TestCheckRejectsNonAdmin(t *testing.T) {
	for _, role := range []string{"buyer", "vendor", ""} {
		users := &fakeUsers{user: models.AuthUser{ID: "u2", Role: role}}
		_, err := NewGate(users, nil).Check(context.Background(), "opaque")
		if !errors.Is(err, ErrForbiddenRole) {
			t.Errorf("role %q: err = %v", role, err)
		}
	}
}

func TestCheckBackendRejection(t *testing.T) {
	users := &fakeUsers{err: &backend.APIError{Status: 401, Message: "Not authenticated"}}
	_, err := NewGate(users, nil).Check(context.Background(), "opaque")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	users := &fakeUsers{err: context.Canceled}
	_, err := NewGate(users, nil).Check(ctx, "opaque")
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryStore()
	store := NewTokenStore(mem)

	a, err := store.Create(ctx, "tok-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, _ := store.Create(ctx, "tok-b")
	if a == b {
		t.Fatal("session ids must differ")
	}

	if got, _ := store.Load(ctx, a); got != "tok-a" {
		t.Errorf("Load(a) = %q", got)
	}
	if raw, ok, _ := mem.Get(ctx, "session/"+a+"/"+TokenKey); !ok || string(raw) != "tok-a" {
		t.Errorf("token not stored under the session key")
	}

	if err := store.Remove(ctx, a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := store.Load(ctx, a); got != "" {
		t.Errorf("Load after Remove = %q", got)
	}
	if got, _ := store.Load(ctx, b); got != "tok-b" {
		t.Errorf("other session affected: %q", got)
	}
	if got, err := store.Load(ctx, ""); got != "" || err != nil {
		t.Errorf("Load(\"\") = %q, %v", got, err)
	}
}
