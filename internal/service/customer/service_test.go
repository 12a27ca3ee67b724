package customer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"techstore/internal/domain"
	tokenrepo "techstore/internal/repository/token"
)

// memoryRepo is a lightweight in-memory credential store for tests.
type memoryRepo struct {
	accounts []domain.Account
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func sameTable(a, b domain.Role) bool {
	return (a == domain.RoleCustomer) == (b == domain.RoleCustomer)
}

func (r *memoryRepo) Create(_ context.Context, a domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if sameTable(existing.Role, a.Role) && (existing.Username == a.Username || existing.Email == a.Email) {
			return nil, domain.ErrAlreadyExists
		}
	}
	a.ID = int64(len(r.accounts) + 1)
	r.accounts = append(r.accounts, a)
	clone := a
	return &clone, nil
}

func (r *memoryRepo) GetByLogin(_ context.Context, role domain.Role, login string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Role == role && (strings.EqualFold(a.Username, login) || strings.EqualFold(a.Email, login)) {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, role domain.Role, id int64) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Role == role && a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestRegisterAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := New(&memoryRepo{}, newMemoryTokenRepo())
	ctx := context.Background()

	acc, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: " Abcdefg1 ",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if acc.Email != "alice@example.com" || acc.Role != domain.RoleCustomer {
		t.Fatalf("unexpected account %+v", acc)
	}

	for _, login := range []string{"alice", "alice@example.com"} {
		got, token, err := svc.Login(ctx, "buyer", login, "Abcdefg1")
		if err != nil {
			t.Fatalf("login %q failed: %v", login, err)
		}
		if token == "" || got.ID != acc.ID {
			t.Fatalf("unexpected login result %+v token=%q", got, token)
		}
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentialsAndRole(t *testing.T) {
	svc := New(&memoryRepo{}, newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "customer", "bob", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "staff", "bob", "Abcdefg1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("customer must not log in as staff, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "owner", "bob", "Abcdefg1"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLookupByToken(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(&memoryRepo{}, tokens)
	ctx := context.Background()

	staff, err := svc.CreateStaff(ctx, domain.RoleStaff, RegisterInput{Username: "sam", Email: "sam@example.com", Password: "Abcdefg1"})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	_, token, err := svc.Login(ctx, "staff", "sam", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != staff.ID || !got.IsStaff() {
		t.Fatalf("unexpected account %+v", got)
	}

	if _, err := svc.LookupByToken(ctx, "bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	if _, err := svc.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, ok := tokens.tokens[token]; ok {
		t.Fatalf("expired token should be deleted")
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc := New(&memoryRepo{}, newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "cy", Email: "cy@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, "customer", "cy", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(&memoryRepo{}, tokens)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "di", Email: "di@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(ctx, "customer", "di", "Abcdefg1"); err != nil {
			t.Fatalf("login: %v", err)
		}
	}

	if n, err := svc.PurgeExpiredTokens(ctx); err != nil || n != 0 {
		t.Fatalf("fresh tokens purged: n=%d err=%v", n, err)
	}
	svc.tokens.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	if n, err := svc.PurgeExpiredTokens(ctx); err != nil || n != 2 {
		t.Fatalf("expected 2 purged, got n=%d err=%v", n, err)
	}
	if len(tokens.tokens) != 0 {
		t.Fatalf("tokens left: %d", len(tokens.tokens))
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]domain.Role{
		"buyer":    domain.RoleCustomer,
		"Customer": domain.RoleCustomer,
		" staff ":  domain.RoleStaff,
		"admin":    domain.RoleAdmin,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRole(""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole for empty role")
	}
}
