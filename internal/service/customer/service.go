package customer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"techstore/internal/domain"
	custrepo "techstore/internal/repository/customer"
	tokenrepo "techstore/internal/repository/token"
)

var (
	// ErrInvalidCredentials is returned when login/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidRole is returned for a login role outside customer, buyer, staff and admin.
	ErrInvalidRole = errors.New("invalid role")
)

// Service handles registration, login and bearer token lookups for
// customers and staff.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo custrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

// RegisterInput captures the fields of the registration endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ParseRole maps a login role to an account role. "buyer" is an alias of customer.
func ParseRole(raw string) (domain.Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "customer", "buyer":
		return domain.RoleCustomer, nil
	case "staff":
		return domain.RoleStaff, nil
	case "admin":
		return domain.RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	return s.create(ctx, domain.RoleCustomer, in)
}

// CreateStaff creates a staff or admin account.
func (s *Service) CreateStaff(ctx context.Context, role domain.Role, in RegisterInput) (*domain.Account, error) {
	if role != domain.RoleStaff && role != domain.RoleAdmin {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, role, in)
}

func (s *Service) create(ctx context.Context, role domain.Role, in RegisterInput) (*domain.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalidInput)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Account{
		Role:         role,
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashed),
	})
}

// Login validates credentials for the given role and issues an access token.
func (s *Service) Login(ctx context.Context, rawRole, login, password string) (*domain.Account, string, error) {
	role, err := ParseRole(rawRole)
	if err != nil {
		return nil, "", err
	}
	password = strings.TrimSpace(password)
	a, err := s.repo.GetByLogin(ctx, role, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, a.Role, a.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return a, access, nil
}

// LookupByToken returns the account bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Account, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	a, err := s.repo.GetByID(ctx, meta.Role, meta.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return a, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// PurgeExpiredTokens deletes access tokens past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.Purge(ctx)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrInvalidInput)
	}
	return nil
}
