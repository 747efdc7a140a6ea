package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/acme-invoices/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DashboardPath is the root of the protected area.
const DashboardPath = "/dashboard"

// LoginPath is where anonymous visitors to the protected area are sent.
const LoginPath = "/login"

const minPasswordLength = 6

// AuthService checks credentials, issues session tokens and decides route
// access.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
	sessionTTL time.Duration
	// dummyHash is compared against when the email is unknown so that both
	// failure paths take about the same time.
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, sessionTTL time.Duration) *AuthService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("service: generate dummy hash: %v", err))
	}
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
		dummyHash:  dummy,
	}
}

// SessionTTL is how long an issued token stays valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// HashPassword returns the bcrypt hash of password at the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies credentials and returns a signed session token.
// A malformed email, a short password, an unknown email and a wrong password
// all yield domain.ErrInvalidCredentials. Lookup faults are returned wrapped.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if !wellFormedCredentials(email, password) {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}
	return token, nil
}

func wellFormedCredentials(email, password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	// Reject display-name forms such as "Name <a@b.c>".
	return err == nil && addr.Address == email
}

// Inspect validates a session token and loads the user it names.
// Invalid or expired tokens and deleted users yield domain.ErrUnauthorized.
func (s *AuthService) Inspect(ctx context.Context, tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrUnauthorized
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &domain.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		ExpiresAt: exp.Time,
	}, nil
}

// Authorize is the route guard:
//
//	protected, signed in      -> allow
//	protected, anonymous      -> deny (go to login)
//	unprotected, signed in    -> redirect to /dashboard
//	unprotected, anonymous    -> allow
//
// Every path starting with /dashboard is protected, including lookalikes
// such as /dashboards.
func Authorize(session *domain.Session, path string) domain.Access {
	protected := strings.HasPrefix(path, DashboardPath)
	signedIn := session.Authenticated()

	switch {
	case protected && signedIn:
		return domain.Access{Decision: domain.AccessAllow}
	case protected:
		return domain.Access{Decision: domain.AccessDeny, RedirectTo: LoginPath}
	case signedIn:
		return domain.Access{Decision: domain.AccessRedirect, RedirectTo: DashboardPath}
	default:
		return domain.Access{Decision: domain.AccessAllow}
	}
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(s.sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
