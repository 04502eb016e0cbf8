package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/budbeer/console/internal/store"
)

// AuthConfig controls token lifetimes for the auth service.
type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
	// Logger receives bookkeeping failures that must not fail a login.
	// Defaults to slog.Default.
	Logger *slog.Logger
}

// Principal is the admin identity carried by a validated session token.
type Principal struct {
	AdminID  int64
	Username string
}

// LoginResult is the outcome of a successful password check. Exactly one
// of Token and TempToken is set: a full session when the account has no
// second factor, otherwise a short-lived challenge token that must be
// upgraded through VerifyTwoFactor.
type LoginResult struct {
	Token             string
	RequiresTwoFactor bool
	TempToken         string
}

// AuthService owns the login flow: password verification, the step-up
// two-factor challenge, and session token issuance and validation.
type AuthService struct {
	store      *store.Store
	cfg        AuthConfig
	logger     *slog.Logger
	challenges *challengeRegistry
}

// NewAuthService creates an AuthService backed by the given store.
func NewAuthService(st *store.Store, cfg AuthConfig) *AuthService {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ChallengeTTL == 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthService{
		store:      st,
		cfg:        cfg,
		logger:     cfg.Logger,
		challenges: newChallengeRegistry(cfg.ChallengeTTL),
	}
}

// Login verifies a username/password pair. Unknown usernames and wrong
// passwords both come back as ErrInvalidCredentials so callers cannot
// enumerate accounts. Accounts with TOTP enabled get a challenge token
// instead of a session; no session exists until the code is verified.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if admin.TOTPEnabled {
		return &LoginResult{
			RequiresTwoFactor: true,
			TempToken:         s.challenges.issue(admin.ID),
		}, nil
	}

	token, err := s.IssueToken(admin.ID, admin.Username)
	if err != nil {
		return nil, err
	}
	s.recordLastLogin(ctx, admin.ID)

	return &LoginResult{Token: token}, nil
}

// VerifyTwoFactor upgrades a pending challenge into a session. The
// challenge survives a wrong code so the admin may retry, but is consumed
// exactly once on success: a concurrent retry of the same token after a
// success sees ErrChallengeNotFound, which callers should treat as an
// expected condition rather than a fault.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, tempToken, code string) (string, error) {
	accountID, ok := s.challenges.peek(tempToken)
	if !ok {
		return "", ErrChallengeNotFound
	}

	admin, err := s.store.GetAdmin(ctx, accountID)
	if err != nil {
		return "", ErrChallengeNotFound
	}

	if !validTOTPCode(code, admin.TOTPSecret, time.Now()) {
		return "", ErrInvalidCode
	}

	// The code checked out; whoever deletes the entry wins the session.
	if !s.challenges.consume(tempToken) {
		return "", ErrChallengeNotFound
	}

	token, err := s.IssueToken(admin.ID, admin.Username)
	if err != nil {
		return "", err
	}
	s.recordLastLogin(ctx, admin.ID)
	return token, nil
}

// recordLastLogin is bookkeeping; a failure is logged and never fails
// the login that triggered it.
func (s *AuthService) recordLastLogin(ctx context.Context, adminID int64) {
	if err := s.store.UpdateAdminLastLogin(ctx, adminID); err != nil {
		s.logger.Warn("update last login", "admin_id", adminID, "error", err)
	}
}

// IssueToken mints a signed session token for the given admin.
func (s *AuthService) IssueToken(adminID int64, username string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
			Issuer:    "budbeer-console",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken verifies a bearer session token and returns the admin
// identity bound to it.
func (s *AuthService) ValidateToken(tokenStr string) (*Principal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &Principal{
		AdminID:  claims.AdminID,
		Username: claims.Username,
	}, nil
}

// SessionTTL exposes the configured session lifetime for response payloads.
func (s *AuthService) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}

type sessionClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
