package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/budbeer/console/internal/store"
)

// totpSkew is the clock-drift tolerance in 30-second steps: a code from
// the adjacent window on either side of the current one is accepted.
const totpSkew = 1

// validTOTPCode checks a 6-digit code against a base32 secret at the given
// time, within the drift tolerance.
func validTOTPCode(code, secret string, at time.Time) bool {
	if secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// TwoFactorSetup is the provisioning payload returned by Setup. QRCode is
// a base64 PNG data URL the console renders for the authenticator scan.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

// TwoFactorService manages the TOTP enrollment lifecycle for admin
// accounts: setup generates a pending secret, enable activates it after a
// code confirmation, disable clears it after a password re-check.
type TwoFactorService struct {
	store  *store.Store
	issuer string
}

// NewTwoFactorService creates a TwoFactorService. The issuer appears in
// authenticator apps next to the account name.
func NewTwoFactorService(st *store.Store, issuer string) *TwoFactorService {
	if issuer == "" {
		issuer = "BudBeer"
	}
	return &TwoFactorService{store: st, issuer: issuer}
}

// Setup generates a fresh secret for the account and stores it pending.
// The account's login behavior does not change until Enable succeeds.
// Calling Setup again overwrites any earlier pending secret.
func (s *TwoFactorService) Setup(ctx context.Context, adminID int64) (*TwoFactorSetup, error) {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: admin.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	if err := s.store.SetPendingTOTPSecret(ctx, admin.ID, key.Secret()); err != nil {
		return nil, err
	}

	qr, err := renderQRCode(key)
	if err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:     key.Secret(),
		OtpauthURL: key.URL(),
		QRCode:     qr,
	}, nil
}

// Enable validates the code against the pending secret and activates it.
// The pending secret is retained on a wrong code so the admin may retry.
func (s *TwoFactorService) Enable(ctx context.Context, adminID int64, code string) error {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.TOTPSecret == "" {
		return fmt.Errorf("%w: two-factor setup has not been started", ErrValidation)
	}
	if !validTOTPCode(code, admin.TOTPSecret, time.Now()) {
		return ErrInvalidCode
	}
	return s.store.EnableTOTP(ctx, admin.ID)
}

// Disable turns off two-factor auth after re-verifying the account
// password, so a stolen session token alone cannot strip the protection.
func (s *TwoFactorService) Disable(ctx context.Context, adminID int64, password string) error {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return s.store.DisableTOTP(ctx, admin.ID)
}

// Enabled reports whether the account currently requires a second factor.
func (s *TwoFactorService) Enabled(ctx context.Context, adminID int64) (bool, error) {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		return false, err
	}
	return admin.TOTPEnabled, nil
}

// renderQRCode encodes the provisioning key as a base64 PNG data URL.
func renderQRCode(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode qr png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
