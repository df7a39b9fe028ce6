package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"go.uber.org/zap"
)

const accessTokenTTL = time.Hour

type account struct {
	user      domain.User
	password  [32]byte
	confirmed bool
}

// MemoryGateway is an in-process identity provider for local runs and
// tests. It answers like the real auth functions, including their status
// codes, and signs HS256 tokens with its own secret.
type MemoryGateway struct {
	mu          sync.Mutex
	secret      []byte
	autoConfirm bool
	validate    *validator.Validate
	accounts    map[string]*account // by lower-cased email
	refresh     map[string]string   // refresh token -> email
	resets      map[string]string   // reset token -> email
	now         func() time.Time
}

func NewMemoryGateway(secret []byte, autoConfirm bool, v *validator.Validate) *MemoryGateway {
	return &MemoryGateway{
		secret:      secret,
		autoConfirm: autoConfirm,
		validate:    v,
		accounts:    make(map[string]*account),
		refresh:     make(map[string]string),
		resets:      make(map[string]string),
		now:         time.Now,
	}
}

func (m *MemoryGateway) Register(_ context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	if err := m.validate.Struct(reg); err != nil {
		status := http.StatusBadRequest
		if fields := validation.FieldErrors(err); len(fields) == 1 && fields["password"] != "" {
			status = http.StatusUnprocessableEntity
		}
		return nil, apierr.FromStatus(status, "", registerOverrides)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(reg.Email)
	if _, exists := m.accounts[key]; exists {
		return nil, apierr.FromStatus(http.StatusConflict, "", registerOverrides)
	}

	acc := &account{
		user: domain.User{
			ID:        uuid.NewString(),
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Phone:     reg.Phone,
		},
		password:  sha256.Sum256([]byte(reg.Password)),
		confirmed: m.autoConfirm,
	}
	m.accounts[key] = acc

	res := &domain.AuthResult{
		Message:   "User registered successfully. Verification required.",
		Confirmed: acc.confirmed,
	}
	if acc.confirmed {
		res.Message = "User registered successfully."
		if err := m.issue(acc, res); err != nil {
			return nil, err
		}
	}
	u := acc.user
	res.User = &u
	return res, nil
}

func (m *MemoryGateway) Login(_ context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[strings.ToLower(creds.Email)]
	if !ok {
		return nil, apierr.FromStatus(http.StatusNotFound, "", loginOverrides)
	}
	given := sha256.Sum256([]byte(creds.Password))
	if subtle.ConstantTimeCompare(given[:], acc.password[:]) != 1 {
		return nil, apierr.FromStatus(http.StatusUnauthorized, "", loginOverrides)
	}
	if !acc.confirmed {
		return nil, apierr.FromStatus(http.StatusForbidden, "", loginOverrides)
	}

	res := &domain.AuthResult{Message: "Login successful", Confirmed: true}
	if err := m.issue(acc, res); err != nil {
		return nil, err
	}
	u := acc.user
	res.User = &u
	return res, nil
}

func (m *MemoryGateway) Logout(_ context.Context, _ string) error {
	return nil
}

func (m *MemoryGateway) Refresh(_ context.Context, refreshToken string) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.refresh[refreshToken]
	if !ok {
		return nil, apierr.FromStatus(http.StatusUnauthorized, "", refreshOverrides)
	}
	acc := m.accounts[email]
	token, err := m.sign(acc.user)
	if err != nil {
		return nil, err
	}
	u := acc.user
	return &domain.AuthResult{User: &u, Token: token, RefreshToken: refreshToken, Confirmed: true}, nil
}

func (m *MemoryGateway) ForgotPassword(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.accounts[key]; !ok {
		return apierr.FromStatus(http.StatusNotFound, "", forgotPasswordOverrides)
	}
	token := uuid.NewString()
	m.resets[token] = key
	zap.L().Info("password reset requested", zap.String("email", email), zap.String("reset_token", token))
	return nil
}

// ResetToken returns the pending reset token for email, if any.
func (m *MemoryGateway) ResetToken(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(email)
	for tok, e := range m.resets {
		if e == key {
			return tok, true
		}
	}
	return "", false
}

func (m *MemoryGateway) ResetPassword(_ context.Context, token, newPassword string) error {
	if err := m.validate.Var(newPassword, "required,min=8,strong_password"); err != nil {
		return apierr.FromStatus(http.StatusUnprocessableEntity, "", resetPasswordOverrides)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.resets[token]
	if !ok {
		return apierr.FromStatus(http.StatusBadRequest, "", resetPasswordOverrides)
	}
	delete(m.resets, token)
	m.accounts[email].password = sha256.Sum256([]byte(newPassword))
	return nil
}

// Confirm marks the account as verified, as following the emailed link would.
func (m *MemoryGateway) Confirm(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[strings.ToLower(email)]
	if ok {
		acc.confirmed = true
	}
	return ok
}

func (m *MemoryGateway) issue(acc *account, res *domain.AuthResult) error {
	token, err := m.sign(acc.user)
	if err != nil {
		return err
	}
	refresh := uuid.NewString()
	m.refresh[refresh] = strings.ToLower(acc.user.Email)
	res.Token = token
	res.RefreshToken = refresh
	return nil
}

func (m *MemoryGateway) sign(u domain.User) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"iss":   "pinkblueberry-identity",
		"sub":   u.ID,
		"email": u.Email,
		"name":  strings.TrimSpace(u.FirstName + " " + u.LastName),
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
