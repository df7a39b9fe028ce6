package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

type HTTPGatewayConfig struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

// HTTPGateway talks to the auth REST functions in front of the identity
// provider. Calls go through a circuit breaker that only counts upstream
// outages, not rejected credentials.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPGateway(cfg HTTPGatewayConfig) *HTTPGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "auth-gateway"
	}
	cfg.Breaker.IsSuccessful = func(err error) bool {
		return err == nil || !apierr.Retryable(err)
	}

	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[struct{}](cfg.Breaker),
	}
}

type tokensResponse struct {
	Message string `json:"message"`
	Tokens  struct {
		IDToken      string `json:"idToken"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    int    `json:"expiresIn"`
	} `json:"tokens"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type registerResponse struct {
	Message       string `json:"message"`
	UserID        string `json:"userId"`
	UserConfirmed bool   `json:"userConfirmed"`
}

func (g *HTTPGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var resp tokensResponse
	if err := g.post(ctx, "/auth/login", "", creds, &resp, loginOverrides); err != nil {
		return nil, err
	}
	return resultFromTokens(resp)
}

func (g *HTTPGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	req := registerRequest{
		Email:       reg.Email,
		Password:    reg.Password,
		Name:        strings.TrimSpace(reg.FirstName + " " + reg.LastName),
		PhoneNumber: reg.Phone,
	}
	var resp registerResponse
	if err := g.post(ctx, "/auth/register", "", req, &resp, registerOverrides); err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		User: &domain.User{
			ID:        resp.UserID,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Phone:     reg.Phone,
		},
		Message:   resp.Message,
		Confirmed: resp.UserConfirmed,
	}, nil
}

func (g *HTTPGateway) Logout(ctx context.Context, token string) error {
	return g.post(ctx, "/auth/logout", token, nil, nil, nil)
}

func (g *HTTPGateway) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if refreshToken == "" {
		return nil, apierr.New(apierr.KindUnauthorized, "Your session has expired. Please login again.")
	}
	body := map[string]string{"refreshToken": refreshToken}
	var resp tokensResponse
	if err := g.post(ctx, "/auth/refresh", "", body, &resp, refreshOverrides); err != nil {
		return nil, err
	}
	res, err := resultFromTokens(resp)
	if err != nil {
		return nil, err
	}
	if res.RefreshToken == "" {
		res.RefreshToken = refreshToken
	}
	return res, nil
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, email string) error {
	return g.post(ctx, "/auth/forgot-password", "", map[string]string{"email": email}, nil, forgotPasswordOverrides)
}

func (g *HTTPGateway) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return g.post(ctx, "/auth/reset-password", "", body, nil, resetPasswordOverrides)
}

func (g *HTTPGateway) post(ctx context.Context, path, bearer string, in, out any, overrides apierr.Overrides) error {
	_, err := g.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, g.do(ctx, http.MethodPost, path, bearer, in, out, overrides)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apierr.Unavailable(err)
	}
	return err
}

func (g *HTTPGateway) do(ctx context.Context, method, path, bearer string, in, out any, overrides apierr.Overrides) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apierr.Unavailable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apierr.Unavailable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierr.FromStatus(resp.StatusCode, upstreamMessage(data), overrides)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// upstreamMessage pulls a human message out of an error body; the auth
// functions use "error", other endpoints "message".
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func resultFromTokens(resp tokensResponse) (*domain.AuthResult, error) {
	if resp.Tokens.AccessToken == "" {
		return nil, apierr.New(apierr.KindServerError, "Sign-in response did not include a token. Please try again.")
	}
	user, err := userFromIDToken(resp.Tokens.IDToken)
	if err != nil {
		return nil, &apierr.Error{
			Kind:    apierr.KindServerError,
			Message: "Sign-in response could not be read. Please try again.",
			Err:     err,
		}
	}
	return &domain.AuthResult{
		User:         user,
		Token:        resp.Tokens.AccessToken,
		RefreshToken: resp.Tokens.RefreshToken,
		Message:      resp.Message,
		Confirmed:    true,
	}, nil
}

// userFromIDToken reads the profile claims of an id token. The signature is
// not checked: id tokens only ever arrive from the provider, never from a
// visitor.
func userFromIDToken(idToken string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.New("id token has no subject")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("id token has no email")
	}
	name, _ := claims["name"].(string)
	phone, _ := claims["phone_number"].(string)

	first, last := splitName(name)
	return &domain.User{
		ID:        sub,
		Email:     email,
		FirstName: first,
		LastName:  last,
		Phone:     phone,
	}, nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
