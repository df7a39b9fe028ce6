package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type AuthService interface {
	Session(ctx context.Context, visitorID string) domain.SessionState
	Login(ctx context.Context, visitorID string, creds domain.Credentials, rememberMe bool) (domain.SessionState, error)
	Register(ctx context.Context, visitorID string, reg domain.Registration) (*domain.AuthResult, domain.SessionState, error)
	Logout(ctx context.Context, visitorID string) domain.SessionState
	RefreshSession(ctx context.Context, visitorID string) (domain.SessionState, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateRewardPoints(ctx context.Context, visitorID string, points int) (domain.SessionState, error)
}

type AuthHandler struct {
	svc      AuthService
	validate *validator.Validate
	timeout  time.Duration
}

func NewAuthHandler(svc AuthService, v *validator.Validate, timeout time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, validate: v, timeout: timeout}
}

type LoginRequest struct {
	domain.Credentials
	RememberMe bool `json:"rememberMe"`
}

type RegisterResponse struct {
	Message   string              `json:"message,omitempty"`
	Confirmed bool                `json:"confirmed"`
	Session   domain.SessionState `json:"session"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,strong_password"`
}

type RewardPointsRequest struct {
	Points int `json:"points" validate:"gte=0"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// GetSession handles GET /api/v1/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Session(r.Context(), getVisitorID(r.Context())))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.svc.Login(ctx, getVisitorID(ctx), req.Credentials, req.RememberMe)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Register handles POST /api/v1/auth/register. An account that still needs
// email confirmation is created without signing the visitor in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, session, err := h.svc.Register(ctx, getVisitorID(ctx), req)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	resp := RegisterResponse{Session: session}
	if res != nil {
		resp.Message = res.Message
		resp.Confirmed = res.Confirmed
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Logout handles POST /api/v1/auth/logout. It always succeeds locally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, h.svc.Logout(ctx, getVisitorID(ctx)))
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.svc.RefreshSession(ctx, getVisitorID(ctx))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.ForgotPassword(ctx, req.Email); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.ResetPassword(ctx, req.Token, req.Password); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// UpdateRewardPoints handles PUT /api/v1/auth/reward-points
func (h *AuthHandler) UpdateRewardPoints(w http.ResponseWriter, r *http.Request) {
	var req RewardPointsRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()
	session, err := h.svc.UpdateRewardPoints(ctx, getVisitorID(ctx), req.Points)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}
