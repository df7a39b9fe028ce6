// Package auth holds the visitor's sign-in session and the identity provider
// it talks to.
package auth

import (
	"context"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
)

// Session is the visitor's sign-in state. User and token are always set or
// cleared together. Not safe for concurrent use.
type Session struct {
	bridge        *snapshot.Bridge
	user          *domain.User
	token         string
	refreshToken  string
	rememberEmail string
	loading       bool
}

// Load hydrates the session. A stored user without a token (or the reverse)
// is treated as signed out and its leftovers are removed.
func Load(ctx context.Context, bridge *snapshot.Bridge) *Session {
	s := &Session{bridge: bridge}

	var user domain.User
	hasUser := bridge.Load(ctx, snapshot.KeyUser, &user) && user.ID != "" && user.Email != ""
	token, hasToken := bridge.LoadString(ctx, snapshot.KeyToken)
	hasToken = hasToken && token != ""

	switch {
	case hasUser && hasToken:
		s.user = &user
		s.token = token
		s.refreshToken, _ = bridge.LoadString(ctx, snapshot.KeyRefreshToken)
	case hasUser || hasToken:
		bridge.Remove(ctx, snapshot.KeyUser, snapshot.KeyToken, snapshot.KeyRefreshToken)
	}

	s.rememberEmail, _ = bridge.LoadString(ctx, snapshot.KeyRememberEmail)
	return s
}

func (s *Session) LoginStart() {
	s.loading = true
}

// LoginSuccess signs the visitor in.
func (s *Session) LoginSuccess(ctx context.Context, user domain.User, token, refreshToken string) {
	s.user = &user
	s.token = token
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.loading = false

	s.bridge.Save(ctx, snapshot.KeyUser, user)
	s.bridge.Save(ctx, snapshot.KeyToken, token)
	if s.refreshToken != "" {
		s.bridge.Save(ctx, snapshot.KeyRefreshToken, s.refreshToken)
	}
}

// LoginFailure ends a login attempt without recording it.
func (s *Session) LoginFailure() {
	s.loading = false
}

func (s *Session) RegisterStart() {
	s.loading = true
}

// RegisterSuccess ends a registration. The visitor is signed in only when the
// provider confirmed the account right away and issued a token.
func (s *Session) RegisterSuccess(ctx context.Context, res *domain.AuthResult) {
	s.loading = false
	if res == nil || res.User == nil || res.Token == "" {
		return
	}
	s.LoginSuccess(ctx, *res.User, res.Token, res.RefreshToken)
}

func (s *Session) RegisterFailure() {
	s.loading = false
}

// Logout clears the session and its stored keys. The remembered email stays.
func (s *Session) Logout(ctx context.Context) {
	s.user = nil
	s.token = ""
	s.refreshToken = ""
	s.loading = false
	s.bridge.Remove(ctx, snapshot.KeyUser, snapshot.KeyToken, snapshot.KeyRefreshToken)
}

// UpdateRewardPoints sets the signed-in user's points. It reports false and
// does nothing when nobody is signed in.
func (s *Session) UpdateRewardPoints(ctx context.Context, points int) bool {
	if s.user == nil {
		return false
	}
	s.user.RewardPoints = points
	s.bridge.Save(ctx, snapshot.KeyUser, *s.user)
	return true
}

// SetRememberEmail stores the email to prefill the login form; empty forgets it.
func (s *Session) SetRememberEmail(ctx context.Context, email string) {
	s.rememberEmail = email
	if email == "" {
		s.bridge.Remove(ctx, snapshot.KeyRememberEmail)
		return
	}
	s.bridge.Save(ctx, snapshot.KeyRememberEmail, email)
}

func (s *Session) IsAuthenticated() bool {
	return s.user != nil && s.token != ""
}

func (s *Session) Loading() bool {
	return s.loading
}

func (s *Session) User() *domain.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserID() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) RefreshToken() string {
	return s.refreshToken
}

func (s *Session) State() domain.SessionState {
	return domain.SessionState{
		User:            s.User(),
		IsAuthenticated: s.IsAuthenticated(),
		Loading:         s.loading,
		RememberEmail:   s.rememberEmail,
	}
}
