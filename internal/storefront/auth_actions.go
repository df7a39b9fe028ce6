package storefront

import (
	"context"
	"errors"

	"github.com/marte1309/PinkBlueberrySalon/internal/apierr"
	"github.com/marte1309/PinkBlueberrySalon/internal/customer"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

func (s *Service) Session(ctx context.Context, visitorID string) domain.SessionState {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()
	return v.Session.State()
}

// Login signs the visitor in. rememberMe keeps the email for the next visit;
// without it any remembered email is forgotten.
func (s *Service) Login(ctx context.Context, visitorID string, creds domain.Credentials, rememberMe bool) (domain.SessionState, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	callCtx, seq := s.beginAuth(ctx, v)
	v.Session.LoginStart()
	release()

	res, err := s.auth.Login(callCtx, creds)

	v, release = s.registry.Acquire(ctx, visitorID)
	defer release()
	if !s.endAuth(v, seq) {
		return v.Session.State(), ErrSuperseded
	}
	if err == nil && (res == nil || res.User == nil || res.Token == "") {
		err = apierr.New(apierr.KindNotConfirmed, "Please confirm your email address before logging in")
	}
	if err != nil {
		v.Session.LoginFailure()
		return v.Session.State(), err
	}

	v.Session.LoginSuccess(ctx, *res.User, res.Token, res.RefreshToken)
	if rememberMe {
		v.Session.SetRememberEmail(ctx, creds.Email)
	} else {
		v.Session.SetRememberEmail(ctx, "")
	}
	v.Customer.UpdateRewardTier(ctx, customer.TierForPoints(res.User.RewardPoints))

	logger.FromContext(ctx).Info("visitor signed in",
		zap.String("visitor_id", visitorID),
		zap.String("user_id", res.User.ID))
	return v.Session.State(), nil
}

// Register creates an account. The visitor is signed in only when the
// provider confirmed the account right away.
func (s *Service) Register(ctx context.Context, visitorID string, reg domain.Registration) (*domain.AuthResult, domain.SessionState, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	callCtx, seq := s.beginAuth(ctx, v)
	v.Session.RegisterStart()
	release()

	res, err := s.auth.Register(callCtx, reg)

	v, release = s.registry.Acquire(ctx, visitorID)
	defer release()
	if !s.endAuth(v, seq) {
		return nil, v.Session.State(), ErrSuperseded
	}
	if err != nil {
		v.Session.RegisterFailure()
		return nil, v.Session.State(), err
	}

	v.Session.RegisterSuccess(ctx, res)
	return res, v.Session.State(), nil
}

// Logout signs the visitor out locally first and then tells the provider.
// A provider failure is logged and otherwise ignored.
func (s *Service) Logout(ctx context.Context, visitorID string) domain.SessionState {
	v, release := s.registry.Acquire(ctx, visitorID)
	s.cancelAuth(v)
	token := v.Session.Token()
	v.Session.Logout(ctx)
	state := v.Session.State()
	release()

	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			logger.FromContext(ctx).Warn("provider logout failed",
				zap.String("visitor_id", visitorID),
				zap.Error(err))
		}
	}
	return state
}

// RefreshSession swaps the refresh token for a fresh access token. An
// unauthorized answer means the session is over and signs the visitor out.
func (s *Service) RefreshSession(ctx context.Context, visitorID string) (domain.SessionState, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	refreshToken := v.Session.RefreshToken()
	if !v.Session.IsAuthenticated() || refreshToken == "" {
		release()
		return domain.SessionState{}, ErrNotAuthenticated
	}
	callCtx, seq := s.beginAuth(ctx, v)
	release()

	res, err := s.auth.Refresh(callCtx, refreshToken)

	v, release = s.registry.Acquire(ctx, visitorID)
	defer release()
	if !s.endAuth(v, seq) {
		return v.Session.State(), ErrSuperseded
	}
	if err != nil {
		if apierr.Is(err, apierr.KindUnauthorized) {
			v.Session.Logout(ctx)
		}
		return v.Session.State(), err
	}
	if res == nil || res.Token == "" {
		return v.Session.State(), apierr.New(apierr.KindGeneric, "Token refresh returned no token")
	}

	current := v.Session.User()
	user := current
	if res.User != nil {
		user = res.User
		// the identity token carries no loyalty data
		user.RewardPoints = current.RewardPoints
	}
	v.Session.LoginSuccess(ctx, *user, res.Token, res.RefreshToken)
	return v.Session.State(), nil
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	return s.auth.ForgotPassword(ctx, email)
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.auth.ResetPassword(ctx, token, newPassword)
}

// UpdateRewardPoints sets the signed-in user's balance and moves the
// customer to the matching tier.
func (s *Service) UpdateRewardPoints(ctx context.Context, visitorID string, points int) (domain.SessionState, error) {
	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()

	if !v.Session.UpdateRewardPoints(ctx, points) {
		return v.Session.State(), ErrNotAuthenticated
	}
	v.Customer.UpdateRewardTier(ctx, customer.TierForPoints(points))
	return v.Session.State(), nil
}

// CreditRewardPoints adds earned points when userID is still signed in on
// visitorID, and reports whether it did.
func (s *Service) CreditRewardPoints(ctx context.Context, visitorID, userID string, points int) (bool, error) {
	if visitorID == "" || userID == "" {
		return false, errors.New("reward credit needs a visitor and a user")
	}

	v, release := s.registry.Acquire(ctx, visitorID)
	defer release()

	user := v.Session.User()
	if user == nil || user.ID != userID {
		return false, nil
	}
	balance := user.RewardPoints + points
	v.Session.UpdateRewardPoints(ctx, balance)
	v.Customer.UpdateRewardTier(ctx, customer.TierForPoints(balance))
	return true, nil
}

// beginAuth cancels any in-flight auth call of v and starts a new one.
// Must be called with v locked.
func (s *Service) beginAuth(ctx context.Context, v *Visitor) (context.Context, uint64) {
	s.cancelAuth(v)
	callCtx, cancel := context.WithTimeout(ctx, s.authTimeout)
	v.authCancel = cancel
	return callCtx, v.authSeq
}

// endAuth reports whether the call numbered seq is still the current one,
// and if so retires it. Must be called with v locked.
func (s *Service) endAuth(v *Visitor, seq uint64) bool {
	if v.authSeq != seq || v.authCancel == nil {
		return false
	}
	v.authCancel()
	v.authCancel = nil
	return true
}

func (s *Service) cancelAuth(v *Visitor) {
	if v.authCancel != nil {
		v.authCancel()
		v.authCancel = nil
	}
	v.authSeq++
}
