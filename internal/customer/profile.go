// Package customer holds the visitor's preferences, appointment history and
// reward tier.
package customer

import (
	"context"
	"slices"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
)

// Profile is persisted whole under customerPreferences. Not safe for
// concurrent use.
type Profile struct {
	bridge *snapshot.Bridge
	state  domain.CustomerState
}

func initialState() domain.CustomerState {
	return domain.CustomerState{
		Preferences: domain.CustomerPreferences{
			FavoriteServices:        []string{},
			CommunicationPreference: domain.CommunicationEmail,
			AppointmentReminders:    true,
			MarketingEmails:         false,
		},
		AppointmentHistory: []domain.AppointmentHistory{},
		RewardTier:         domain.TierBronze,
	}
}

// Load hydrates the profile over the defaults, so fields missing from an
// older snapshot keep their default values.
func Load(ctx context.Context, bridge *snapshot.Bridge) *Profile {
	p := &Profile{bridge: bridge, state: initialState()}

	stored := initialState()
	if bridge.Load(ctx, snapshot.KeyCustomerPreferences, &stored) {
		if stored.Preferences.FavoriteServices == nil {
			stored.Preferences.FavoriteServices = []string{}
		}
		if stored.AppointmentHistory == nil {
			stored.AppointmentHistory = []domain.AppointmentHistory{}
		}
		if !validTier(stored.RewardTier) {
			stored.RewardTier = domain.TierBronze
		}
		if !validCommunication(stored.Preferences.CommunicationPreference) {
			stored.Preferences.CommunicationPreference = domain.CommunicationEmail
		}
		p.state = stored
	}
	return p
}

// UpdatePreferences merges the non-nil fields of patch.
func (p *Profile) UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) {
	prefs := &p.state.Preferences
	if patch.PreferredStylist != nil {
		if *patch.PreferredStylist == "" {
			prefs.PreferredStylist = nil
		} else {
			id := *patch.PreferredStylist
			prefs.PreferredStylist = &id
		}
	}
	if patch.CommunicationPreference != nil && validCommunication(*patch.CommunicationPreference) {
		prefs.CommunicationPreference = *patch.CommunicationPreference
	}
	if patch.AppointmentReminders != nil {
		prefs.AppointmentReminders = *patch.AppointmentReminders
	}
	if patch.MarketingEmails != nil {
		prefs.MarketingEmails = *patch.MarketingEmails
	}
	p.persist(ctx)
}

func (p *Profile) AddToFavorites(ctx context.Context, serviceID string) {
	if serviceID == "" || slices.Contains(p.state.Preferences.FavoriteServices, serviceID) {
		return
	}
	p.state.Preferences.FavoriteServices = append(p.state.Preferences.FavoriteServices, serviceID)
	p.persist(ctx)
}

func (p *Profile) RemoveFromFavorites(ctx context.Context, serviceID string) {
	favs := p.state.Preferences.FavoriteServices
	i := slices.Index(favs, serviceID)
	if i < 0 {
		return
	}
	p.state.Preferences.FavoriteServices = slices.Delete(favs, i, i+1)
	p.persist(ctx)
}

// AddAppointment prepends to the history, newest first.
func (p *Profile) AddAppointment(ctx context.Context, a domain.AppointmentHistory) {
	if a.Status == "" {
		a.Status = domain.AppointmentUpcoming
	}
	p.state.AppointmentHistory = append([]domain.AppointmentHistory{a}, p.state.AppointmentHistory...)
	p.persist(ctx)
}

func (p *Profile) UpdateRewardTier(ctx context.Context, tier domain.RewardTier) {
	if !validTier(tier) || tier == p.state.RewardTier {
		return
	}
	p.state.RewardTier = tier
	p.persist(ctx)
}

func (p *Profile) RewardTier() domain.RewardTier {
	return p.state.RewardTier
}

func (p *Profile) State() domain.CustomerState {
	s := p.state
	s.Preferences.FavoriteServices = slices.Clone(p.state.Preferences.FavoriteServices)
	if p.state.Preferences.PreferredStylist != nil {
		id := *p.state.Preferences.PreferredStylist
		s.Preferences.PreferredStylist = &id
	}
	s.AppointmentHistory = make([]domain.AppointmentHistory, len(p.state.AppointmentHistory))
	for i, a := range p.state.AppointmentHistory {
		a.Services = slices.Clone(a.Services)
		s.AppointmentHistory[i] = a
	}
	return s
}

// TierForPoints maps a reward point balance to a tier.
func TierForPoints(points int) domain.RewardTier {
	switch {
	case points < 500:
		return domain.TierBronze
	case points < 1500:
		return domain.TierSilver
	case points < 3000:
		return domain.TierGold
	default:
		return domain.TierPlatinum
	}
}

func (p *Profile) persist(ctx context.Context) {
	p.bridge.Save(ctx, snapshot.KeyCustomerPreferences, p.state)
}

func validTier(t domain.RewardTier) bool {
	switch t {
	case domain.TierBronze, domain.TierSilver, domain.TierGold, domain.TierPlatinum:
		return true
	}
	return false
}

func validCommunication(c domain.CommunicationPreference) bool {
	switch c {
	case domain.CommunicationEmail, domain.CommunicationSMS, domain.CommunicationBoth:
		return true
	}
	return false
}
