package auth

import (
	"context"
	"testing"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*Session, *snapshot.MemoryStore, *snapshot.Bridge) {
	t.Helper()
	store := snapshot.NewMemoryStore()
	bridge := snapshot.NewBridge(store, "visitor-1", nil)
	return Load(context.Background(), bridge), store, bridge
}

func ana() domain.User {
	return domain.User{ID: "u1", Email: "ana@example.com", FirstName: "Ana", LastName: "Lopez", RewardPoints: 120}
}

func TestLoginSuccess_SetsUserAndToken(t *testing.T) {
	s, _, bridge := newSession(t)
	ctx := context.Background()

	s.LoginStart()
	assert.True(t, s.Loading())
	assert.False(t, s.IsAuthenticated())

	s.LoginSuccess(ctx, ana(), "tok", "refresh")

	assert.False(t, s.Loading())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)

	reloaded := Load(ctx, bridge)
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "refresh", reloaded.RefreshToken())
	assert.Equal(t, 120, reloaded.User().RewardPoints)
}

func TestLoginFailure_LeavesSessionUntouched(t *testing.T) {
	s, store, _ := newSession(t)

	s.LoginStart()
	s.LoginFailure()

	assert.False(t, s.Loading())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Equal(t, 0, store.Len())
}

func TestLogout_ClearsEverythingButRememberedEmail(t *testing.T) {
	s, store, bridge := newSession(t)
	ctx := context.Background()
	s.SetRememberEmail(ctx, "ana@example.com")
	s.LoginSuccess(ctx, ana(), "tok", "refresh")
	require.Equal(t, 4, store.Len())

	s.Logout(ctx)

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	assert.Empty(t, s.RefreshToken())
	assert.Equal(t, 1, store.Len())

	reloaded := Load(ctx, bridge)
	assert.False(t, reloaded.IsAuthenticated())
	assert.Equal(t, "ana@example.com", reloaded.State().RememberEmail)
}

func TestRegisterSuccess_UnconfirmedDoesNotSignIn(t *testing.T) {
	s, store, _ := newSession(t)
	ctx := context.Background()

	s.RegisterStart()
	assert.True(t, s.Loading())
	u := ana()
	s.RegisterSuccess(ctx, &domain.AuthResult{User: &u, Message: "Verification required."})

	assert.False(t, s.Loading())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 0, store.Len())
}

func TestRegisterSuccess_WithTokenSignsIn(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	u := ana()
	s.RegisterStart()
	s.RegisterSuccess(ctx, &domain.AuthResult{User: &u, Token: "tok", Confirmed: true})

	assert.True(t, s.IsAuthenticated())
}

func TestRegisterFailure(t *testing.T) {
	s, _, _ := newSession(t)
	s.RegisterStart()
	s.RegisterFailure()
	assert.False(t, s.Loading())
}

func TestUpdateRewardPoints(t *testing.T) {
	s, _, bridge := newSession(t)
	ctx := context.Background()

	assert.False(t, s.UpdateRewardPoints(ctx, 50))

	s.LoginSuccess(ctx, ana(), "tok", "")
	assert.True(t, s.UpdateRewardPoints(ctx, 700))
	assert.Equal(t, 700, s.User().RewardPoints)
	assert.Equal(t, 700, Load(ctx, bridge).User().RewardPoints)
}

func TestUserIsACopy(t *testing.T) {
	s, _, _ := newSession(t)
	s.LoginSuccess(context.Background(), ana(), "tok", "")

	u := s.User()
	u.RewardPoints = 9999
	assert.Equal(t, 120, s.User().RewardPoints)
}

func TestLoad_HalfSessionIsDiscarded(t *testing.T) {
	store := snapshot.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "storefront:v:token", []byte(`"orphan"`)))

	s := Load(ctx, snapshot.NewBridge(store, "v", nil))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Equal(t, 0, store.Len())
}

func TestLoad_UserWithoutIDIsIgnored(t *testing.T) {
	store := snapshot.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "storefront:v:user", []byte(`{"email":"x@y.z"}`)))
	require.NoError(t, store.Set(ctx, "storefront:v:token", []byte(`"tok"`)))

	s := Load(ctx, snapshot.NewBridge(store, "v", nil))
	assert.False(t, s.IsAuthenticated())
}

func TestSetRememberEmail_EmptyForgets(t *testing.T) {
	s, store, _ := newSession(t)
	ctx := context.Background()

	s.SetRememberEmail(ctx, "ana@example.com")
	assert.Equal(t, 1, store.Len())
	s.SetRememberEmail(ctx, "")
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, s.State().RememberEmail)
}
