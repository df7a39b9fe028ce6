package booking

import (
	"context"
	"testing"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func newDraft(t *testing.T) (*Draft, *snapshot.MemoryStore, *snapshot.Bridge) {
	t.Helper()
	store := snapshot.NewMemoryStore()
	bridge := snapshot.NewBridge(store, "visitor-1", nil)
	return Load(context.Background(), bridge, fixedClock), store, bridge
}

var (
	haircut = domain.ServiceSelection{ID: "cut", Name: "Signature Cut", DurationMinutes: 90, UnitPrice: 165, Category: domain.ServiceCut}
	gloss   = domain.ServiceSelection{ID: "gloss", Name: "Gloss", DurationMinutes: 45, UnitPrice: 80, Category: domain.ServiceColor}
	stylist = domain.StylistChoice{ID: "s1", Name: "Sofia", Specialties: []string{"cuts"}, Rating: 4.9}
)

func TestBookingScenario(t *testing.T) {
	d, _, _ := newDraft(t)
	ctx := context.Background()

	d.AddService(ctx, haircut)
	d.SelectStylist(ctx, stylist)
	d.SelectDateTime(ctx, "2026-03-20", "10:00")

	st := d.State()
	assert.Equal(t, 90, st.TotalDuration)
	assert.Equal(t, 165.0, st.TotalPrice)
	require.NotNil(t, st.SelectedStylist)
	assert.Equal(t, "s1", st.SelectedStylist.ID)
	require.NotNil(t, st.SelectedDate)
	assert.Equal(t, "2026-03-20", *st.SelectedDate)
	require.NotNil(t, st.SelectedTime)
	assert.Equal(t, "10:00", *st.SelectedTime)
}

func TestAddService_Idempotent(t *testing.T) {
	d, _, _ := newDraft(t)
	ctx := context.Background()

	d.AddService(ctx, haircut)
	d.AddService(ctx, haircut)

	st := d.State()
	assert.Len(t, st.SelectedServices, 1)
	assert.Equal(t, 90, st.TotalDuration)
	assert.Equal(t, 165.0, st.TotalPrice)
}

func TestRemoveService_Recomputes(t *testing.T) {
	d, _, _ := newDraft(t)
	ctx := context.Background()
	d.AddService(ctx, haircut)
	d.AddService(ctx, gloss)
	assert.Equal(t, 135, d.State().TotalDuration)

	d.RemoveService(ctx, "cut")

	st := d.State()
	assert.Equal(t, 45, st.TotalDuration)
	assert.Equal(t, 80.0, st.TotalPrice)

	d.RemoveService(ctx, "unknown")
	assert.Len(t, d.State().SelectedServices, 1)
}

func TestSelectDateTime_EmptyDate(t *testing.T) {
	d, _, _ := newDraft(t)
	ctx := context.Background()

	d.SelectDateTime(ctx, "", "11:30")
	st := d.State()
	assert.Equal(t, "2026-03-14", *st.SelectedDate)
	assert.Equal(t, "11:30", *st.SelectedTime)

	d.SelectDateTime(ctx, "2026-04-01", "09:00")
	d.SelectDateTime(ctx, "", "15:00")
	st = d.State()
	assert.Equal(t, "2026-04-01", *st.SelectedDate)
	assert.Equal(t, "15:00", *st.SelectedTime)
}

func TestClearBooking(t *testing.T) {
	d, store, _ := newDraft(t)
	ctx := context.Background()
	d.AddService(ctx, haircut)
	d.SelectStylist(ctx, stylist)
	d.SelectDateTime(ctx, "2026-03-20", "10:00")
	d.UpdateNotes(ctx, "sensitive scalp")

	d.ClearBooking(ctx)

	assert.Equal(t, domain.BookingState{SelectedServices: []domain.ServiceSelection{}}, d.State())
	_, err := store.Get(ctx, "storefront:visitor-1:currentBooking")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotMiss)
}

func TestLoad_RecomputesTotals(t *testing.T) {
	store := snapshot.NewMemoryStore()
	ctx := context.Background()
	raw := `{"selectedServices":[{"id":"cut","duration":90,"price":165},{"id":"cut","duration":90,"price":165}],
		"selectedDate":"2026-03-20","selectedTime":"10:00","totalDuration":999,"totalPrice":1}`
	require.NoError(t, store.Set(ctx, "storefront:v:currentBooking", []byte(raw)))

	st := Load(ctx, snapshot.NewBridge(store, "v", nil), fixedClock).State()
	assert.Len(t, st.SelectedServices, 1)
	assert.Equal(t, 90, st.TotalDuration)
	assert.Equal(t, 165.0, st.TotalPrice)
	assert.Equal(t, "10:00", *st.SelectedTime)
}

func TestLoad_PersistsAcrossReload(t *testing.T) {
	d, _, bridge := newDraft(t)
	ctx := context.Background()
	d.AddService(ctx, gloss)
	d.UpdateNotes(ctx, "no fragrance")

	st := Load(ctx, bridge, fixedClock).State()
	assert.Equal(t, "no fragrance", st.CustomerNotes)
	assert.Equal(t, 45, st.TotalDuration)
}

func TestDraft_Appointment(t *testing.T) {
	d, _, _ := newDraft(t)
	ctx := context.Background()
	d.AddService(ctx, haircut)
	d.AddService(ctx, gloss)
	d.SelectStylist(ctx, stylist)
	d.SelectDateTime(ctx, "2026-03-20", "10:00")

	od := d.Draft()
	assert.Len(t, od.Lines, 2)
	assert.Equal(t, 245.0, od.Total)
	require.NotNil(t, od.Appointment)
	assert.Equal(t, domain.AppointmentDetails{
		StylistID: "s1", StylistName: "Sofia", Date: "2026-03-20", Time: "10:00", DurationMinutes: 135,
	}, *od.Appointment)
}
