// Package booking holds a visitor's in-progress appointment and the
// availability lookup used to pick its time.
package booking

import (
	"context"
	"math"
	"time"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
)

// Clock returns the current time. Injected so date defaults are testable.
type Clock func() time.Time

// Draft is the in-progress appointment. Totals are recomputed from the
// selected services on every change and on hydration. Not safe for
// concurrent use.
type Draft struct {
	bridge *snapshot.Bridge
	now    Clock
	state  domain.BookingState
}

func Load(ctx context.Context, bridge *snapshot.Bridge, now Clock) *Draft {
	if now == nil {
		now = time.Now
	}
	d := &Draft{bridge: bridge, now: now}

	var stored domain.BookingState
	if bridge.Load(ctx, snapshot.KeyBooking, &stored) {
		d.state = stored
		d.state.SelectedServices = dedupe(stored.SelectedServices)
	}
	d.recompute()
	return d
}

// AddService appends svc unless a service with the same id is already selected.
func (d *Draft) AddService(ctx context.Context, svc domain.ServiceSelection) {
	if d.index(svc.ID) >= 0 {
		return
	}
	d.state.SelectedServices = append(d.state.SelectedServices, svc)
	d.recompute()
	d.persist(ctx)
}

func (d *Draft) RemoveService(ctx context.Context, id string) {
	i := d.index(id)
	if i < 0 {
		return
	}
	d.state.SelectedServices = append(d.state.SelectedServices[:i], d.state.SelectedServices[i+1:]...)
	d.recompute()
	d.persist(ctx)
}

func (d *Draft) SelectStylist(ctx context.Context, stylist domain.StylistChoice) {
	d.state.SelectedStylist = &stylist
	d.persist(ctx)
}

// SelectDateTime sets date and time together. An empty date keeps the
// current one, or today's date when none is set, so a time never lands
// without a date.
func (d *Draft) SelectDateTime(ctx context.Context, date, slot string) {
	if date == "" {
		if d.state.SelectedDate != nil {
			date = *d.state.SelectedDate
		} else {
			date = d.now().Format(domain.DateFormat)
		}
	}
	d.state.SelectedDate = &date
	d.state.SelectedTime = &slot
	d.persist(ctx)
}

func (d *Draft) UpdateNotes(ctx context.Context, notes string) {
	d.state.CustomerNotes = notes
	d.persist(ctx)
}

// ClearBooking resets every field and drops the snapshot.
func (d *Draft) ClearBooking(ctx context.Context) {
	d.state = domain.BookingState{}
	d.bridge.Remove(ctx, snapshot.KeyBooking)
}

// Clear satisfies checkout.Source.
func (d *Draft) Clear(ctx context.Context) {
	d.ClearBooking(ctx)
}

func (d *Draft) Empty() bool {
	return len(d.state.SelectedServices) == 0
}

func (d *Draft) State() domain.BookingState {
	st := d.state
	st.SelectedServices = make([]domain.ServiceSelection, len(d.state.SelectedServices))
	copy(st.SelectedServices, d.state.SelectedServices)
	return st
}

// Draft converts the booking into one order line per service plus the
// appointment details.
func (d *Draft) Draft() domain.OrderDraft {
	lines := make([]domain.OrderLine, 0, len(d.state.SelectedServices))
	for _, s := range d.state.SelectedServices {
		lines = append(lines, domain.OrderLine{
			ItemID:    s.ID,
			Name:      s.Name,
			Quantity:  1,
			UnitPrice: s.UnitPrice,
			Subtotal:  s.UnitPrice,
		})
	}

	appt := &domain.AppointmentDetails{
		DurationMinutes: d.state.TotalDuration,
		Notes:           d.state.CustomerNotes,
	}
	if st := d.state.SelectedStylist; st != nil {
		appt.StylistID = st.ID
		appt.StylistName = st.Name
	}
	if d.state.SelectedDate != nil {
		appt.Date = *d.state.SelectedDate
	}
	if d.state.SelectedTime != nil {
		appt.Time = *d.state.SelectedTime
	}

	return domain.OrderDraft{Lines: lines, Total: d.state.TotalPrice, Appointment: appt}
}

func (d *Draft) index(id string) int {
	for i := range d.state.SelectedServices {
		if d.state.SelectedServices[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) recompute() {
	duration := 0
	var price float64
	for _, s := range d.state.SelectedServices {
		duration += s.DurationMinutes
		price += s.UnitPrice
	}
	d.state.TotalDuration = duration
	d.state.TotalPrice = math.Round(price*100) / 100
}

func (d *Draft) persist(ctx context.Context) {
	st := d.state
	if st.SelectedServices == nil {
		st.SelectedServices = []domain.ServiceSelection{}
	}
	d.bridge.Save(ctx, snapshot.KeyBooking, st)
}

func dedupe(in []domain.ServiceSelection) []domain.ServiceSelection {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.ServiceSelection, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s.ID]; ok || s.ID == "" {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}
