package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func always(v float64) func() float64 {
	return func() float64 { return v }
}

func TestSlots_Weekday(t *testing.T) {
	p := NewMockProvider(always(0))

	// 2026-03-16 is a Monday
	slots, err := p.Slots(context.Background(), "2026-03-16")
	require.NoError(t, err)

	require.Len(t, slots, 22)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, "08:30", slots[1].Time)
	assert.Equal(t, "18:30", slots[len(slots)-1].Time)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestSlots_Weekend(t *testing.T) {
	p := NewMockProvider(always(0.99))

	// 2026-03-15 is a Sunday
	slots, err := p.Slots(context.Background(), "2026-03-15")
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "16:30", slots[len(slots)-1].Time)
	for _, s := range slots {
		assert.False(t, s.Available)
	}
}

func TestSlots_IndependentFlags(t *testing.T) {
	values := []float64{0.1, 0.7, 0.59, 0.6}
	i := 0
	p := NewMockProvider(func() float64 {
		v := values[i%len(values)]
		i++
		return v
	})

	slots, err := p.Slots(context.Background(), "2026-03-14")
	require.NoError(t, err)
	assert.True(t, slots[0].Available)
	assert.False(t, slots[1].Available)
	assert.True(t, slots[2].Available)
	assert.False(t, slots[3].Available)
}

func TestSlots_InvalidDate(t *testing.T) {
	_, err := NewMockProvider(nil).Slots(context.Background(), "14/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
