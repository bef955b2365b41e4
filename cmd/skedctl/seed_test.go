package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonsked/internal/clock"
	"salonsked/internal/model"
)

func TestRandomLabel(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 500 {
		label := randomLabel(rng)
		minutes, err := clock.Parse(label)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, minutes, 8*60)
		assert.LessOrEqual(t, minutes, 19*60+45)
		assert.Zero(t, minutes%15, label)
	}
}

func TestPlanDay(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	technicians := []model.Technician{{ID: "t1", Name: "Emma"}, {ID: "t2", Name: "David"}}
	services := []model.Service{{ID: "s1", Name: "Gel Manicure", DurationMinutes: 45}}

	plan := planDay(rand.New(rand.NewPCG(1, 1)), day, technicians, services, 5)
	require.Len(t, plan, 10)

	again := planDay(rand.New(rand.NewPCG(1, 1)), day, technicians, services, 5)
	assert.Equal(t, plan, again)

	for i, req := range plan {
		assert.Equal(t, technicians[i/5].ID, req.TechnicianID)
		assert.Equal(t, day, req.Day)
		if req.Kind == model.KindAppointment {
			assert.Equal(t, "s1", req.ServiceID)
			assert.Zero(t, req.DurationMinutes)
			continue
		}
		assert.True(t, req.Kind.IsBlock())
		assert.Contains(t, []int{15, 30, 45, 60}, req.DurationMinutes)
		assert.NotEmpty(t, req.Title)
		assert.Empty(t, req.ServiceID)
	}
}

func TestPlanDay_NoServices(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := planDay(rand.New(rand.NewPCG(3, 3)), day, []model.Technician{{ID: "t1"}}, nil, 8)

	require.Len(t, plan, 8)
	for _, req := range plan {
		assert.True(t, req.Kind.IsBlock())
	}
}

func TestWrapLabels(t *testing.T) {
	labels := []string{"08:00", "08:30", "09:00", "09:30", "10:00"}

	assert.Equal(t, []string{"08:00 08:30", "09:00 09:30", "10:00"}, wrapLabels(labels, 2))
	assert.Equal(t, []string{"08:00 08:30 09:00 09:30 10:00"}, wrapLabels(labels, 12))
	assert.Empty(t, wrapLabels(nil, 12))
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC)

	today, err := parseDay("", loc, now)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 3, 3, 0, 0, 0, 0, loc).Equal(today), today)

	day, err := parseDay("2026-04-01", loc, now)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc).Equal(day), day)

	_, err = parseDay("04/01/2026", loc, now)
	assert.Error(t, err)
}
