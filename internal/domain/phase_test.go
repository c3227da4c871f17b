package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validPhase() *Phase {
	return &Phase{
		Name:      "Discovery",
		StartDate: day(2024, 2, 10),
		EndDate:   day(2024, 3, 5),
		Status:    PhaseNotStarted,
	}
}

func TestPhaseValidate(t *testing.T) {
	require.NoError(t, validPhase().Validate())

	p := validPhase()
	p.Name = ""
	assert.ErrorContains(t, p.Validate(), "name")

	p = validPhase()
	p.EndDate = day(2024, 2, 1)
	assert.ErrorIs(t, p.Validate(), timeline.ErrInvalidInterval)

	p = validPhase()
	p.Progress = 101
	assert.ErrorContains(t, p.Validate(), "progress")

	p = validPhase()
	p.Status = "paused"
	assert.ErrorContains(t, p.Validate(), "status")

	p = validPhase()
	p.Color = "red"
	assert.Error(t, p.Validate())
}

func TestPhaseDeriveStatus(t *testing.T) {
	now := day(2024, 3, 1)
	tests := []struct {
		name     string
		progress int
		end      time.Time
		want     PhaseStatus
	}{
		{"finished", 100, day(2024, 2, 1), PhaseCompleted},
		{"under way", 40, day(2024, 2, 1), PhaseInProgress},
		{"missed end date", 0, day(2024, 2, 29), PhaseOverdue},
		{"ends today", 0, day(2024, 3, 1), PhaseNotStarted},
		{"future", 0, day(2024, 4, 1), PhaseNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Phase{Progress: tt.progress, StartDate: day(2024, 1, 1), EndDate: tt.end}
			assert.Equal(t, tt.want, p.DeriveStatus(now))
		})
	}
}

func TestPhaseDeriveStatus_IgnoresTimeOfDay(t *testing.T) {
	p := &Phase{StartDate: day(2024, 1, 1), EndDate: day(2024, 3, 1)}
	assert.Equal(t, PhaseNotStarted, p.DeriveStatus(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)))
}

func TestPhaseDisplayID(t *testing.T) {
	assert.Equal(t, "#3", (&Phase{ID: "550e8400-e29b", Seq: 3}).DisplayID())
	assert.Equal(t, "550e8400", (&Phase{ID: "550e8400-e29b"}).DisplayID())
}
