package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatPhaseList(t *testing.T) {
	p := &domain.Project{ID: "p-1", ShortID: "WEB01"}
	phases := []*domain.Phase{
		{
			ID: "ph-1", Seq: 1, Name: "Design", Responsible: "ana",
			StartDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Status:    domain.PhaseOverdue, Progress: 20,
		},
	}

	out := stripANSI(FormatPhaseList(p, phases))

	assert.Contains(t, out, "WEB01 PHASES")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "2024-02-10")
	assert.Contains(t, out, "2024-03-05")
	assert.Contains(t, out, "24")
	assert.Contains(t, out, "Overdue")
	assert.Contains(t, out, "20%")
	assert.Contains(t, out, "ana")
}

func TestFormatPhaseList_Empty(t *testing.T) {
	out := stripANSI(FormatPhaseList(&domain.Project{ShortID: "WEB01"}, nil))
	assert.Equal(t, "No phases in WEB01.\n", out)
}

func TestFormatPhase(t *testing.T) {
	ph := &domain.Phase{
		Seq: 4, Name: "Launch", Deliverable: "Public site",
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
		Status:    domain.PhaseNotStarted,
	}

	out := stripANSI(FormatPhase(ph))

	assert.Contains(t, out, "#4 Launch")
	assert.Contains(t, out, "May 1 → May 8, 2024 (7 days)")
	assert.Contains(t, out, "Public site")
}
