package cli

import (
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEndAfter(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr string
	}{
		{"after start", "2024-02-01", "2024-03-01", ""},
		{"same day", "2024-02-01", "2024-02-01", "end date must be after 2024-02-01"},
		{"before start", "2024-02-01", "2024-01-15", "end date must be after"},
		{"bad end", "2024-02-01", "March", "YYYY-MM-DD"},
		{"bad start is not reported here", "soon", "2024-02-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEndAfter(tt.start, tt.end)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProgress(t *testing.T) {
	for _, ok := range []string{"", "0", "55", "100"} {
		assert.NoError(t, validateProgress(ok), ok)
	}
	for _, bad := range []string{"-1", "101", "half"} {
		assert.Error(t, validateProgress(bad), bad)
	}
}

func TestValidateRequired(t *testing.T) {
	validate := validateRequired("phase name")
	assert.NoError(t, validate("Build"))
	err := validate("   ")
	require.Error(t, err)
	assert.Equal(t, "phase name is required", err.Error())
}

func TestValidateOptionalDate(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2024-02-29"))
	assert.Error(t, validateOptionalDate("2023-02-29"))
}

func TestPhaseFromForm(t *testing.T) {
	ph, err := phaseFromForm(phaseFormValues{
		ProjectID:   "p1",
		Name:        "  Build ",
		Start:       "2024-02-01",
		End:         "2024-03-01",
		Responsible: " Ana ",
		Progress:    "40",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", ph.ProjectID)
	assert.Equal(t, "Build", ph.Name)
	assert.Equal(t, "Ana", ph.Responsible)
	assert.Equal(t, testutil.Date(2024, 2, 1), ph.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 1), ph.EndDate)
	assert.Equal(t, 40, ph.Progress)
	assert.Equal(t, domain.PhaseStatus(""), ph.Status, "status is derived on create")

	ph, err = phaseFromForm(phaseFormValues{Name: "x", Start: "2024-02-01", End: "2024-03-01"})
	require.NoError(t, err)
	assert.Zero(t, ph.Progress)

	_, err = phaseFromForm(phaseFormValues{Start: "2024-02-01", End: "later"})
	assert.ErrorContains(t, err, "invalid end date")
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("due", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDateFlag("due", "2024-06-30")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testutil.Date(2024, 6, 30), *got)

	_, err = parseDateFlag("due", "06/30/2024")
	assert.ErrorContains(t, err, `invalid due date "06/30/2024"`)
}

func TestNewPhaseFormBuilds(t *testing.T) {
	values := &phaseFormValues{ProjectID: "p1"}
	assert.NotNil(t, newPhaseForm(values, nil))
	assert.NotNil(t, newPhaseForm(values, []*domain.Project{testutil.NewTestProject("Website")}))
}
