package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

var production = time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

func TestValidateAnalysisDate(t *testing.T) {
	tests := []struct {
		name     string
		analysis time.Time
		wantOk   bool
	}{
		{"same instant", production, true},
		{"later same day", production.Add(6 * time.Hour), true},
		{"exactly 24h", production.Add(24 * time.Hour), true},
		{"24h plus one second", production.Add(24*time.Hour + time.Second), false},
		{"before production", production.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAnalysisDate(production, tt.analysis)
			assert.Equal(t, tt.wantOk, result.Ok(), "violations: %v", result.Violations)
		})
	}
}

func TestValidateAnalysisDateLenientOnMissing(t *testing.T) {
	assert.True(t, ValidateAnalysisDate(time.Time{}, production).Ok())
	assert.True(t, ValidateAnalysisDate(production, time.Time{}).Ok())
}

func TestValidateCompletionDateDayGranularity(t *testing.T) {
	// Analysis late in the evening: a naive 24h-per-day subtraction would
	// count one day fewer than the calendar does.
	analysis := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)

	tests := []struct {
		name       string
		completion time.Time
		maxGapDays int
		wantOk     bool
	}{
		{"same day", analysis.Add(10 * time.Minute), 1, true},
		{"next morning within 1 day", time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), 1, true},
		{"two days out fails 1 day window", time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), 1, false},
		{"exactly 6 days", time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), 6, true},
		{"seven days fails 6 day window", time.Date(2026, 3, 17, 0, 30, 0, 0, time.UTC), 6, false},
		{"before analysis", analysis.Add(-time.Hour), 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCompletionDate(analysis, tt.completion, tt.maxGapDays)
			assert.Equal(t, tt.wantOk, result.Ok(), "violations: %v", result.Violations)
		})
	}
}

func TestValidateCompletionDateLenientOnMissing(t *testing.T) {
	assert.True(t, ValidateCompletionDate(time.Time{}, production, 6).Ok())
	assert.True(t, ValidateCompletionDate(production, time.Time{}, 6).Ok())
}

func TestCompletionWindowPerRecordType(t *testing.T) {
	assert.Equal(t, 6, models.LabRecordBAR.CompletionWindowDays())
	assert.Equal(t, 1, models.LabRecordELISA.CompletionWindowDays())
}
