package allocation

import (
	"fmt"
	"time"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

const dateLayout = "2006-01-02 15:04"

// analysisWindow is how long after production an analysis may start.
const analysisWindow = 24 * time.Hour

// ValidateAnalysisDate checks that a lab analysis started within the window
// after the linked production run. Bounds are inclusive and compared on the
// exact timestamps. Missing inputs pass: absence is not yet an error, only
// inconsistent presence is.
func ValidateAnalysisDate(productionDate, analysisDate time.Time) models.ValidationResult {
	if productionDate.IsZero() || analysisDate.IsZero() {
		return models.Valid()
	}

	if analysisDate.Before(productionDate) {
		return models.Invalid(fmt.Sprintf(
			"Analysis date %s is before production date %s",
			analysisDate.Format(dateLayout), productionDate.Format(dateLayout)))
	}

	if analysisDate.Sub(productionDate) > analysisWindow {
		return models.Invalid(fmt.Sprintf(
			"Analysis date %s is more than 24 hours after production date %s",
			analysisDate.Format(dateLayout), productionDate.Format(dateLayout)))
	}

	return models.Valid()
}

// ValidateCompletionDate checks that a lab report was completed within
// maxGapDays of its analysis. The gap is counted in calendar days: both
// timestamps are normalized to midnight before differencing, so an analysis
// late in the evening does not steal a day from the completion window.
func ValidateCompletionDate(analysisDate, completionDate time.Time, maxGapDays int) models.ValidationResult {
	if analysisDate.IsZero() || completionDate.IsZero() {
		return models.Valid()
	}

	if completionDate.Before(analysisDate) {
		return models.Invalid(fmt.Sprintf(
			"Completion date %s is before analysis date %s",
			completionDate.Format(dateLayout), analysisDate.Format(dateLayout)))
	}

	gapDays := int(midnight(completionDate).Sub(midnight(analysisDate)).Hours() / 24)
	if gapDays > maxGapDays {
		return models.Invalid(fmt.Sprintf(
			"Completion date is %d days after analysis date; the limit is %d days",
			gapDays, maxGapDays))
	}

	return models.Valid()
}

// midnight truncates a timestamp to its calendar date. The date components
// are re-anchored in UTC so the day difference is purely calendar-based and
// unaffected by mixed zones.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
