package engine

import (
	"database/sql"
	"time"

	"github.com/qintermediary/exchangeflow/internal/models"
)

// atRiskWindowDays is how close to the completion deadline a case may get
// before it is flagged AtRisk.
const atRiskWindowDays = 30

// DeriveCompliance computes the derived compliance classification from the
// stage and deadlines. It is recomputed on every successful transition and
// on every scheduler tick, never triggered on its own.
func DeriveCompliance(now time.Time, stage models.Stage, identificationDeadline, completionDeadline sql.NullTime) models.ComplianceStatus {
	if stage == models.StageCompleted {
		return models.ComplianceCompliant
	}
	if completionDeadline.Valid && now.After(completionDeadline.Time) {
		return models.ComplianceNonCompliant
	}
	// The identification clock only matters while identification is still
	// open; once in the completion period only the 180-day deadline counts.
	if stage == models.StageInProgress || stage == models.StageIdentificationPeriod {
		if identificationDeadline.Valid && now.After(identificationDeadline.Time) {
			return models.ComplianceNonCompliant
		}
	}
	if stage == models.StageOnHold {
		return models.CompliancePendingReview
	}
	if completionDeadline.Valid && daysRemaining(now, completionDeadline.Time) <= atRiskWindowDays {
		return models.ComplianceAtRisk
	}
	return models.ComplianceCompliant
}

// daysRemaining counts whole days from now until the deadline, negative
// once the deadline has passed.
func daysRemaining(now, deadline time.Time) int {
	diff := deadline.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days
}
