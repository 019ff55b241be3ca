package domain

import (
	"time"

	"github.com/qintermediary/exchangeflow/internal/models"
)

// DeadlineMarker records that a reminder threshold has fired for a case
// deadline. Its presence is what makes reminders idempotent across
// scheduler ticks and process restarts.
type DeadlineMarker struct {
	ID            int64
	CaseID        int64
	DeadlineKind  models.DeadlineKind
	ThresholdDays int
	NotifiedAt    time.Time
}
