package engine

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/qintermediary/exchangeflow/internal/config"
	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// DeadlineScheduler owns the background clock for regulatory deadlines.
// It periodically re-reads active cases, recomputes the derived compliance
// field and raises reminder and overdue events through the notification
// collaborator. It never performs stage transitions; keeping it off the
// state machine means a background tick can never re-enter the engine.
type DeadlineScheduler struct {
	caseRepo   CaseRepo
	markerRepo MarkerRepo
	notifier   Notifier
	clock      core.Clock
	wakeup     chan struct{}
}

func NewDeadlineScheduler(caseRepo CaseRepo, markerRepo MarkerRepo, notifier Notifier, clock core.Clock) *DeadlineScheduler {
	return &DeadlineScheduler{
		caseRepo:   caseRepo,
		markerRepo: markerRepo,
		notifier:   notifier,
		clock:      clock,
		wakeup:     make(chan struct{}, 1),
	}
}

// Start runs the scan loop until the context is cancelled.
func (s *DeadlineScheduler) Start(ctx context.Context, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	slog.Info("Deadline scheduler started", "poll_interval", pollInterval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Deadline scheduler stopping due to context cancel")
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		case <-s.wakeup:
			s.ScanOnce(ctx)
		}
	}
}

func (s *DeadlineScheduler) Wakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// ScanOnce processes one batch of active cases. The scan is idempotent:
// persisted markers make a threshold fire at most once no matter how many
// ticks, overlapping or not, observe the same deadline.
func (s *DeadlineScheduler) ScanOnce(ctx context.Context) {
	batchSize := config.GetSystemSettingInteger(config.SCHEDULER_BATCH_SIZE)
	if batchSize <= 0 {
		batchSize = 100
	}
	cases, err := s.caseRepo.FindActiveWithDeadlines(batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching cases for deadline scan", "error", err)
		return
	}
	for _, c := range *cases {
		s.processCase(ctx, c)
	}
}

func (s *DeadlineScheduler) processCase(ctx context.Context, c domain.ExchangeCase) {
	now := s.clock.Now().UTC()

	status := DeriveCompliance(now, c.Stage, c.IdentificationDeadline, c.CompletionDeadline)
	if status != c.ComplianceStatus {
		// versioned write: losing the race to a concurrent transition is
		// fine, the next tick re-reads and re-derives
		if s.caseRepo.UpdateComplianceByModified(c.ID, status, c.Modified) {
			slog.InfoContext(ctx, "Compliance status updated", "case_id", c.ID, "case_ref", c.CaseRef,
				"from", c.ComplianceStatus, "to", status)
		} else {
			slog.WarnContext(ctx, "Compliance update lost a version race, will retry next tick", "case_id", c.ID)
		}
	}

	for _, d := range relevantDeadlines(c) {
		s.checkDeadline(ctx, c, d.kind, d.deadline, now)
	}
}

type caseDeadline struct {
	kind     models.DeadlineKind
	deadline time.Time
}

// relevantDeadlines returns the deadlines still owned by the case's
// current stage. The identification timer retires once identification is
// complete; both retire at a terminal stage because terminal stages never
// reach the scan.
func relevantDeadlines(c domain.ExchangeCase) []caseDeadline {
	var out []caseDeadline
	if c.IdentificationDeadline.Valid &&
		(c.Stage == models.StageInProgress || c.Stage == models.StageIdentificationPeriod) {
		out = append(out, caseDeadline{models.DeadlineIdentification, c.IdentificationDeadline.Time})
	}
	if c.CompletionDeadline.Valid {
		out = append(out, caseDeadline{models.DeadlineCompletion, c.CompletionDeadline.Time})
	}
	return out
}

func (s *DeadlineScheduler) checkDeadline(ctx context.Context, c domain.ExchangeCase,
	kind models.DeadlineKind, deadline time.Time, now time.Time) {

	if now.After(deadline) {
		s.fireOnce(ctx, c, kind, deadline, models.ThresholdOverdue, now)
		return
	}
	remaining := daysRemaining(now, deadline)
	for _, threshold := range models.ReminderThresholds {
		if remaining <= threshold {
			s.fireOnce(ctx, c, kind, deadline, threshold, now)
		}
	}
}

// fireOnce records the marker before notifying, so a crash between the
// two drops a reminder rather than duplicating it. At-most-once is the
// contract.
func (s *DeadlineScheduler) fireOnce(ctx context.Context, c domain.ExchangeCase,
	kind models.DeadlineKind, deadline time.Time, threshold int, now time.Time) {

	fired, err := s.markerRepo.HasFired(c.ID, kind, threshold)
	if err != nil {
		slog.ErrorContext(ctx, "Error checking deadline marker", "case_id", c.ID, "kind", kind, "error", err)
		return
	}
	if fired {
		return
	}

	marker := &domain.DeadlineMarker{
		CaseID:        c.ID,
		DeadlineKind:  kind,
		ThresholdDays: threshold,
		NotifiedAt:    now,
	}
	if _, err := s.markerRepo.Save(marker); err != nil {
		// unique constraint: an overlapping tick beat us to it
		slog.WarnContext(ctx, "Deadline marker already recorded", "case_id", c.ID, "kind", kind,
			"threshold_days", threshold, "error", err)
		return
	}

	eventKind := EventDeadlineReminder
	if threshold == models.ThresholdOverdue {
		eventKind = EventDeadlineOverdue
	}
	payload := map[string]string{
		"caseRef":       c.CaseRef,
		"deadlineKind":  string(kind),
		"deadline":      deadline.Format(time.DateOnly),
		"daysRemaining": strconv.Itoa(daysRemaining(now, deadline)),
	}
	for _, partyID := range notifyTargets(c) {
		if err := s.notifier.Notify(ctx, partyID, eventKind, payload); err != nil {
			slog.ErrorContext(ctx, "Deadline notification failed", "case_id", c.ID, "party_id", partyID, "error", err)
		}
	}
	slog.InfoContext(ctx, "Deadline event raised", "case_id", c.ID, "case_ref", c.CaseRef,
		"kind", kind, "event", eventKind, "threshold_days", threshold)
}

func notifyTargets(c domain.ExchangeCase) []string {
	var out []string
	if c.CoordinatorID.Valid && c.CoordinatorID.String != "" {
		out = append(out, c.CoordinatorID.String)
	}
	if c.ClientID.Valid && c.ClientID.String != "" {
		out = append(out, c.ClientID.String)
	}
	return out
}
