package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// ActionOutcome reports what the executor did for one transition: every
// action that ran and, per failed action, its error. Failures never abort
// the remaining actions; the transition has already been committed.
type ActionOutcome struct {
	Ran    []models.Action
	Failed map[models.Action]error
}

// ActionExecutor runs the auto-actions declared for a transition, each in
// isolation. Handlers are registered per action name so an unknown action
// is caught in one place instead of silently doing nothing.
type ActionExecutor struct {
	handlers map[models.Action]func(ctx context.Context, snap CaseSnapshot) error

	caseRepo     CaseRepo
	workItemRepo WorkItemRepo
	notifier     Notifier
	documents    DocumentGenerator
	clock        core.Clock
}

func NewActionExecutor(caseRepo CaseRepo, workItemRepo WorkItemRepo, notifier Notifier,
	documents DocumentGenerator, clock core.Clock) *ActionExecutor {
	e := &ActionExecutor{
		caseRepo:     caseRepo,
		workItemRepo: workItemRepo,
		notifier:     notifier,
		documents:    documents,
		clock:        clock,
	}
	e.handlers = map[models.Action]func(ctx context.Context, snap CaseSnapshot) error{
		models.ActionSeedStageWorkItems:            e.seedStageWorkItems,
		models.ActionStartDeadlineTimers:           e.startDeadlineTimers,
		models.ActionNotifyCoordinator:             e.notifyCoordinator,
		models.ActionNotifyAllParties:              e.notifyAllParties,
		models.ActionGenerateCompletionCertificate: e.generateCompletionCertificate,
		models.ActionArchiveCase:                   e.archiveCase,
	}
	return e
}

// Execute runs the actions in declared order. A failing action is logged
// and recorded, then the next one still runs.
func (e *ActionExecutor) Execute(ctx context.Context, actions []models.Action, snap CaseSnapshot) ActionOutcome {
	outcome := ActionOutcome{Failed: map[models.Action]error{}}
	for _, action := range actions {
		handler, ok := e.handlers[action]
		if !ok {
			slog.ErrorContext(ctx, "No handler registered for auto-action", "action", action, "case_id", snap.Case.ID)
			outcome.Failed[action] = fmt.Errorf("no handler registered for action %s", action)
			continue
		}
		if err := handler(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Auto-action failed", "action", action, "case_id", snap.Case.ID, "error", err)
			outcome.Failed[action] = err
			continue
		}
		outcome.Ran = append(outcome.Ran, action)
	}
	return outcome
}

func (e *ActionExecutor) seedStageWorkItems(ctx context.Context, snap CaseSnapshot) error {
	templates := TemplatesForStage(snap.Case.Stage)
	now := e.clock.Now().UTC()
	for _, t := range templates {
		item := &domain.WorkItem{
			CaseID:      snap.Case.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      models.WorkItemPending,
			DueDate:     sql.NullTime{Time: now.AddDate(0, 0, t.DueOffsetDays), Valid: true},
			Created:     now,
			Modified:    now,
		}
		if _, err := e.workItemRepo.Save(item); err != nil {
			return fmt.Errorf("seeding work item %q: %w", t.Title, err)
		}
	}
	slog.InfoContext(ctx, "Seeded stage work items", "case_id", snap.Case.ID, "stage", snap.Case.Stage, "count", len(templates))
	return nil
}

// startDeadlineTimers only verifies the timers have something to watch;
// the deadline scheduler discovers active cases from the store on every
// scan, so there is nothing to register.
func (e *ActionExecutor) startDeadlineTimers(ctx context.Context, snap CaseSnapshot) error {
	if !snap.Case.IdentificationDeadline.Valid || !snap.Case.CompletionDeadline.Valid {
		return errors.New("deadlines are not set on the case")
	}
	slog.InfoContext(ctx, "Deadline timers active",
		"case_id", snap.Case.ID,
		"identification_deadline", snap.Case.IdentificationDeadline.Time.Format(time.DateOnly),
		"completion_deadline", snap.Case.CompletionDeadline.Time.Format(time.DateOnly))
	return nil
}

func (e *ActionExecutor) notifyCoordinator(ctx context.Context, snap CaseSnapshot) error {
	if !snap.Case.CoordinatorID.Valid || snap.Case.CoordinatorID.String == "" {
		return errors.New("no coordinator to notify")
	}
	return e.notifier.Notify(ctx, snap.Case.CoordinatorID.String, EventStageEntered, map[string]string{
		"caseRef": snap.Case.CaseRef,
		"stage":   string(snap.Case.Stage),
	})
}

func (e *ActionExecutor) notifyAllParties(ctx context.Context, snap CaseSnapshot) error {
	parties := make([]string, 0, 2)
	if snap.Case.CoordinatorID.Valid && snap.Case.CoordinatorID.String != "" {
		parties = append(parties, snap.Case.CoordinatorID.String)
	}
	if snap.Case.ClientID.Valid && snap.Case.ClientID.String != "" {
		parties = append(parties, snap.Case.ClientID.String)
	}
	if len(parties) == 0 {
		return errors.New("no parties to notify")
	}
	payload := map[string]string{
		"caseRef": snap.Case.CaseRef,
		"stage":   string(snap.Case.Stage),
	}
	for _, partyID := range parties {
		if err := e.notifier.Notify(ctx, partyID, EventStageEntered, payload); err != nil {
			return err
		}
	}
	return nil
}

func (e *ActionExecutor) generateCompletionCertificate(ctx context.Context, snap CaseSnapshot) error {
	ref, err := e.documents.GenerateCompletionCertificate(ctx, snap)
	if err != nil {
		return fmt.Errorf("generating completion certificate: %w", err)
	}
	slog.InfoContext(ctx, "Completion certificate generated", "case_id", snap.Case.ID, "document_ref", ref)
	if snap.Case.CoordinatorID.Valid && snap.Case.CoordinatorID.String != "" {
		return e.notifier.Notify(ctx, snap.Case.CoordinatorID.String, EventCertificateIssued, map[string]string{
			"caseRef":     snap.Case.CaseRef,
			"documentRef": ref,
		})
	}
	return nil
}

func (e *ActionExecutor) archiveCase(ctx context.Context, snap CaseSnapshot) error {
	return e.caseRepo.MarkArchived(snap.Case.ID)
}
