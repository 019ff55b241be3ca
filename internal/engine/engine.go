package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/qintermediary/exchangeflow/internal/config"
	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// ErrReopenReasonRequired is returned when the administrative reopen edge
// is attempted without a justification. Reopens bypass guards, so the
// reason is the only accountability they carry.
var ErrReopenReasonRequired = errors.New("a reason is required to reopen a case")

// WorkflowEngine is the only way a case changes stage. It composes the
// transition table, the condition evaluator and the action executor, and
// writes an audit entry for every attempt, rejected or not.
type WorkflowEngine struct {
	caseRepo  CaseRepo
	auditRepo AuditRepo
	table     *TransitionTable
	evaluator *ConditionEvaluator
	executor  *ActionExecutor
	clock     core.Clock
}

func NewWorkflowEngine(caseRepo CaseRepo, auditRepo AuditRepo, table *TransitionTable,
	evaluator *ConditionEvaluator, executor *ActionExecutor, clock core.Clock) *WorkflowEngine {
	return &WorkflowEngine{
		caseRepo:  caseRepo,
		auditRepo: auditRepo,
		table:     table,
		evaluator: evaluator,
		executor:  executor,
		clock:     clock,
	}
}

// Snapshot decodes the case's details payload into the read-only view
// guards and actions evaluate against.
func (e *WorkflowEngine) Snapshot(c *domain.ExchangeCase) (CaseSnapshot, error) {
	details, err := models.ParseCaseDetails(c.Details.String)
	if err != nil {
		return CaseSnapshot{}, err
	}
	return CaseSnapshot{Case: c, Details: details}, nil
}

func (e *WorkflowEngine) loadCase(caseID int64) (*domain.ExchangeCase, error) {
	c, err := e.caseRepo.FindByID(caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}

// AvailableTransitions lists the stages reachable from the case's current
// stage with the guards each would require. Guards are not evaluated here:
// a pre-evaluated answer could race against a concurrent update and
// advertise a transition that execution would reject.
func (e *WorkflowEngine) AvailableTransitions(caseID int64) ([]models.TransitionOption, error) {
	c, err := e.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	rules := e.table.From(c.Stage)
	options := make([]models.TransitionOption, 0, len(rules))
	for _, r := range rules {
		options = append(options, models.TransitionOption{
			ToStage:            r.To,
			RequiredConditions: r.Guards,
			Reopen:             r.Reopen,
		})
	}
	return options, nil
}

// ValidateTransition checks an edge without mutating anything. When the
// edge is absent from the table no guards are evaluated at all.
func (e *WorkflowEngine) ValidateTransition(caseID int64, toStage models.Stage) (models.ValidateTransitionResponse, error) {
	c, err := e.loadCase(caseID)
	if err != nil {
		return models.ValidateTransitionResponse{}, err
	}
	rule, ok := e.table.Lookup(c.Stage, toStage)
	if !ok {
		return models.ValidateTransitionResponse{Valid: false}, nil
	}
	if rule.Reopen {
		return models.ValidateTransitionResponse{Valid: true}, nil
	}
	snap, err := e.Snapshot(c)
	if err != nil {
		return models.ValidateTransitionResponse{}, err
	}
	failures := e.evaluateGuards(snap, rule.Guards)
	return models.ValidateTransitionResponse{Valid: len(failures) == 0, FailedConditions: failures}, nil
}

func (e *WorkflowEngine) evaluateGuards(snap CaseSnapshot, guards []models.Condition) []models.ConditionResult {
	var failures []models.ConditionResult
	for _, g := range guards {
		if result := e.evaluator.Evaluate(snap, g); !result.Met {
			failures = append(failures, result)
		}
	}
	return failures
}

// ExecuteTransition re-validates against the freshly loaded case, writes
// the new stage with a compare-and-swap on the version it validated
// against, runs the declared auto-actions and appends the audit entry.
// Every rejection is audited too: repeated rejected attempts are how a
// stuck case shows up operationally.
func (e *WorkflowEngine) ExecuteTransition(ctx context.Context, caseID int64, toStage models.Stage,
	actingPartyID string, reason string) (*domain.ExchangeCase, error) {

	c, err := e.loadCase(caseID)
	if err != nil {
		return nil, err
	}

	rule, ok := e.table.Lookup(c.Stage, toStage)
	if !ok {
		invalid := &InvalidTransitionError{From: c.Stage, To: toStage}
		e.appendRejection(ctx, c, toStage, actingPartyID, reason, invalid.Error(), nil)
		return nil, invalid
	}
	if rule.Reopen && reason == "" {
		return nil, ErrReopenReasonRequired
	}

	snap, err := e.Snapshot(c)
	if err != nil {
		return nil, err
	}

	if !rule.Reopen {
		if failures := e.evaluateGuards(snap, rule.Guards); len(failures) > 0 {
			e.appendRejection(ctx, c, toStage, actingPartyID, reason, "transition guards not met", failures)
			return nil, &GuardsNotMetError{Failures: failures}
		}
	}

	now := e.clock.Now().UTC()
	updated := *c
	updated.Stage = toStage
	e.applyStageEntry(&updated, now)
	updated.ComplianceStatus = DeriveCompliance(now, updated.Stage, updated.IdentificationDeadline, updated.CompletionDeadline)

	if !e.caseRepo.UpdateStageByModified(&updated, c.Modified) {
		e.appendRejection(ctx, c, toStage, actingPartyID, reason, "concurrent modification, validated stage is stale", nil)
		return nil, ErrVersionConflict
	}

	slog.InfoContext(ctx, "Case transitioned", "case_id", c.ID, "case_ref", c.CaseRef,
		"from", c.Stage, "to", toStage, "acting_party", actingPartyID, "reopen", rule.Reopen)

	outcome := e.executor.Execute(ctx, rule.Actions, CaseSnapshot{Case: &updated, Details: snap.Details})

	entryType := domain.AuditTransition
	if rule.Reopen {
		entryType = domain.AuditReopened
	}
	entry := &domain.AuditEntry{
		CaseID:        c.ID,
		EntryType:     entryType,
		FromStage:     c.Stage,
		ToStage:       toStage,
		ActingPartyID: actingPartyID,
		Reason:        reason,
		ActionsRun:    marshalNullable(outcome.Ran),
		DateTime:      now,
	}
	if len(outcome.Failed) > 0 {
		failedByName := make(map[models.Action]string, len(outcome.Failed))
		for action, actionErr := range outcome.Failed {
			failedByName[action] = actionErr.Error()
		}
		entry.FailedActions = marshalNullable(failedByName)
	}
	_, _ = e.auditRepo.Save(entry)

	result, err := e.caseRepo.FindByID(c.ID)
	if err != nil {
		// the transition committed; fall back to the in-memory row
		result = &updated
	}
	if len(outcome.Failed) > 0 {
		return result, &ActionPartialFailureError{Failed: outcome.Failed}
	}
	return result, nil
}

// applyStageEntry sets the side fields owned by stage entry. The two
// regulatory deadlines are derived exactly once, the first time the case
// enters InProgress, and are immutable thereafter.
func (e *WorkflowEngine) applyStageEntry(c *domain.ExchangeCase, now time.Time) {
	if c.Stage == models.StageInProgress && !c.StartDate.Valid {
		identificationDays := config.GetSystemSettingInteger(config.IDENTIFICATION_WINDOW_DAYS)
		completionDays := config.GetSystemSettingInteger(config.COMPLETION_WINDOW_DAYS)
		c.StartDate = sql.NullTime{Time: now, Valid: true}
		c.IdentificationDeadline = sql.NullTime{Time: now.AddDate(0, 0, identificationDays), Valid: true}
		c.CompletionDeadline = sql.NullTime{Time: now.AddDate(0, 0, completionDays), Valid: true}
	}
	if c.Stage == models.StageCompleted && !c.CompletionDate.Valid {
		c.CompletionDate = sql.NullTime{Time: now, Valid: true}
	}
}

func (e *WorkflowEngine) appendRejection(ctx context.Context, c *domain.ExchangeCase, toStage models.Stage,
	actingPartyID string, reason string, detail string, failures []models.ConditionResult) {

	entry := &domain.AuditEntry{
		CaseID:        c.ID,
		EntryType:     domain.AuditRejected,
		FromStage:     c.Stage,
		ToStage:       toStage,
		ActingPartyID: actingPartyID,
		Reason:        reason,
		Detail:        sql.NullString{String: detail, Valid: detail != ""},
		DateTime:      e.clock.Now().UTC(),
	}
	if len(failures) > 0 {
		entry.FailedConditions = marshalNullable(failures)
	}
	if _, err := e.auditRepo.Save(entry); err != nil {
		slog.ErrorContext(ctx, "Failed to record rejected transition", "case_id", c.ID, "error", err)
	}
}

// GetTimeline returns the case's full transition history, oldest entry
// first.
func (e *WorkflowEngine) GetTimeline(caseID int64) (*[]domain.AuditEntry, error) {
	if _, err := e.loadCase(caseID); err != nil {
		return nil, err
	}
	return e.auditRepo.FindAllByCaseID(caseID)
}

func marshalNullable(v interface{}) sql.NullString {
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
