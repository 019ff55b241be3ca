package engine

import "github.com/qintermediary/exchangeflow/internal/models"

// TransitionRule is one permitted edge of the stage graph: the guards that
// must hold before it executes and the auto-actions that run after it
// commits, both in declared order. Reopen edges bypass guards but are
// flagged distinctly in the audit trail.
type TransitionRule struct {
	From    models.Stage
	To      models.Stage
	Guards  []models.Condition
	Actions []models.Action
	Reopen  bool
}

// TransitionTable is the static declaration of the exchange lifecycle.
// Lookups are pure; an unknown (from, to) pair is simply not permitted,
// never an error at this layer.
type TransitionTable struct {
	rules map[models.Stage][]TransitionRule
}

func NewTransitionTable() *TransitionTable {
	all := []TransitionRule{
		{
			From:    models.StageDraft,
			To:      models.StageInProgress,
			Guards:  []models.Condition{models.CondClientInfoComplete, models.CondCoordinatorAssigned, models.CondHasRelinquishedProperty},
			Actions: []models.Action{models.ActionSeedStageWorkItems, models.ActionStartDeadlineTimers, models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageDraft,
			To:      models.StageCancelled,
			Actions: []models.Action{models.ActionNotifyAllParties},
		},
		{
			From:    models.StageInProgress,
			To:      models.StageIdentificationPeriod,
			Guards:  []models.Condition{models.CondRelinquishedSaleClosed, models.CondRequiredDocumentsPresent},
			Actions: []models.Action{models.ActionSeedStageWorkItems, models.ActionNotifyAllParties},
		},
		{
			From:    models.StageInProgress,
			To:      models.StageOnHold,
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageInProgress,
			To:      models.StageCancelled,
			Actions: []models.Action{models.ActionNotifyAllParties, models.ActionArchiveCase},
		},
		{
			From:    models.StageIdentificationPeriod,
			To:      models.StageCompletionPeriod,
			Guards:  []models.Condition{models.CondHasReplacementProperties, models.CondIdentificationWithinDeadline},
			Actions: []models.Action{models.ActionSeedStageWorkItems, models.ActionNotifyAllParties},
		},
		{
			From:    models.StageIdentificationPeriod,
			To:      models.StageOnHold,
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageIdentificationPeriod,
			To:      models.StageCancelled,
			Actions: []models.Action{models.ActionNotifyAllParties, models.ActionArchiveCase},
		},
		{
			From:    models.StageCompletionPeriod,
			To:      models.StageCompleted,
			Guards:  []models.Condition{models.CondReplacementPurchaseClosed, models.CondRequiredDocumentsPresent, models.CondFundsFullyDisbursed},
			Actions: []models.Action{models.ActionGenerateCompletionCertificate, models.ActionNotifyAllParties, models.ActionArchiveCase},
		},
		{
			From:    models.StageCompletionPeriod,
			To:      models.StageOnHold,
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageCompletionPeriod,
			To:      models.StageCancelled,
			Actions: []models.Action{models.ActionNotifyAllParties, models.ActionArchiveCase},
		},
		{
			From:    models.StageOnHold,
			To:      models.StageInProgress,
			Guards:  []models.Condition{models.CondHoldReleased},
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageOnHold,
			To:      models.StageIdentificationPeriod,
			Guards:  []models.Condition{models.CondHoldReleased},
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageOnHold,
			To:      models.StageCompletionPeriod,
			Guards:  []models.Condition{models.CondHoldReleased},
			Actions: []models.Action{models.ActionNotifyCoordinator},
		},
		{
			From:    models.StageCompleted,
			To:      models.StageDraft,
			Actions: []models.Action{models.ActionNotifyCoordinator},
			Reopen:  true,
		},
		{
			From:    models.StageCancelled,
			To:      models.StageDraft,
			Actions: []models.Action{models.ActionNotifyCoordinator},
			Reopen:  true,
		},
	}

	rules := make(map[models.Stage][]TransitionRule)
	for _, r := range all {
		rules[r.From] = append(rules[r.From], r)
	}
	return &TransitionTable{rules: rules}
}

// From returns every rule leaving the given stage, in declaration order.
// Unknown stages have an empty reachable set.
func (t *TransitionTable) From(stage models.Stage) []TransitionRule {
	out := make([]TransitionRule, len(t.rules[stage]))
	copy(out, t.rules[stage])
	return out
}

// Lookup returns the rule for a specific edge, if it is permitted.
func (t *TransitionTable) Lookup(from, to models.Stage) (TransitionRule, bool) {
	for _, r := range t.rules[from] {
		if r.To == to {
			return r, true
		}
	}
	return TransitionRule{}, false
}
