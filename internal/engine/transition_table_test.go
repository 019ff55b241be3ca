package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qintermediary/exchangeflow/internal/models"
)

func TestTransitionTable_PermittedEdges(t *testing.T) {
	table := NewTransitionTable()

	permitted := [][2]models.Stage{
		{models.StageDraft, models.StageInProgress},
		{models.StageDraft, models.StageCancelled},
		{models.StageInProgress, models.StageIdentificationPeriod},
		{models.StageInProgress, models.StageOnHold},
		{models.StageInProgress, models.StageCancelled},
		{models.StageIdentificationPeriod, models.StageCompletionPeriod},
		{models.StageIdentificationPeriod, models.StageOnHold},
		{models.StageIdentificationPeriod, models.StageCancelled},
		{models.StageCompletionPeriod, models.StageCompleted},
		{models.StageCompletionPeriod, models.StageOnHold},
		{models.StageCompletionPeriod, models.StageCancelled},
		{models.StageOnHold, models.StageInProgress},
		{models.StageOnHold, models.StageIdentificationPeriod},
		{models.StageOnHold, models.StageCompletionPeriod},
		{models.StageCompleted, models.StageDraft},
		{models.StageCancelled, models.StageDraft},
	}
	for _, edge := range permitted {
		_, ok := table.Lookup(edge[0], edge[1])
		require.True(t, ok, "expected edge %s -> %s", edge[0], edge[1])
	}
}

func TestTransitionTable_ForbiddenEdges(t *testing.T) {
	table := NewTransitionTable()

	forbidden := [][2]models.Stage{
		{models.StageDraft, models.StageIdentificationPeriod},
		{models.StageDraft, models.StageCompleted},
		{models.StageDraft, models.StageOnHold},
		{models.StageInProgress, models.StageCompleted},
		{models.StageIdentificationPeriod, models.StageInProgress},
		{models.StageCompletionPeriod, models.StageIdentificationPeriod},
		{models.StageCompleted, models.StageInProgress},
		{models.StageCancelled, models.StageInProgress},
		{models.StageOnHold, models.StageDraft},
		{models.StageOnHold, models.StageCancelled},
	}
	for _, edge := range forbidden {
		_, ok := table.Lookup(edge[0], edge[1])
		require.False(t, ok, "edge %s -> %s must not exist", edge[0], edge[1])
	}
}

func TestTransitionTable_ReopenEdgesAreFlagged(t *testing.T) {
	table := NewTransitionTable()

	fromCompleted, ok := table.Lookup(models.StageCompleted, models.StageDraft)
	require.True(t, ok)
	require.True(t, fromCompleted.Reopen)
	require.Empty(t, fromCompleted.Guards)

	fromCancelled, ok := table.Lookup(models.StageCancelled, models.StageDraft)
	require.True(t, ok)
	require.True(t, fromCancelled.Reopen)

	regular, ok := table.Lookup(models.StageDraft, models.StageInProgress)
	require.True(t, ok)
	require.False(t, regular.Reopen)
}

func TestTransitionTable_FromListsDeclarationOrder(t *testing.T) {
	table := NewTransitionTable()

	rules := table.From(models.StageInProgress)
	require.Len(t, rules, 3)
	require.Equal(t, models.StageIdentificationPeriod, rules[0].To)
	require.Equal(t, models.StageOnHold, rules[1].To)
	require.Equal(t, models.StageCancelled, rules[2].To)

	require.Empty(t, table.From(models.Stage("UNKNOWN")))
}

func TestTransitionTable_CompletionEdgeDeclaresActions(t *testing.T) {
	table := NewTransitionTable()

	rule, ok := table.Lookup(models.StageCompletionPeriod, models.StageCompleted)
	require.True(t, ok)
	require.Equal(t, []models.Condition{
		models.CondReplacementPurchaseClosed,
		models.CondRequiredDocumentsPresent,
		models.CondFundsFullyDisbursed,
	}, rule.Guards)
	require.Equal(t, []models.Action{
		models.ActionGenerateCompletionCertificate,
		models.ActionNotifyAllParties,
		models.ActionArchiveCase,
	}, rule.Actions)
}
