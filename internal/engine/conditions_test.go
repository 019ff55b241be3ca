package engine

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

var testStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func snapshotWith(c *domain.ExchangeCase, d models.CaseDetails) CaseSnapshot {
	return CaseSnapshot{Case: c, Details: d}
}

func TestConditions_ClientInfoComplete(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))

	c := &domain.ExchangeCase{ClientID: sql.NullString{String: "client-1", Valid: true}}
	d := models.CaseDetails{ClientName: "Ada Byron", ClientEmail: "ada@example.com"}
	require.True(t, ev.Evaluate(snapshotWith(c, d), models.CondClientInfoComplete).Met)

	noEmail := models.CaseDetails{ClientName: "Ada Byron"}
	result := ev.Evaluate(snapshotWith(c, noEmail), models.CondClientInfoComplete)
	require.False(t, result.Met)
	require.Equal(t, "client contact record is incomplete", result.Message)

	noClient := &domain.ExchangeCase{}
	result = ev.Evaluate(snapshotWith(noClient, d), models.CondClientInfoComplete)
	require.False(t, result.Met)
	require.Equal(t, "no client linked to the case", result.Message)
}

func TestConditions_CoordinatorAssigned(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))

	assigned := &domain.ExchangeCase{CoordinatorID: sql.NullString{String: "coord-1", Valid: true}}
	require.True(t, ev.Evaluate(snapshotWith(assigned, models.CaseDetails{}), models.CondCoordinatorAssigned).Met)

	unassigned := &domain.ExchangeCase{}
	require.False(t, ev.Evaluate(snapshotWith(unassigned, models.CaseDetails{}), models.CondCoordinatorAssigned).Met)
}

func TestConditions_RelinquishedProperty(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))
	c := &domain.ExchangeCase{}

	none := models.CaseDetails{}
	require.False(t, ev.Evaluate(snapshotWith(c, none), models.CondHasRelinquishedProperty).Met)
	require.False(t, ev.Evaluate(snapshotWith(c, none), models.CondRelinquishedSaleClosed).Met)

	open := models.CaseDetails{RelinquishedProperty: &models.PropertyInfo{Address: "12 Elm St"}}
	require.True(t, ev.Evaluate(snapshotWith(c, open), models.CondHasRelinquishedProperty).Met)
	result := ev.Evaluate(snapshotWith(c, open), models.CondRelinquishedSaleClosed)
	require.False(t, result.Met)
	require.Equal(t, "relinquished property sale has not closed", result.Message)

	closed := models.CaseDetails{RelinquishedProperty: &models.PropertyInfo{Address: "12 Elm St", Closed: true}}
	require.True(t, ev.Evaluate(snapshotWith(c, closed), models.CondRelinquishedSaleClosed).Met)
}

func TestConditions_RequiredDocumentsPerStage(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))

	inProgress := &domain.ExchangeCase{Stage: models.StageInProgress}
	complete := models.CaseDetails{Documents: []string{"exchange_agreement", "relinquished_sale_contract"}}
	require.True(t, ev.Evaluate(snapshotWith(inProgress, complete), models.CondRequiredDocumentsPresent).Met)

	missing := models.CaseDetails{Documents: []string{"exchange_agreement"}}
	result := ev.Evaluate(snapshotWith(inProgress, missing), models.CondRequiredDocumentsPresent)
	require.False(t, result.Met)
	require.Equal(t, "required document missing: relinquished_sale_contract", result.Message)

	// the same documents are not enough to leave the completion period
	completionPeriod := &domain.ExchangeCase{Stage: models.StageCompletionPeriod}
	require.False(t, ev.Evaluate(snapshotWith(completionPeriod, complete), models.CondRequiredDocumentsPresent).Met)

	// stages with no document requirements always pass
	draft := &domain.ExchangeCase{Stage: models.StageDraft}
	require.True(t, ev.Evaluate(snapshotWith(draft, models.CaseDetails{}), models.CondRequiredDocumentsPresent).Met)
}

func TestConditions_ReplacementPropertyRules(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))
	c := &domain.ExchangeCase{}

	require.False(t, ev.Evaluate(snapshotWith(c, models.CaseDetails{}), models.CondHasReplacementProperties).Met)

	three := models.CaseDetails{ReplacementProperties: []models.PropertyInfo{
		{Address: "1 Oak"}, {Address: "2 Oak"}, {Address: "3 Oak"},
	}}
	require.True(t, ev.Evaluate(snapshotWith(c, three), models.CondHasReplacementProperties).Met)

	four := models.CaseDetails{ReplacementProperties: []models.PropertyInfo{
		{Address: "1 Oak"}, {Address: "2 Oak"}, {Address: "3 Oak"}, {Address: "4 Oak"},
	}}
	result := ev.Evaluate(snapshotWith(c, four), models.CondHasReplacementProperties)
	require.False(t, result.Met)
	require.Equal(t, "more than 3 replacement properties identified", result.Message)
}

func TestConditions_IdentificationWithinDeadline(t *testing.T) {
	clock := NewFakeClock(testStart)
	ev := NewConditionEvaluator(clock)

	unset := &domain.ExchangeCase{}
	require.False(t, ev.Evaluate(snapshotWith(unset, models.CaseDetails{}), models.CondIdentificationWithinDeadline).Met)

	c := &domain.ExchangeCase{
		IdentificationDeadline: sql.NullTime{Time: testStart.AddDate(0, 0, 10), Valid: true},
	}
	require.True(t, ev.Evaluate(snapshotWith(c, models.CaseDetails{}), models.CondIdentificationWithinDeadline).Met)

	clock.Add(11 * 24 * time.Hour)
	result := ev.Evaluate(snapshotWith(c, models.CaseDetails{}), models.CondIdentificationWithinDeadline)
	require.False(t, result.Met)
	require.Equal(t, "45-day identification deadline has passed", result.Message)
}

func TestConditions_ReplacementPurchaseClosed(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))
	c := &domain.ExchangeCase{}

	open := models.CaseDetails{ReplacementProperties: []models.PropertyInfo{{Address: "1 Oak"}}}
	require.False(t, ev.Evaluate(snapshotWith(c, open), models.CondReplacementPurchaseClosed).Met)

	closed := models.CaseDetails{ReplacementProperties: []models.PropertyInfo{
		{Address: "1 Oak"}, {Address: "2 Oak", Closed: true},
	}}
	require.True(t, ev.Evaluate(snapshotWith(c, closed), models.CondReplacementPurchaseClosed).Met)
}

func TestConditions_FundsFullyDisbursed(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))
	c := &domain.ExchangeCase{}

	partial := models.CaseDetails{
		RelinquishedProperty: &models.PropertyInfo{Address: "12 Elm St", ValueCents: 50_000_000},
		FundsDisbursedCents:  49_999_999,
	}
	require.False(t, ev.Evaluate(snapshotWith(c, partial), models.CondFundsFullyDisbursed).Met)

	full := partial
	full.FundsDisbursedCents = 50_000_000
	require.True(t, ev.Evaluate(snapshotWith(c, full), models.CondFundsFullyDisbursed).Met)
}

func TestConditions_HoldReleased(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))
	c := &domain.ExchangeCase{Stage: models.StageOnHold}

	require.False(t, ev.Evaluate(snapshotWith(c, models.CaseDetails{}), models.CondHoldReleased).Met)
	require.True(t, ev.Evaluate(snapshotWith(c, models.CaseDetails{HoldReleased: true}), models.CondHoldReleased).Met)
}

func TestConditions_UnknownNameIsNotMet(t *testing.T) {
	ev := NewConditionEvaluator(NewFakeClock(testStart))

	result := ev.Evaluate(snapshotWith(&domain.ExchangeCase{}, models.CaseDetails{}), models.Condition("does_not_exist"))
	require.False(t, result.Met)
	require.Equal(t, "unknown condition: does_not_exist", result.Message)
}
