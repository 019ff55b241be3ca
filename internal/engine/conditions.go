package engine

import (
	"fmt"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// requiredDocumentsByStage lists the documents that must be on file before
// a case may leave the given stage.
var requiredDocumentsByStage = map[models.Stage][]string{
	models.StageInProgress:       {"exchange_agreement", "relinquished_sale_contract"},
	models.StageCompletionPeriod: {"identification_notice", "replacement_purchase_contract", "settlement_statement"},
}

// maxIdentifiedProperties is the three-property identification rule limit.
const maxIdentifiedProperties = 3

// ConditionEvaluator answers whether a named guard holds for a snapshot.
// Predicates are pure over the snapshot; the clock is the only ambient
// input and only the deadline guard reads it. Unknown names evaluate to
// not-met with a diagnostic so a bad guard name surfaces in the audit
// trail instead of crashing the transition check.
type ConditionEvaluator struct {
	clock core.Clock
}

func NewConditionEvaluator(clock core.Clock) *ConditionEvaluator {
	return &ConditionEvaluator{clock: clock}
}

func (e *ConditionEvaluator) Evaluate(snap CaseSnapshot, cond models.Condition) models.ConditionResult {
	met, msg := e.check(snap, cond)
	r := models.ConditionResult{Condition: cond, Met: met}
	if !met {
		r.Message = msg
	}
	return r
}

func (e *ConditionEvaluator) check(snap CaseSnapshot, cond models.Condition) (bool, string) {
	d := snap.Details
	c := snap.Case

	switch cond {
	case models.CondClientInfoComplete:
		if !c.ClientID.Valid || c.ClientID.String == "" {
			return false, "no client linked to the case"
		}
		if d.ClientName == "" || d.ClientEmail == "" {
			return false, "client contact record is incomplete"
		}
		return true, ""

	case models.CondCoordinatorAssigned:
		if !c.CoordinatorID.Valid || c.CoordinatorID.String == "" {
			return false, "no exchange coordinator assigned"
		}
		return true, ""

	case models.CondHasRelinquishedProperty:
		if d.RelinquishedProperty == nil || d.RelinquishedProperty.Address == "" {
			return false, "no relinquished property documented"
		}
		return true, ""

	case models.CondRelinquishedSaleClosed:
		if d.RelinquishedProperty == nil {
			return false, "no relinquished property documented"
		}
		if !d.RelinquishedProperty.Closed {
			return false, "relinquished property sale has not closed"
		}
		return true, ""

	case models.CondRequiredDocumentsPresent:
		required := requiredDocumentsByStage[c.Stage]
		for _, name := range required {
			if !containsDocument(d.Documents, name) {
				return false, fmt.Sprintf("required document missing: %s", name)
			}
		}
		return true, ""

	case models.CondHasReplacementProperties:
		if len(d.ReplacementProperties) == 0 {
			return false, "no replacement properties identified"
		}
		if len(d.ReplacementProperties) > maxIdentifiedProperties {
			return false, fmt.Sprintf("more than %d replacement properties identified", maxIdentifiedProperties)
		}
		return true, ""

	case models.CondIdentificationWithinDeadline:
		if !c.IdentificationDeadline.Valid {
			return false, "identification deadline has not been set"
		}
		if e.clock.Now().After(c.IdentificationDeadline.Time) {
			return false, "45-day identification deadline has passed"
		}
		return true, ""

	case models.CondReplacementPurchaseClosed:
		for _, p := range d.ReplacementProperties {
			if p.Closed {
				return true, ""
			}
		}
		return false, "no replacement property purchase has closed"

	case models.CondFundsFullyDisbursed:
		if d.RelinquishedProperty == nil {
			return false, "no relinquished property documented"
		}
		if d.FundsDisbursedCents < d.RelinquishedProperty.ValueCents {
			return false, "exchange funds not fully disbursed"
		}
		return true, ""

	case models.CondHoldReleased:
		if !d.HoldReleased {
			return false, "hold has not been released"
		}
		return true, ""
	}

	return false, fmt.Sprintf("unknown condition: %s", cond)
}

func containsDocument(docs []string, name string) bool {
	for _, d := range docs {
		if d == name {
			return true
		}
	}
	return false
}
