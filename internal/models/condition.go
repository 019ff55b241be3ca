package models

// Condition names a guard predicate evaluated against a case snapshot.
// The set is closed; the evaluator soft-fails anything it does not know.
type Condition string

const (
	CondClientInfoComplete           Condition = "client_info_complete"
	CondCoordinatorAssigned          Condition = "coordinator_assigned"
	CondHasRelinquishedProperty      Condition = "has_relinquished_property"
	CondRelinquishedSaleClosed       Condition = "relinquished_sale_closed"
	CondRequiredDocumentsPresent     Condition = "required_documents_present"
	CondHasReplacementProperties     Condition = "has_replacement_properties"
	CondIdentificationWithinDeadline Condition = "identification_within_deadline"
	CondReplacementPurchaseClosed    Condition = "replacement_purchase_closed"
	CondFundsFullyDisbursed          Condition = "funds_fully_disbursed"
	CondHoldReleased                 Condition = "hold_released"
)

// ConditionResult is the evaluator's verdict for a single guard.
type ConditionResult struct {
	Condition Condition `json:"condition"`
	Met       bool      `json:"met"`
	Message   string    `json:"message,omitempty"`
}
