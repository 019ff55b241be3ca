package engine

import "github.com/qintermediary/exchangeflow/internal/models"

// WorkItemTemplate seeds one work item when a case enters a stage. The due
// date offset is counted from the moment the stage was entered.
type WorkItemTemplate struct {
	Title         string
	Description   string
	Priority      models.Priority
	DueOffsetDays int
}

var workItemTemplates = map[models.Stage][]WorkItemTemplate{
	models.StageInProgress: {
		{
			Title:         "Execute exchange agreement",
			Description:   "Have the client sign the exchange agreement and assignment of rights before the relinquished closing.",
			Priority:      models.PriorityUrgent,
			DueOffsetDays: 2,
		},
		{
			Title:         "Open exchange escrow account",
			Description:   "Open the segregated escrow account that will hold the exchange proceeds.",
			Priority:      models.PriorityHigh,
			DueOffsetDays: 3,
		},
		{
			Title:         "Collect relinquished sale contract",
			Description:   "File the executed sale contract for the relinquished property.",
			Priority:      models.PriorityMedium,
			DueOffsetDays: 5,
		},
	},
	models.StageIdentificationPeriod: {
		{
			Title:         "Prepare identification notice",
			Description:   "Draft the written identification of replacement properties for client signature.",
			Priority:      models.PriorityUrgent,
			DueOffsetDays: 7,
		},
		{
			Title:         "Review replacement candidates",
			Description:   "Screen candidate replacement properties against the three-property and 200% rules.",
			Priority:      models.PriorityMedium,
			DueOffsetDays: 14,
		},
		{
			Title:         "Confirm identification delivery",
			Description:   "Confirm the signed identification notice was delivered before the 45-day deadline.",
			Priority:      models.PriorityHigh,
			DueOffsetDays: 40,
		},
	},
	models.StageCompletionPeriod: {
		{
			Title:         "Coordinate replacement closing",
			Description:   "Schedule the replacement property closing with all parties and the settlement agent.",
			Priority:      models.PriorityHigh,
			DueOffsetDays: 30,
		},
		{
			Title:         "Verify funds disbursement",
			Description:   "Verify exchange proceeds are disbursed to the replacement closing and reconcile the escrow ledger.",
			Priority:      models.PriorityUrgent,
			DueOffsetDays: 45,
		},
		{
			Title:         "Collect closing statements",
			Description:   "File the settlement statements for every closed replacement property.",
			Priority:      models.PriorityMedium,
			DueOffsetDays: 60,
		},
	},
}

// TemplatesForStage exposes the fixed template set for a stage. Stages
// without templates seed nothing.
func TemplatesForStage(stage models.Stage) []WorkItemTemplate {
	out := make([]WorkItemTemplate, len(workItemTemplates[stage]))
	copy(out, workItemTemplates[stage])
	return out
}
