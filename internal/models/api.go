package models

import "time"

// CreateCaseRequest is the payload for opening a new exchange case in Draft.
type CreateCaseRequest struct {
	ClientID      string      `json:"clientId"`
	CoordinatorID string      `json:"coordinatorId,omitempty"`
	Details       CaseDetails `json:"details"`
}

type CreateCaseResponse struct {
	ID      int64  `json:"id"`
	CaseRef string `json:"caseRef"`
}

// ExecuteTransitionRequest asks the engine to move a case to a new stage.
type ExecuteTransitionRequest struct {
	ToStage       Stage  `json:"toStage"`
	ActingPartyID string `json:"actingPartyId"`
	Reason        string `json:"reason"`
}

// TransitionOption is one reachable stage with the guards that will be
// evaluated at execution time. Guards are deliberately not pre-evaluated.
type TransitionOption struct {
	ToStage            Stage       `json:"toStage"`
	RequiredConditions []Condition `json:"requiredConditions"`
	Reopen             bool        `json:"reopen,omitempty"`
}

type ValidateTransitionResponse struct {
	Valid            bool              `json:"valid"`
	FailedConditions []ConditionResult `json:"failedConditions,omitempty"`
}

// CaseApiResponse represents the API view of a case.
type CaseApiResponse struct {
	ID                     int64            `json:"id"`
	CaseRef                string           `json:"caseRef"`
	ClientID               string           `json:"clientId,omitempty"`
	CoordinatorID          string           `json:"coordinatorId,omitempty"`
	Stage                  Stage            `json:"stage"`
	ComplianceStatus       ComplianceStatus `json:"complianceStatus"`
	StartDate              *time.Time       `json:"startDate,omitempty"`
	IdentificationDeadline *time.Time       `json:"identificationDeadline,omitempty"`
	CompletionDeadline     *time.Time       `json:"completionDeadline,omitempty"`
	CompletionDate         *time.Time       `json:"completionDate,omitempty"`
	Archived               bool             `json:"archived"`
	Details                CaseDetails      `json:"details"`
	Created                time.Time        `json:"created"`
	Modified               time.Time        `json:"modified"`
}

// AuditEntryApiResponse is one timeline row.
type AuditEntryApiResponse struct {
	ID               int64             `json:"id"`
	EntryType        string            `json:"entryType"`
	FromStage        Stage             `json:"fromStage"`
	ToStage          Stage             `json:"toStage"`
	ActingPartyID    string            `json:"actingPartyId"`
	Reason           string            `json:"reason"`
	ActionsRun       []Action          `json:"actionsRun,omitempty"`
	FailedConditions []ConditionResult `json:"failedConditions,omitempty"`
	FailedActions    map[Action]string `json:"failedActions,omitempty"`
	DateTime         time.Time         `json:"dateTime"`
}

// ExecuteTransitionResponse is returned after a committed transition. When
// auto-actions failed the transition still stands and the failures come
// back as warnings.
type ExecuteTransitionResponse struct {
	Case     CaseApiResponse   `json:"case"`
	Warnings map[Action]string `json:"warnings,omitempty"`
}

// CreateWorkItemRequest adds a manual work item to a case, alongside the
// ones the engine seeds on stage entry.
type CreateWorkItemRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateWorkItemRequest mutates the user-editable fields of a work item.
type UpdateWorkItemRequest struct {
	Status   WorkItemStatus `json:"status,omitempty"`
	Priority Priority       `json:"priority,omitempty"`
}

type WorkItemApiResponse struct {
	ID          int64          `json:"id"`
	CaseID      int64          `json:"caseId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    Priority       `json:"priority"`
	Status      WorkItemStatus `json:"status"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Created     time.Time      `json:"created"`
	Modified    time.Time      `json:"modified"`
}
