package models

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type WorkItemStatus string

// Work items are never deleted, only completed or abandoned.
const (
	WorkItemPending    WorkItemStatus = "PENDING"
	WorkItemInProgress WorkItemStatus = "IN_PROGRESS"
	WorkItemCompleted  WorkItemStatus = "COMPLETED"
	WorkItemAbandoned  WorkItemStatus = "ABANDONED"
)

func (s WorkItemStatus) IsValid() bool {
	switch s {
	case WorkItemPending, WorkItemInProgress, WorkItemCompleted, WorkItemAbandoned:
		return true
	}
	return false
}
