package engine

import (
	"context"
	"time"

	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// CaseRepo defines the interface for case persistence, matching repository.CaseRepository.
type CaseRepo interface {
	FindByID(id int64) (*domain.ExchangeCase, error)
	FindByCaseRef(ref string) (*domain.ExchangeCase, error)
	Save(c *domain.ExchangeCase) (int64, error)
	UpdateStageByModified(c *domain.ExchangeCase, expectedModified time.Time) bool
	UpdateComplianceByModified(id int64, status models.ComplianceStatus, expectedModified time.Time) bool
	MarkArchived(id int64) error
	FindActiveWithDeadlines(limit int) (*[]domain.ExchangeCase, error)
}

// WorkItemRepo defines the interface for work item persistence.
type WorkItemRepo interface {
	Save(w *domain.WorkItem) (int64, error)
	FindByID(id int64) (*domain.WorkItem, error)
	FindAllByCaseID(caseID int64) (*[]domain.WorkItem, error)
	UpdateStatusAndPriority(id int64, status models.WorkItemStatus, priority models.Priority) error
}

// AuditRepo defines the interface for audit entry persistence.
type AuditRepo interface {
	Save(a *domain.AuditEntry) (int64, error)
	FindAllByCaseID(caseID int64) (*[]domain.AuditEntry, error)
}

// MarkerRepo defines the interface for deadline marker persistence.
type MarkerRepo interface {
	HasFired(caseID int64, kind models.DeadlineKind, thresholdDays int) (bool, error)
	Save(m *domain.DeadlineMarker) (int64, error)
}

// Event kinds handed to the Notifier. Delivery mechanics live outside the
// engine; failures are logged by the caller and never retried here.
const (
	EventStageEntered      = "STAGE_ENTERED"
	EventCaseReopened      = "CASE_REOPENED"
	EventDeadlineReminder  = "DEADLINE_REMINDER"
	EventDeadlineOverdue   = "DEADLINE_OVERDUE"
	EventCertificateIssued = "CERTIFICATE_ISSUED"
)

// Notifier is the fire-and-forget notification collaborator.
type Notifier interface {
	Notify(ctx context.Context, partyID string, eventKind string, payload map[string]string) error
}

// DocumentGenerator produces the completion certificate. It may fail
// independently of the transition that requested it.
type DocumentGenerator interface {
	GenerateCompletionCertificate(ctx context.Context, snapshot CaseSnapshot) (string, error)
}

// CaseSnapshot is the read-only view guards and actions work against: the
// case row plus its decoded details payload. Anything a guard needs must
// already be in here.
type CaseSnapshot struct {
	Case    *domain.ExchangeCase
	Details models.CaseDetails
}
