package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// Shared mocks for the engine tests. Function fields override the default
// behaviour per test; unset fields fall back to something harmless.

type MockCaseRepo struct {
	FindByIDFunc                   func(id int64) (*domain.ExchangeCase, error)
	FindByCaseRefFunc              func(ref string) (*domain.ExchangeCase, error)
	SaveFunc                       func(c *domain.ExchangeCase) (int64, error)
	UpdateStageByModifiedFunc      func(c *domain.ExchangeCase, expectedModified time.Time) bool
	UpdateComplianceByModifiedFunc func(id int64, status models.ComplianceStatus, expectedModified time.Time) bool
	MarkArchivedFunc               func(id int64) error
	FindActiveWithDeadlinesFunc    func(limit int) (*[]domain.ExchangeCase, error)

	ArchivedIDs []int64
}

func (m *MockCaseRepo) FindByID(id int64) (*domain.ExchangeCase, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}
func (m *MockCaseRepo) FindByCaseRef(ref string) (*domain.ExchangeCase, error) {
	if m.FindByCaseRefFunc != nil {
		return m.FindByCaseRefFunc(ref)
	}
	return nil, nil
}
func (m *MockCaseRepo) Save(c *domain.ExchangeCase) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(c)
	}
	return 1, nil
}
func (m *MockCaseRepo) UpdateStageByModified(c *domain.ExchangeCase, expectedModified time.Time) bool {
	if m.UpdateStageByModifiedFunc != nil {
		return m.UpdateStageByModifiedFunc(c, expectedModified)
	}
	return true
}
func (m *MockCaseRepo) UpdateComplianceByModified(id int64, status models.ComplianceStatus, expectedModified time.Time) bool {
	if m.UpdateComplianceByModifiedFunc != nil {
		return m.UpdateComplianceByModifiedFunc(id, status, expectedModified)
	}
	return true
}
func (m *MockCaseRepo) MarkArchived(id int64) error {
	m.ArchivedIDs = append(m.ArchivedIDs, id)
	if m.MarkArchivedFunc != nil {
		return m.MarkArchivedFunc(id)
	}
	return nil
}
func (m *MockCaseRepo) FindActiveWithDeadlines(limit int) (*[]domain.ExchangeCase, error) {
	if m.FindActiveWithDeadlinesFunc != nil {
		return m.FindActiveWithDeadlinesFunc(limit)
	}
	empty := []domain.ExchangeCase{}
	return &empty, nil
}

type MockWorkItemRepo struct {
	SaveFunc                    func(w *domain.WorkItem) (int64, error)
	FindByIDFunc                func(id int64) (*domain.WorkItem, error)
	FindAllByCaseIDFunc         func(caseID int64) (*[]domain.WorkItem, error)
	UpdateStatusAndPriorityFunc func(id int64, status models.WorkItemStatus, priority models.Priority) error

	Saved []domain.WorkItem
}

func (m *MockWorkItemRepo) Save(w *domain.WorkItem) (int64, error) {
	m.Saved = append(m.Saved, *w)
	if m.SaveFunc != nil {
		return m.SaveFunc(w)
	}
	return int64(len(m.Saved)), nil
}
func (m *MockWorkItemRepo) FindByID(id int64) (*domain.WorkItem, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}
func (m *MockWorkItemRepo) FindAllByCaseID(caseID int64) (*[]domain.WorkItem, error) {
	if m.FindAllByCaseIDFunc != nil {
		return m.FindAllByCaseIDFunc(caseID)
	}
	empty := []domain.WorkItem{}
	return &empty, nil
}
func (m *MockWorkItemRepo) UpdateStatusAndPriority(id int64, status models.WorkItemStatus, priority models.Priority) error {
	if m.UpdateStatusAndPriorityFunc != nil {
		return m.UpdateStatusAndPriorityFunc(id, status, priority)
	}
	return nil
}

type MockAuditRepo struct {
	SaveFunc            func(a *domain.AuditEntry) (int64, error)
	FindAllByCaseIDFunc func(caseID int64) (*[]domain.AuditEntry, error)

	Entries []domain.AuditEntry
}

func (m *MockAuditRepo) Save(a *domain.AuditEntry) (int64, error) {
	m.Entries = append(m.Entries, *a)
	if m.SaveFunc != nil {
		return m.SaveFunc(a)
	}
	return int64(len(m.Entries)), nil
}
func (m *MockAuditRepo) FindAllByCaseID(caseID int64) (*[]domain.AuditEntry, error) {
	if m.FindAllByCaseIDFunc != nil {
		return m.FindAllByCaseIDFunc(caseID)
	}
	out := make([]domain.AuditEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return &out, nil
}

// MockMarkerRepo keeps fired markers in memory so idempotence across
// repeated scans can be asserted.
type MockMarkerRepo struct {
	mu    sync.Mutex
	fired map[string]bool

	Saved []domain.DeadlineMarker
}

func markerKey(caseID int64, kind models.DeadlineKind, thresholdDays int) string {
	return fmt.Sprintf("%d/%s/%d", caseID, kind, thresholdDays)
}

func (m *MockMarkerRepo) HasFired(caseID int64, kind models.DeadlineKind, thresholdDays int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired[markerKey(caseID, kind, thresholdDays)], nil
}
func (m *MockMarkerRepo) Save(marker *domain.DeadlineMarker) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fired == nil {
		m.fired = map[string]bool{}
	}
	m.fired[markerKey(marker.CaseID, marker.DeadlineKind, marker.ThresholdDays)] = true
	m.Saved = append(m.Saved, *marker)
	return int64(len(m.Saved)), nil
}

type notification struct {
	PartyID   string
	EventKind string
	Payload   map[string]string
}

type MockNotifier struct {
	NotifyFunc func(ctx context.Context, partyID string, eventKind string, payload map[string]string) error

	Sent []notification
}

func (m *MockNotifier) Notify(ctx context.Context, partyID string, eventKind string, payload map[string]string) error {
	m.Sent = append(m.Sent, notification{PartyID: partyID, EventKind: eventKind, Payload: payload})
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, partyID, eventKind, payload)
	}
	return nil
}

type MockDocumentGenerator struct {
	GenerateFunc func(ctx context.Context, snapshot CaseSnapshot) (string, error)

	Generated int
}

func (m *MockDocumentGenerator) GenerateCompletionCertificate(ctx context.Context, snapshot CaseSnapshot) (string, error) {
	m.Generated++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, snapshot)
	}
	return "CERT-TEST", nil
}

// FakeClock is a manually advanced clock for deterministic deadline tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now().Add(d)
	return ch
}

func (c *FakeClock) Sleep(d time.Duration) {}

func (c *FakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
