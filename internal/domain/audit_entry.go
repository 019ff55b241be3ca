package domain

import (
	"database/sql"
	"time"

	"github.com/qintermediary/exchangeflow/internal/models"
)

// Audit entry types. REOPENED marks the administrative guard-bypassing
// edge so it can never be mistaken for a normal transition.
const (
	AuditTransition = "TRANSITION"
	AuditRejected   = "REJECTED"
	AuditReopened   = "REOPENED"
)

// AuditEntry is one immutable record of a transition attempt. Entries are
// only ever inserted; the ordered sequence per case is its full history.
type AuditEntry struct {
	ID               int64
	CaseID           int64
	EntryType        string
	FromStage        models.Stage
	ToStage          models.Stage
	ActingPartyID    string
	Reason           string
	Detail           sql.NullString
	ActionsRun       sql.NullString
	FailedConditions sql.NullString
	FailedActions    sql.NullString
	DateTime         time.Time
}
