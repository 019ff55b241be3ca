package domain

import (
	"database/sql"
	"time"

	"github.com/qintermediary/exchangeflow/internal/models"
)

// ExchangeCase is the persisted record for one 1031 exchange under
// management. The modified timestamp doubles as the optimistic version:
// every write predicates on the value that was read.
type ExchangeCase struct {
	ID                     int64
	CaseRef                string
	ClientID               sql.NullString
	CoordinatorID          sql.NullString
	Stage                  models.Stage
	ComplianceStatus       models.ComplianceStatus
	StartDate              sql.NullTime
	IdentificationDeadline sql.NullTime
	CompletionDeadline     sql.NullTime
	CompletionDate         sql.NullTime
	Archived               bool
	Details                sql.NullString
	Created                time.Time
	Modified               time.Time
}
