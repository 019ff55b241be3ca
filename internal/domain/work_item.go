package domain

import (
	"database/sql"
	"time"

	"github.com/qintermediary/exchangeflow/internal/models"
)

type WorkItem struct {
	ID          int64
	CaseID      int64
	Title       string
	Description string
	Priority    models.Priority
	Status      models.WorkItemStatus
	DueDate     sql.NullTime
	Created     time.Time
	Modified    time.Time
}
