package repository

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
)

// AuditEntryRepository is append-only: entries are inserted and listed,
// never updated or deleted.
type AuditEntryRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewAuditEntryRepository(db *sql.DB, clock core.Clock) *AuditEntryRepository {
	return &AuditEntryRepository{db: db, clock: clock}
}

func (r *AuditEntryRepository) Save(a *domain.AuditEntry) (int64, error) {
	vals := []interface{}{
		a.CaseID, a.EntryType, string(a.FromStage), string(a.ToStage), a.ActingPartyID, a.Reason,
		a.Detail, a.ActionsRun, a.FailedConditions, a.FailedActions, formatDateInDatabase(a.DateTime),
	}
	pps := make([]string, 0, len(vals))
	for i := range vals {
		pps = append(pps, placeholder(i+1))
	}
	base := `INSERT INTO audit_entries (
		case_id, entry_type, from_stage, to_stage, acting_party_id, reason,
		detail, actions_run, failed_conditions, failed_actions, date_time
	) VALUES (` + strings.Join(pps, ", ") + `)`
	var err error
	if supportsReturning() {
		query := base + " RETURNING id"
		err = r.db.QueryRow(query, vals...).Scan(&a.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			id, e2 := res.LastInsertId()
			if e2 != nil {
				err = e2
			} else {
				a.ID = id
			}
		}
	}

	if err != nil {
		slog.Error("Failed to save audit entry", "error", err, "case_id", a.CaseID)
	}

	return a.ID, err
}

// FindAllByCaseID returns the case timeline in insertion order, oldest
// first, so replaying the successful entries reconstructs the stage.
func (r *AuditEntryRepository) FindAllByCaseID(caseID int64) (*[]domain.AuditEntry, error) {
	query := `
		SELECT id, case_id, entry_type, from_stage, to_stage, acting_party_id, reason,
		       detail, actions_run, failed_conditions, failed_actions, date_time
		FROM audit_entries
		WHERE case_id = ` + placeholder(1) + `
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var a domain.AuditEntry
		if err := rows.Scan(
			&a.ID,
			&a.CaseID,
			&a.EntryType,
			&a.FromStage,
			&a.ToStage,
			&a.ActingPartyID,
			&a.Reason,
			&a.Detail,
			&a.ActionsRun,
			&a.FailedConditions,
			&a.FailedActions,
			&a.DateTime,
		); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return &entries, nil
}
