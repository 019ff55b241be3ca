package repository

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

type CaseRepository struct {
	db    *sql.DB
	clock core.Clock
}

const CASE_COLUMNS = ` id, case_ref, client_id, coordinator_id, stage, compliance_status,
		       start_date, identification_deadline, completion_deadline, completion_date,
		       archived, details, created, modified `

func NewCaseRepository(db *sql.DB, clock core.Clock) *CaseRepository {
	return &CaseRepository{db: db, clock: clock}
}

func scanCase(row interface{ Scan(...interface{}) error }) (*domain.ExchangeCase, error) {
	var c domain.ExchangeCase
	err := row.Scan(
		&c.ID,
		&c.CaseRef,
		&c.ClientID,
		&c.CoordinatorID,
		&c.Stage,
		&c.ComplianceStatus,
		&c.StartDate,
		&c.IdentificationDeadline,
		&c.CompletionDeadline,
		&c.CompletionDate,
		&c.Archived,
		&c.Details,
		&c.Created,
		&c.Modified,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CaseRepository) FindByID(id int64) (*domain.ExchangeCase, error) {
	query := `
		SELECT ` + CASE_COLUMNS + `
		FROM exchange_cases WHERE id = ` + placeholder(1) + `
	`
	return scanCase(r.db.QueryRow(query, id))
}

func (r *CaseRepository) FindByCaseRef(ref string) (*domain.ExchangeCase, error) {
	query := `
		SELECT ` + CASE_COLUMNS + `
		FROM exchange_cases WHERE case_ref = ` + placeholder(1) + `
	`
	return scanCase(r.db.QueryRow(query, ref))
}

func (r *CaseRepository) Save(c *domain.ExchangeCase) (int64, error) {
	vals := []interface{}{
		c.CaseRef, c.ClientID, c.CoordinatorID, string(c.Stage), string(c.ComplianceStatus),
		formatDateInDatabaseNull(c.StartDate), formatDateInDatabaseNull(c.IdentificationDeadline),
		formatDateInDatabaseNull(c.CompletionDeadline), formatDateInDatabaseNull(c.CompletionDate),
		c.Archived, c.Details, formatDateInDatabase(c.Created), formatDateInDatabase(c.Modified),
	}
	pps := make([]string, 0, len(vals))
	for i := range vals {
		pps = append(pps, placeholder(i+1))
	}
	base := `INSERT INTO exchange_cases (
		case_ref, client_id, coordinator_id, stage, compliance_status,
		start_date, identification_deadline, completion_deadline, completion_date,
		archived, details, created, modified
	) VALUES (` + strings.Join(pps, ", ") + `)`
	var err error
	if supportsReturning() {
		query := base + " RETURNING id"
		err = r.db.QueryRow(query, vals...).Scan(&c.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			id, e2 := res.LastInsertId()
			if e2 != nil {
				err = e2
			} else {
				c.ID = id
			}
		}
	}
	return c.ID, err
}

// UpdateStageByModified writes the stage and its entry side fields only if
// the row still carries the modified timestamp the caller validated
// against. Returns false when another writer got there first.
func (r *CaseRepository) UpdateStageByModified(c *domain.ExchangeCase, expectedModified time.Time) bool {
	query := `
		UPDATE exchange_cases
		SET stage = ` + placeholder(1) + `, compliance_status = ` + placeholder(2) + `,
		    start_date = ` + placeholder(3) + `, identification_deadline = ` + placeholder(4) + `,
		    completion_deadline = ` + placeholder(5) + `, completion_date = ` + placeholder(6) + `,
		    modified = ` + nowFunc(r.clock) + `
		WHERE id = ` + placeholder(7) + ` AND modified = ` + placeholder(8) + `
	`
	result, err := r.db.Exec(query,
		string(c.Stage), string(c.ComplianceStatus),
		formatDateInDatabaseNull(c.StartDate), formatDateInDatabaseNull(c.IdentificationDeadline),
		formatDateInDatabaseNull(c.CompletionDeadline), formatDateInDatabaseNull(c.CompletionDate),
		c.ID, formatDateInDatabase(expectedModified))
	if err != nil {
		slog.Error("Failed to update case stage", "error", err, "id", c.ID, "stage", c.Stage)
		return false
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false
	}
	return rowsAffected == 1
}

// UpdateComplianceByModified is the scheduler's only case write. It goes
// through the same versioned predicate so it can never clobber a stage
// update that landed after the scan read the row.
func (r *CaseRepository) UpdateComplianceByModified(id int64, status models.ComplianceStatus, expectedModified time.Time) bool {
	query := `
		UPDATE exchange_cases
		SET compliance_status = ` + placeholder(1) + `, modified = ` + nowFunc(r.clock) + `
		WHERE id = ` + placeholder(2) + ` AND modified = ` + placeholder(3) + `
	`
	result, err := r.db.Exec(query, string(status), id, formatDateInDatabase(expectedModified))
	if err != nil {
		slog.Error("Failed to update case compliance", "error", err, "id", id, "status", status)
		return false
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false
	}
	return rowsAffected == 1
}

func (r *CaseRepository) MarkArchived(id int64) error {
	query := `
		UPDATE exchange_cases
		SET archived = ` + placeholder(1) + `, modified = ` + nowFunc(r.clock) + `
		WHERE id = ` + placeholder(2) + `
	`
	_, err := r.db.Exec(query, true, id)
	return err
}

// FindActiveWithDeadlines returns cases the deadline scheduler must watch:
// non-terminal stage with at least one deadline set.
func (r *CaseRepository) FindActiveWithDeadlines(limit int) (*[]domain.ExchangeCase, error) {
	query := `
		SELECT ` + CASE_COLUMNS + `
		FROM exchange_cases
		WHERE stage IN ('IN_PROGRESS', 'IDENTIFICATION_PERIOD', 'COMPLETION_PERIOD', 'ON_HOLD')
		  AND completion_deadline IS NOT NULL
		ORDER BY completion_deadline ASC
		LIMIT ` + placeholder(1) + `
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []domain.ExchangeCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return &cases, nil
}
