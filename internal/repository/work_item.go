package repository

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// WorkItemRepository persists the per-stage work items the engine seeds
// and users then drive to completion.
type WorkItemRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewWorkItemRepository(db *sql.DB, clock core.Clock) *WorkItemRepository {
	return &WorkItemRepository{db: db, clock: clock}
}

func (r *WorkItemRepository) Save(w *domain.WorkItem) (int64, error) {
	vals := []interface{}{
		w.CaseID, w.Title, w.Description, string(w.Priority), string(w.Status),
		formatDateInDatabaseNull(w.DueDate), formatDateInDatabase(w.Created), formatDateInDatabase(w.Modified),
	}
	pps := make([]string, 0, len(vals))
	for i := range vals {
		pps = append(pps, placeholder(i+1))
	}
	base := `INSERT INTO work_items (
		case_id, title, description, priority, status, due_date, created, modified
	) VALUES (` + strings.Join(pps, ", ") + `)`
	var err error
	if supportsReturning() {
		query := base + " RETURNING id"
		err = r.db.QueryRow(query, vals...).Scan(&w.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			id, e2 := res.LastInsertId()
			if e2 != nil {
				err = e2
			} else {
				w.ID = id
			}
		}
	}
	if err != nil {
		slog.Error("Failed to save work item", "error", err, "case_id", w.CaseID, "title", w.Title)
	}
	return w.ID, err
}

func (r *WorkItemRepository) FindByID(id int64) (*domain.WorkItem, error) {
	query := `
		SELECT id, case_id, title, description, priority, status, due_date, created, modified
		FROM work_items
		WHERE id = ` + placeholder(1) + `
	`
	var w domain.WorkItem
	err := r.db.QueryRow(query, id).Scan(
		&w.ID,
		&w.CaseID,
		&w.Title,
		&w.Description,
		&w.Priority,
		&w.Status,
		&w.DueDate,
		&w.Created,
		&w.Modified,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkItemRepository) FindAllByCaseID(caseID int64) (*[]domain.WorkItem, error) {
	query := `
		SELECT id, case_id, title, description, priority, status, due_date, created, modified
		FROM work_items
		WHERE case_id = ` + placeholder(1) + `
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		var w domain.WorkItem
		if err := rows.Scan(
			&w.ID,
			&w.CaseID,
			&w.Title,
			&w.Description,
			&w.Priority,
			&w.Status,
			&w.DueDate,
			&w.Created,
			&w.Modified,
		); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return &items, nil
}

// UpdateStatusAndPriority applies the only user-editable fields. Work
// items are never deleted.
func (r *WorkItemRepository) UpdateStatusAndPriority(id int64, status models.WorkItemStatus, priority models.Priority) error {
	query := `
		UPDATE work_items
		SET status = ` + placeholder(1) + `, priority = ` + placeholder(2) + `, modified = ` + nowFunc(r.clock) + `
		WHERE id = ` + placeholder(3) + `
	`
	_, err := r.db.Exec(query, string(status), string(priority), id)
	return err
}
