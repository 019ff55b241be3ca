package repository

import (
	"database/sql"
	"strings"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// DeadlineMarkerRepository persists which reminder thresholds have already
// fired. The unique index on (case_id, deadline_kind, threshold_days)
// means overlapping scheduler ticks cannot record the same threshold
// twice even if both pass the HasFired check.
type DeadlineMarkerRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewDeadlineMarkerRepository(db *sql.DB, clock core.Clock) *DeadlineMarkerRepository {
	return &DeadlineMarkerRepository{db: db, clock: clock}
}

func (r *DeadlineMarkerRepository) HasFired(caseID int64, kind models.DeadlineKind, thresholdDays int) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM deadline_markers
		WHERE case_id = ` + placeholder(1) + ` AND deadline_kind = ` + placeholder(2) + ` AND threshold_days = ` + placeholder(3) + `
	`
	var count int
	if err := r.db.QueryRow(query, caseID, string(kind), thresholdDays).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DeadlineMarkerRepository) Save(m *domain.DeadlineMarker) (int64, error) {
	vals := []interface{}{
		m.CaseID, string(m.DeadlineKind), m.ThresholdDays, formatDateInDatabase(m.NotifiedAt),
	}
	pps := make([]string, 0, len(vals))
	for i := range vals {
		pps = append(pps, placeholder(i+1))
	}
	base := `INSERT INTO deadline_markers (
		case_id, deadline_kind, threshold_days, notified_at
	) VALUES (` + strings.Join(pps, ", ") + `)`
	var err error
	if supportsReturning() {
		query := base + " RETURNING id"
		err = r.db.QueryRow(query, vals...).Scan(&m.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			id, e2 := res.LastInsertId()
			if e2 != nil {
				err = e2
			} else {
				m.ID = id
			}
		}
	}
	return m.ID, err
}

func (r *DeadlineMarkerRepository) FindAllByCaseID(caseID int64) (*[]domain.DeadlineMarker, error) {
	query := `
		SELECT id, case_id, deadline_kind, threshold_days, notified_at
		FROM deadline_markers
		WHERE case_id = ` + placeholder(1) + `
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []domain.DeadlineMarker
	for rows.Next() {
		var m domain.DeadlineMarker
		if err := rows.Scan(&m.ID, &m.CaseID, &m.DeadlineKind, &m.ThresholdDays, &m.NotifiedAt); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return &markers, nil
}
