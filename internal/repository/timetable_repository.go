package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
)

// ErrVersionConflict is returned when an optimistic schedule write loses
// the race against a concurrent generation run.
var ErrVersionConflict = fmt.Errorf("timetable version conflict")

// TimetableRepository handles timetable persistence.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create inserts a new timetable row with an empty schedule grid.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now
	timetable.Version = 1
	const query = `INSERT INTO timetables
	(id, name, description, working_days, hours_per_day, schedule, version, created_at, updated_at)
	VALUES (:id, :name, :description, :working_days, :hours_per_day, :schedule, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// GetByID retrieves one timetable row including its stored grid.
func (r *TimetableRepository) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, name, description, working_days, hours_per_day, schedule, version, created_at, updated_at
	FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// List returns a page of timetables plus the unfiltered total.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	conditions := make([]string, 0, 1)
	args := make([]interface{}, 0, 1)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetables"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := `SELECT id, name, description, working_days, hours_per_day, schedule, version, created_at, updated_at
	FROM timetables` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	var records []models.Timetable
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	return records, total, nil
}

// Update persists timetable settings and the current grid.
func (r *TimetableRepository) Update(ctx context.Context, timetable *models.Timetable) error {
	timetable.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET
	name = :name, description = :description, working_days = :working_days,
	hours_per_day = :hours_per_day, schedule = :schedule, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, timetable)
	if err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check timetable update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceSchedule swaps in a freshly generated grid using an optimistic
// version check. The write succeeds only when the row still carries the
// version the generation run started from; otherwise ErrVersionConflict
// tells the caller a concurrent run won.
func (r *TimetableRepository) ReplaceSchedule(ctx context.Context, id string, schedule models.ScheduleGrid, fromVersion int) (int, error) {
	const query = `UPDATE timetables SET
	schedule = $3, version = version + 1, updated_at = $4
	WHERE id = $1 AND version = $2
	RETURNING version`
	var newVersion int
	err := r.db.GetContext(ctx, &newVersion, query, id, fromVersion, schedule, time.Now().UTC())
	if err == sql.ErrNoRows {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("replace timetable schedule: %w", err)
	}
	return newVersion, nil
}

// Delete removes a timetable.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check timetable delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
