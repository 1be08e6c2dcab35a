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

// StaffRepository handles staff persistence including course assignments
// stored in the staff_courses join table.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `s.id, s.name, s.email, s.designation, s.available_days, s.available_hours_per_day,
       COALESCE(ARRAY_AGG(sc.course_id ORDER BY sc.assigned_at) FILTER (WHERE sc.course_id IS NOT NULL), '{}') AS course_ids,
       s.created_at, s.updated_at`

// Create inserts a new staff row together with any initial course links.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin staff create: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO staff
	(id, name, email, designation, available_days, available_hours_per_day, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query,
		staff.ID, staff.Name, staff.Email, staff.Designation,
		staff.AvailableDays, staff.AvailableHoursPerDay, staff.CreatedAt, staff.UpdatedAt); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	for _, courseID := range staff.CourseIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff_courses (staff_id, course_id, assigned_at) VALUES ($1, $2, $3)`,
			staff.ID, courseID, now); err != nil {
			return fmt.Errorf("link staff course: %w", err)
		}
	}
	return tx.Commit()
}

// GetByID retrieves one staff member with their course ids aggregated.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + `
	FROM staff s
	LEFT JOIN staff_courses sc ON sc.staff_id = s.id
	WHERE s.id = $1
	GROUP BY s.id`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetByEmail retrieves a staff member by their unique email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + `
	FROM staff s
	LEFT JOIN staff_courses sc ON sc.staff_id = s.id
	WHERE s.email = $1
	GROUP BY s.id`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns a page of staff plus the unfiltered total.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.email ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM staff s"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := `SELECT ` + staffColumns + `
	FROM staff s
	LEFT JOIN staff_courses sc ON sc.staff_id = s.id` + where +
		fmt.Sprintf(" GROUP BY s.id ORDER BY s.created_at ASC LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	var records []models.Staff
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	return records, total, nil
}

// ListAll returns every staff member with their course ids, ordered by
// creation time. The generator consumes this ordering so repeated runs
// pick the same first qualified staff member.
func (r *StaffRepository) ListAll(ctx context.Context) ([]models.Staff, error) {
	query := `SELECT ` + staffColumns + `
	FROM staff s
	LEFT JOIN staff_courses sc ON sc.staff_id = s.id
	GROUP BY s.id
	ORDER BY s.created_at ASC, s.id ASC`
	var records []models.Staff
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all staff: %w", err)
	}
	return records, nil
}

// Update persists mutable staff fields. Course links are managed through
// AssignCourse and RemoveCourse.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET
	name = $2, email = $3, designation = $4, available_days = $5,
	available_hours_per_day = $6, updated_at = $7
	WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.Name, staff.Email, staff.Designation,
		staff.AvailableDays, staff.AvailableHoursPerDay, staff.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check staff update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a staff member and their course links.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin staff delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_courses WHERE staff_id = $1`, id); err != nil {
		return fmt.Errorf("delete staff links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check staff delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// HasCourse reports whether the staff member is already linked to the course.
func (r *StaffRepository) HasCourse(ctx context.Context, staffID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM staff_courses WHERE staff_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, staffID, courseID); err != nil {
		return false, fmt.Errorf("check staff course link: %w", err)
	}
	return exists, nil
}

// AssignCourse links a staff member to a course.
func (r *StaffRepository) AssignCourse(ctx context.Context, staffID, courseID string) error {
	const query = `INSERT INTO staff_courses (staff_id, course_id, assigned_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, staffID, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign staff course: %w", err)
	}
	return nil
}

// RemoveCourse unlinks a staff member from a course.
func (r *StaffRepository) RemoveCourse(ctx context.Context, staffID, courseID string) error {
	const query = `DELETE FROM staff_courses WHERE staff_id = $1 AND course_id = $2`
	res, err := r.db.ExecContext(ctx, query, staffID, courseID)
	if err != nil {
		return fmt.Errorf("remove staff course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check staff course removal: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
