package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Slot is one bookable hour-span within a working day. A slot is either
// unassigned (both references nil) or carries a full teaching assignment
// (both references set); the generator never leaves it half-filled.
type Slot struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	CourseID *string `json:"course_id,omitempty"`
	StaffID  *string `json:"staff_id,omitempty"`
}

// Assigned reports whether the slot holds a teaching assignment.
func (s Slot) Assigned() bool {
	return s.CourseID != nil && s.StaffID != nil
}

// DaySchedule holds the ordered slot sequence for a single working day.
type DaySchedule struct {
	Day   string `json:"day"`
	Slots []Slot `json:"slots"`
}

// ScheduleGrid is the full weekly grid, one DaySchedule per working day.
// It is persisted as a JSONB document and replaced wholesale by each
// generation run.
type ScheduleGrid struct {
	Days []DaySchedule `json:"days"`
}

// Value marshals the grid to JSON for persistence.
func (g ScheduleGrid) Value() (driver.Value, error) {
	if g.Days == nil {
		g.Days = []DaySchedule{}
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule grid: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the grid.
func (g *ScheduleGrid) Scan(value interface{}) error {
	if value == nil {
		*g = ScheduleGrid{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScheduleGrid", value)
	}
	if len(data) == 0 {
		*g = ScheduleGrid{}
		return nil
	}
	if err := json.Unmarshal(data, g); err != nil {
		return fmt.Errorf("unmarshal schedule grid: %w", err)
	}
	return nil
}

// Timetable is a named weekly timetable configuration plus its generated grid.
// Version backs the optimistic write check that serialises concurrent
// generation runs for the same timetable.
type Timetable struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	WorkingDays pq.StringArray `db:"working_days" json:"working_days"`
	HoursPerDay int            `db:"hours_per_day" json:"hours_per_day"`
	Schedule    ScheduleGrid   `db:"schedule" json:"schedule"`
	Version     int            `db:"version" json:"version"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// TimetableFilter captures filtering options for listing timetables.
type TimetableFilter struct {
	Search   string
	Page     int
	PageSize int
}

// DiagnosticType classifies generation diagnostics.
type DiagnosticType string

const (
	// DiagnosticNoStaffAssigned flags a course with an empty qualified-staff set.
	DiagnosticNoStaffAssigned DiagnosticType = "NO_STAFF_ASSIGNED"
	// DiagnosticShortfall flags a course that received fewer hours than requested.
	DiagnosticShortfall DiagnosticType = "SHORTFALL"
	// DiagnosticSlotsTruncated flags an hoursPerDay exceeding the canonical slot list.
	DiagnosticSlotsTruncated DiagnosticType = "SLOTS_TRUNCATED"
)

// Diagnostic records an advisory condition observed during generation.
// Diagnostics are data, never errors: partial scheduling is an accepted
// outcome and callers decide how to present it.
type Diagnostic struct {
	Type          DiagnosticType `json:"type"`
	CourseID      string         `json:"course_id,omitempty"`
	CourseName    string         `json:"course_name,omitempty"`
	HoursRequired int            `json:"hours_required,omitempty"`
	HoursAssigned int            `json:"hours_assigned,omitempty"`
	Message       string         `json:"message"`
}
