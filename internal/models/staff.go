package models

import (
	"time"

	"github.com/lib/pq"
)

// Staff represents a staff member who can be scheduled to teach.
type Staff struct {
	ID                   string         `db:"id" json:"id"`
	Name                 string         `db:"name" json:"name"`
	Email                string         `db:"email" json:"email"`
	Designation          *string        `db:"designation" json:"designation,omitempty"`
	AvailableDays        pq.StringArray `db:"available_days" json:"available_days"`
	AvailableHoursPerDay int            `db:"available_hours_per_day" json:"available_hours_per_day"`
	CourseIDs            pq.StringArray `db:"course_ids" json:"course_ids"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// TeachesCourse reports whether the staff member is assigned to the course.
func (s Staff) TeachesCourse(courseID string) bool {
	for _, id := range s.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
