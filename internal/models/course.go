package models

import (
	"time"

	"github.com/lib/pq"
)

// Course represents a taught course and its weekly demand.
type Course struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Code          string         `db:"code" json:"code"`
	HoursPerWeek  int            `db:"hours_per_week" json:"hours_per_week"`
	PreferredDays pq.StringArray `db:"preferred_days" json:"preferred_days"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
