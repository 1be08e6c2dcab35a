package models

// WeekDays enumerates the supported day labels in calendar order. Every
// workingDays, preferredDays, and availableDays value is a subset of this list.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DefaultWorkingDays is the day set applied when a timetable or course leaves
// its day list unset: every enumerated day except the last one (Saturday).
var DefaultWorkingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// IsWeekDay reports whether the label is part of the day enumeration.
func IsWeekDay(day string) bool {
	for _, d := range WeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// Pagination summarises a paged collection response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
