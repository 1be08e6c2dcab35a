package dto

import "github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"

// CreateTimetableRequest carries the payload for POST /timetables.
type CreateTimetableRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=120"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	WorkingDays []string `json:"workingDays" binding:"omitempty,dive,required"`
	HoursPerDay int      `json:"hoursPerDay" binding:"omitempty,min=1,max=12"`
}

// UpdateTimetableRequest carries a partial update of timetable settings.
// Changing workingDays or hoursPerDay resets the stored schedule.
type UpdateTimetableRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	WorkingDays *[]string `json:"workingDays" binding:"omitempty,dive,required"`
	HoursPerDay *int      `json:"hoursPerDay" binding:"omitempty,min=1,max=12"`
}

// UpdateSlotRequest assigns or clears a single cell in the schedule grid.
// Setting both fields to null frees the slot.
type UpdateSlotRequest struct {
	CourseID *string `json:"courseId" binding:"omitempty,uuid"`
	StaffID  *string `json:"staffId" binding:"omitempty,uuid"`
}

// GenerateScheduleResponse wraps a freshly generated timetable together
// with diagnostics describing unmet demand.
type GenerateScheduleResponse struct {
	Timetable   models.Timetable    `json:"timetable"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// TimetableListQuery captures query parameters for GET /timetables.
type TimetableListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
