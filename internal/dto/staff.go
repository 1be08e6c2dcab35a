package dto

// CreateStaffRequest carries the payload for POST /staff.
type CreateStaffRequest struct {
	Name                 string   `json:"name" binding:"required,min=1,max=120"`
	Email                string   `json:"email" binding:"required,email"`
	Designation          *string  `json:"designation" binding:"omitempty,max=80"`
	AvailableDays        []string `json:"availableDays" binding:"omitempty,dive,required"`
	AvailableHoursPerDay int      `json:"availableHoursPerDay" binding:"omitempty,min=1,max=12"`
	CourseIDs            []string `json:"courseIds" binding:"omitempty,dive,uuid"`
}

// UpdateStaffRequest carries a partial update. Nil fields are left untouched.
type UpdateStaffRequest struct {
	Name                 *string   `json:"name" binding:"omitempty,min=1,max=120"`
	Email                *string   `json:"email" binding:"omitempty,email"`
	Designation          *string   `json:"designation" binding:"omitempty,max=80"`
	AvailableDays        *[]string `json:"availableDays" binding:"omitempty,dive,required"`
	AvailableHoursPerDay *int      `json:"availableHoursPerDay" binding:"omitempty,min=1,max=12"`
}

// AssignCourseRequest links a staff member to a course they can teach.
type AssignCourseRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
}

// StaffListQuery captures query parameters for GET /staff.
type StaffListQuery struct {
	Search   string `form:"search"`
	CourseID string `form:"courseId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
