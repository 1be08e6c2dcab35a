package dto

// CreateCourseRequest carries the payload for POST /courses.
type CreateCourseRequest struct {
	Name          string   `json:"name" binding:"required,min=1,max=120"`
	Code          string   `json:"code" binding:"required,min=1,max=32"`
	HoursPerWeek  int      `json:"hoursPerWeek" binding:"required,min=1,max=48"`
	PreferredDays []string `json:"preferredDays" binding:"omitempty,dive,required"`
}

// UpdateCourseRequest carries a partial update. Nil fields are left untouched.
type UpdateCourseRequest struct {
	Name          *string   `json:"name" binding:"omitempty,min=1,max=120"`
	Code          *string   `json:"code" binding:"omitempty,min=1,max=32"`
	HoursPerWeek  *int      `json:"hoursPerWeek" binding:"omitempty,min=1,max=48"`
	PreferredDays *[]string `json:"preferredDays" binding:"omitempty,dive,required"`
}

// CourseListQuery captures query parameters for GET /courses.
type CourseListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
