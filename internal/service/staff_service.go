package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

type staffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id string) (*models.Staff, error)
	GetByEmail(ctx context.Context, email string) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id string) error
	HasCourse(ctx context.Context, staffID, courseID string) (bool, error)
	AssignCourse(ctx context.Context, staffID, courseID string) error
	RemoveCourse(ctx context.Context, staffID, courseID string) error
}

type staffCourseReader interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

// StaffService handles staff domain workflows including course assignments.
type StaffService struct {
	repo      staffRepository
	courses   staffCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(repo staffRepository, courses staffCourseReader, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns paginated staff.
func (s *StaffService) List(ctx context.Context, query dto.StaffListQuery) ([]models.Staff, *models.Pagination, error) {
	filter := models.StaffFilter{Search: query.Search, Page: query.Page, PageSize: query.PageSize}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a staff member by identifier.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return staff, nil
}

// Create adds a new staff member ensuring email uniqueness. Any initial
// course ids must reference existing courses.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest) (*models.Staff, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateDays(req.AvailableDays); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff email already exists")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff email")
	}

	for _, courseID := range req.CourseIDs {
		if _, err := s.courses.GetByID(ctx, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "course "+courseID+" does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
		}
	}

	staff := &models.Staff{
		Name:                 strings.TrimSpace(req.Name),
		Email:                email,
		Designation:          req.Designation,
		AvailableDays:        req.AvailableDays,
		AvailableHoursPerDay: req.AvailableHoursPerDay,
		CourseIDs:            req.CourseIDs,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	return staff, nil
}

// Update modifies an existing staff member.
func (s *StaffService) Update(ctx context.Context, id string, req dto.UpdateStaffRequest) (*models.Staff, error) {
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != staff.Email {
			if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
				return nil, appErrors.Clone(appErrors.ErrConflict, "staff email already exists")
			} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff email")
			}
		}
		staff.Email = email
	}
	if req.Name != nil {
		staff.Name = strings.TrimSpace(*req.Name)
	}
	if req.Designation != nil {
		staff.Designation = req.Designation
	}
	if req.AvailableDays != nil {
		if err := validateDays(*req.AvailableDays); err != nil {
			return nil, err
		}
		staff.AvailableDays = *req.AvailableDays
	}
	if req.AvailableHoursPerDay != nil {
		staff.AvailableHoursPerDay = *req.AvailableHoursPerDay
	}

	if err := s.repo.Update(ctx, staff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return staff, nil
}

// Delete removes a staff member and their course links.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff member")
	}
	return nil
}

// AssignCourse links a staff member to a course they can teach.
func (s *StaffService) AssignCourse(ctx context.Context, staffID string, req dto.AssignCourseRequest) (*models.Staff, error) {
	if _, err := s.Get(ctx, staffID); err != nil {
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	exists, err := s.repo.HasCourse(ctx, staffID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already assigned to staff member")
	}

	if err := s.repo.AssignCourse(ctx, staffID, req.CourseID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign course")
	}
	return s.Get(ctx, staffID)
}

// RemoveCourse unlinks a course from a staff member.
func (s *StaffService) RemoveCourse(ctx context.Context, staffID, courseID string) (*models.Staff, error) {
	if _, err := s.Get(ctx, staffID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveCourse(ctx, staffID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course is not assigned to staff member")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove course assignment")
	}
	return s.Get(ctx, staffID)
}
