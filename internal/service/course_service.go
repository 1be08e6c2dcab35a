package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseService handles course domain workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// validateDays rejects day labels outside the supported enumeration.
func validateDays(days []string) error {
	for _, day := range days {
		if !models.IsWeekDay(day) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
		}
	}
	return nil
}

// List returns paginated courses.
func (s *CourseService) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error) {
	filter := models.CourseFilter{Search: query.Search, Page: query.Page, PageSize: query.PageSize}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course ensuring code uniqueness. An omitted
// preferredDays list defaults to the standard working week.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := validateDays(req.PreferredDays); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}

	preferred := req.PreferredDays
	if len(preferred) == 0 {
		preferred = models.DefaultWorkingDays
	}

	course := &models.Course{
		Name:          strings.TrimSpace(req.Name),
		Code:          req.Code,
		HoursPerWeek:  req.HoursPerWeek,
		PreferredDays: preferred,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != course.Code {
			if existing, err := s.repo.GetByCode(ctx, code); err == nil && existing != nil {
				return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
			} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
			}
		}
		course.Code = code
	}
	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.HoursPerWeek != nil {
		course.HoursPerWeek = *req.HoursPerWeek
	}
	if req.PreferredDays != nil {
		if err := validateDays(*req.PreferredDays); err != nil {
			return nil, err
		}
		course.PreferredDays = *req.PreferredDays
	}

	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course together with its staff links. Existing
// schedules keep any slots referencing the removed course until the
// next generation run replaces them.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
