package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/repository"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

type timetableRepository interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	Update(ctx context.Context, timetable *models.Timetable) error
	ReplaceSchedule(ctx context.Context, id string, schedule models.ScheduleGrid, fromVersion int) (int, error)
	Delete(ctx context.Context, id string) error
}

type generatorCourseSource interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type generatorStaffSource interface {
	ListAll(ctx context.Context) ([]models.Staff, error)
}

// TimetableService handles timetable workflows including schedule generation.
type TimetableService struct {
	repo      timetableRepository
	courses   generatorCourseSource
	staff     generatorStaffSource
	cache     *CacheService
	metrics   *MetricsService
	opts      GeneratorOptions
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	repo timetableRepository,
	courses generatorCourseSource,
	staff generatorStaffSource,
	cache *CacheService,
	metrics *MetricsService,
	opts GeneratorOptions,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		courses:   courses,
		staff:     staff,
		cache:     cache,
		metrics:   metrics,
		opts:      opts,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated timetables.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableListQuery) ([]models.Timetable, *models.Pagination, error) {
	filter := models.TimetableFilter{Search: query.Search, Page: query.Page, PageSize: query.PageSize}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
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

// Get returns a timetable by identifier, served from cache when
// possible. The boolean reports whether the cache satisfied the read.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, bool, error) {
	key := repository.TimetableKey(id)
	var cached models.Timetable
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	timetable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	_ = s.cache.Set(ctx, key, timetable, 0)
	return timetable, false, nil
}

// Create adds a new timetable with an empty schedule grid. Omitted
// settings fall back to a Monday to Friday week with a full slot day.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := validateDays(req.WorkingDays); err != nil {
		return nil, err
	}

	workingDays := req.WorkingDays
	if len(workingDays) == 0 {
		workingDays = models.DefaultWorkingDays
	}
	hoursPerDay := req.HoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = len(canonicalSlots)
	}

	timetable := &models.Timetable{
		Name:        req.Name,
		Description: req.Description,
		WorkingDays: workingDays,
		HoursPerDay: hoursPerDay,
		Schedule:    emptyGrid(workingDays, hoursPerDay),
	}
	if err := s.repo.Create(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return timetable, nil
}

// Update modifies timetable settings. A change to the grid shape resets
// the stored schedule because existing placements no longer fit.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.UpdateTimetableRequest) (*models.Timetable, error) {
	timetable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	reshape := false
	if req.Name != nil {
		timetable.Name = *req.Name
	}
	if req.Description != nil {
		timetable.Description = *req.Description
	}
	if req.WorkingDays != nil {
		if err := validateDays(*req.WorkingDays); err != nil {
			return nil, err
		}
		if len(*req.WorkingDays) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "workingDays must not be empty")
		}
		timetable.WorkingDays = *req.WorkingDays
		reshape = true
	}
	if req.HoursPerDay != nil {
		timetable.HoursPerDay = *req.HoursPerDay
		reshape = true
	}
	if reshape {
		timetable.Schedule = emptyGrid(timetable.WorkingDays, timetable.HoursPerDay)
	}

	if err := s.repo.Update(ctx, timetable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}

	s.invalidate(ctx, id)
	return timetable, nil
}

// Delete removes a timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdateSlot assigns or clears one cell of the stored grid by position.
func (s *TimetableService) UpdateSlot(ctx context.Context, id string, dayIndex, slotIndex int, req dto.UpdateSlotRequest) (*models.Timetable, error) {
	if (req.CourseID == nil) != (req.StaffID == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId and staffId must be set together or both omitted")
	}

	timetable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if dayIndex < 0 || dayIndex >= len(timetable.Schedule.Days) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("dayIndex %d out of range", dayIndex))
	}
	day := &timetable.Schedule.Days[dayIndex]
	if slotIndex < 0 || slotIndex >= len(day.Slots) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slotIndex %d out of range", slotIndex))
	}

	day.Slots[slotIndex].CourseID = req.CourseID
	day.Slots[slotIndex].StaffID = req.StaffID

	if err := s.repo.Update(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable slot")
	}
	s.invalidate(ctx, id)
	return timetable, nil
}

// Generate runs one greedy scheduling pass over the current course and
// staff data and replaces the timetable's grid. Concurrent runs against
// the same timetable are serialised by an optimistic version check, the
// loser receives a conflict.
func (s *TimetableService) Generate(ctx context.Context, id string) (*dto.GenerateScheduleResponse, error) {
	timetable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses defined, add courses before generating")
	}

	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	if len(staff) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no staff defined, add staff before generating")
	}

	start := time.Now()
	result, err := GenerateTimetable(GenerateRequest{
		WorkingDays: timetable.WorkingDays,
		HoursPerDay: timetable.HoursPerDay,
		Courses:     courses,
		Staff:       staff,
	}, s.opts)
	if err != nil {
		s.metrics.ObserveGeneration("error", time.Since(start), 0, 0)
		return nil, err
	}

	newVersion, err := s.repo.ReplaceSchedule(ctx, id, result.Grid, timetable.Version)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.ObserveGeneration("conflict", time.Since(start), 0, 0)
			return nil, appErrors.Clone(appErrors.ErrConflict, "timetable was regenerated concurrently, retry with the latest version")
		}
		s.metrics.ObserveGeneration("error", time.Since(start), 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store generated schedule")
	}

	shortfall := 0
	unassignable := 0
	for _, d := range result.Diagnostics {
		switch d.Type {
		case models.DiagnosticShortfall:
			shortfall += d.HoursRequired - d.HoursAssigned
		case models.DiagnosticNoStaffAssigned:
			unassignable++
		}
	}
	outcome := "complete"
	if shortfall > 0 || unassignable > 0 {
		outcome = "partial"
	}
	s.metrics.ObserveGeneration(outcome, time.Since(start), shortfall, unassignable)

	s.logger.Info("schedule generated",
		zap.String("timetable_id", id),
		zap.Int("version", newVersion),
		zap.String("outcome", outcome),
		zap.Int("diagnostics", len(result.Diagnostics)))

	timetable.Schedule = result.Grid
	timetable.Version = newVersion
	timetable.UpdatedAt = time.Now().UTC()

	s.invalidate(ctx, id)
	return &dto.GenerateScheduleResponse{Timetable: *timetable, Diagnostics: result.Diagnostics}, nil
}

func (s *TimetableService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, repository.TimetablePattern(id)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.String("timetable_id", id), zap.Error(err))
	}
}
