package service

import (
	"fmt"
	"sort"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

// canonicalSlots is the full ordered list of bookable hour spans in a day.
// A timetable's hoursPerDay selects a prefix of this list.
var canonicalSlots = []models.Slot{
	{Start: "08:00", End: "09:00"},
	{Start: "09:00", End: "10:00"},
	{Start: "10:00", End: "11:00"},
	{Start: "11:00", End: "12:00"},
	{Start: "12:00", End: "13:00"},
	{Start: "13:00", End: "14:00"},
	{Start: "14:00", End: "15:00"},
	{Start: "15:00", End: "16:00"},
}

// GenerateRequest bundles the inputs of one generation run. Slices keep
// the order they were loaded in; the algorithm relies on that order to
// stay deterministic.
type GenerateRequest struct {
	WorkingDays []string
	HoursPerDay int
	Courses     []models.Course
	Staff       []models.Staff
}

// GeneratorOptions tunes placement behaviour.
type GeneratorOptions struct {
	// AllowConsecutiveSameCourse permits back-to-back slots of one course
	// on the same day. Disabling it forces a gap or another course between
	// repeated sessions.
	AllowConsecutiveSameCourse bool
}

// GenerateResult carries the produced grid plus advisory diagnostics.
type GenerateResult struct {
	Grid          models.ScheduleGrid
	Diagnostics   []models.Diagnostic
	HoursAssigned map[string]int
}

// staffUsage tracks one staff member's remaining weekly capacity during a run.
type staffUsage struct {
	staff         *models.Staff
	availableDays map[string]bool
	assignedHours int
	maxHours      int
}

func (u *staffUsage) canTeach(day string) bool {
	return u.availableDays[day] && u.assignedHours < u.maxHours
}

// staffCapacity computes a staff member's weekly hour ceiling. Unset
// availability falls back to the timetable's own settings, so a staff
// member with no stated constraints is treated as fully available.
func staffCapacity(s models.Staff, workingDays []string, hoursPerDay int) (days []string, maxHours int) {
	days = s.AvailableDays
	if len(days) == 0 {
		days = workingDays
	}
	perDay := s.AvailableHoursPerDay
	if perDay <= 0 {
		perDay = hoursPerDay
	}
	return days, perDay * len(days)
}

// GenerateTimetable runs one greedy, non-backtracking scheduling pass and
// returns a complete grid. Courses are placed in descending weekly-hour
// order, each confined to its preferred days; the full working week is
// used only when no preferred day is workable. A placement is final once
// made. Unmet demand is reported through diagnostics, never errors.
func GenerateTimetable(req GenerateRequest, opts GeneratorOptions) (*GenerateResult, error) {
	workingDays := req.WorkingDays
	if len(workingDays) == 0 {
		workingDays = models.DefaultWorkingDays
	}
	hoursPerDay := req.HoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = len(canonicalSlots)
	}

	diagnostics := make([]models.Diagnostic, 0)
	if hoursPerDay > len(canonicalSlots) {
		diagnostics = append(diagnostics, models.Diagnostic{
			Type:    models.DiagnosticSlotsTruncated,
			Message: fmt.Sprintf("hoursPerDay %d exceeds the %d available hour spans, extra hours are dropped", hoursPerDay, len(canonicalSlots)),
		})
		hoursPerDay = len(canonicalSlots)
	}

	grid := emptyGrid(workingDays, hoursPerDay)
	dayIndex := make(map[string]int, len(workingDays))
	for i, day := range workingDays {
		dayIndex[day] = i
	}

	usage := make([]*staffUsage, 0, len(req.Staff))
	for i := range req.Staff {
		s := &req.Staff[i]
		days, maxHours := staffCapacity(*s, workingDays, hoursPerDay)
		daySet := make(map[string]bool, len(days))
		for _, d := range days {
			daySet[d] = true
		}
		usage = append(usage, &staffUsage{staff: s, availableDays: daySet, maxHours: maxHours})
	}

	// Qualified staff per course, preserving input order for first-fit.
	courseStaff := make(map[string][]*staffUsage, len(req.Courses))
	for _, u := range usage {
		for _, courseID := range u.staff.CourseIDs {
			courseStaff[courseID] = append(courseStaff[courseID], u)
		}
	}

	ordered := make([]models.Course, len(req.Courses))
	copy(ordered, req.Courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].HoursPerWeek > ordered[j].HoursPerWeek
	})

	hoursAssigned := make(map[string]int, len(ordered))
	for _, course := range ordered {
		candidates := courseStaff[course.ID]
		if len(candidates) == 0 {
			diagnostics = append(diagnostics, models.Diagnostic{
				Type:          models.DiagnosticNoStaffAssigned,
				CourseID:      course.ID,
				CourseName:    course.Name,
				HoursRequired: course.HoursPerWeek,
				Message:       fmt.Sprintf("no staff assigned to course %s", course.Name),
			})
			continue
		}

		// A course is confined to its preferred days when any of them
		// fall inside the working week. Only a course with no usable
		// preferred day spreads over the whole week; unmet demand on
		// preferred days becomes a shortfall instead of spilling over.
		courseDays := intersectDays(course.PreferredDays, workingDays)
		if len(courseDays) == 0 {
			courseDays = workingDays
		}

		assigned := 0
		// Sweep the day order until the demand is met or a full sweep
		// places nothing, which means the days are exhausted.
		for assigned < course.HoursPerWeek {
			placed := 0
			for _, day := range courseDays {
				if assigned >= course.HoursPerWeek {
					break
				}
				di, ok := dayIndex[day]
				if !ok {
					continue
				}
				slots := grid.Days[di].Slots
				for si := range slots {
					if assigned >= course.HoursPerWeek {
						break
					}
					if slots[si].Assigned() {
						continue
					}
					if !opts.AllowConsecutiveSameCourse && si > 0 &&
						slots[si-1].CourseID != nil && *slots[si-1].CourseID == course.ID {
						continue
					}
					u := pickStaff(candidates, day)
					if u == nil {
						break
					}
					courseID := course.ID
					staffID := u.staff.ID
					slots[si].CourseID = &courseID
					slots[si].StaffID = &staffID
					u.assignedHours++
					assigned++
					placed++
				}
			}
			if placed == 0 {
				break
			}
		}

		hoursAssigned[course.ID] = assigned
		if assigned < course.HoursPerWeek {
			diagnostics = append(diagnostics, models.Diagnostic{
				Type:          models.DiagnosticShortfall,
				CourseID:      course.ID,
				CourseName:    course.Name,
				HoursRequired: course.HoursPerWeek,
				HoursAssigned: assigned,
				Message:       fmt.Sprintf("course %s received %d of %d requested hours", course.Name, assigned, course.HoursPerWeek),
			})
		}
	}

	if err := verifyGrid(grid, req.Staff, workingDays, hoursPerDay); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generated schedule violates placement rules")
	}

	return &GenerateResult{Grid: grid, Diagnostics: diagnostics, HoursAssigned: hoursAssigned}, nil
}

// emptyGrid builds an all-unassigned grid for the given shape.
func emptyGrid(workingDays []string, hoursPerDay int) models.ScheduleGrid {
	if hoursPerDay > len(canonicalSlots) {
		hoursPerDay = len(canonicalSlots)
	}
	days := make([]models.DaySchedule, len(workingDays))
	for i, day := range workingDays {
		slots := make([]models.Slot, hoursPerDay)
		for j := 0; j < hoursPerDay; j++ {
			slots[j] = models.Slot{Start: canonicalSlots[j].Start, End: canonicalSlots[j].End}
		}
		days[i] = models.DaySchedule{Day: day, Slots: slots}
	}
	return models.ScheduleGrid{Days: days}
}

// intersectDays keeps preferred days that are also working days, in
// preferred order.
func intersectDays(preferred, working []string) []string {
	if len(preferred) == 0 {
		return nil
	}
	workingSet := make(map[string]bool, len(working))
	for _, d := range working {
		workingSet[d] = true
	}
	out := make([]string, 0, len(preferred))
	for _, d := range preferred {
		if workingSet[d] {
			out = append(out, d)
		}
	}
	return out
}

// pickStaff returns the first qualified staff member who can still take
// an hour on the given day.
func pickStaff(candidates []*staffUsage, day string) *staffUsage {
	for _, u := range candidates {
		if u.canTeach(day) {
			return u
		}
	}
	return nil
}

// verifyGrid checks the structural invariants of a finished grid: shape,
// no half-filled slots, and no staff member exceeding their capacity.
func verifyGrid(grid models.ScheduleGrid, staff []models.Staff, workingDays []string, hoursPerDay int) error {
	if len(grid.Days) != len(workingDays) {
		return fmt.Errorf("grid has %d days, expected %d", len(grid.Days), len(workingDays))
	}

	limits := make(map[string]int, len(staff))
	for _, s := range staff {
		_, maxHours := staffCapacity(s, workingDays, hoursPerDay)
		limits[s.ID] = maxHours
	}

	loads := make(map[string]int)
	for _, day := range grid.Days {
		if len(day.Slots) != hoursPerDay {
			return fmt.Errorf("day %s has %d slots, expected %d", day.Day, len(day.Slots), hoursPerDay)
		}
		for _, slot := range day.Slots {
			if (slot.CourseID == nil) != (slot.StaffID == nil) {
				return fmt.Errorf("slot %s %s-%s is half-filled", day.Day, slot.Start, slot.End)
			}
			if slot.StaffID != nil {
				loads[*slot.StaffID]++
			}
		}
	}
	for staffID, load := range loads {
		if limit, ok := limits[staffID]; ok && load > limit {
			return fmt.Errorf("staff %s assigned %d hours, limit %d", staffID, load, limit)
		}
	}
	return nil
}
