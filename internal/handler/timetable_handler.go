package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/middleware"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/service"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/response"
)

// TimetableHandler handles timetable endpoints including generation.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableListQuery
	query.Search, query.Page, query.PageSize = parseListQuery(c)

	records, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get timetable by id
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, fromCache, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, fromCache)
	response.JSON(c, http.StatusOK, timetable, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timetable, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Update godoc
// @Summary Update timetable settings
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.UpdateTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req dto.UpdateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timetable, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Generate a schedule for the timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateSlot godoc
// @Summary Assign or clear one schedule slot
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param dayIndex path int true "Day index"
// @Param slotIndex path int true "Slot index"
// @Param payload body dto.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/slots/{dayIndex}/{slotIndex} [put]
func (h *TimetableHandler) UpdateSlot(c *gin.Context) {
	dayIndex, err := strconv.Atoi(c.Param("dayIndex"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayIndex must be an integer"))
		return
	}
	slotIndex, err := strconv.Atoi(c.Param("slotIndex"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slotIndex must be an integer"))
		return
	}
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	timetable, err := h.service.UpdateSlot(c.Request.Context(), c.Param("id"), dayIndex, slotIndex, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}
