package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/service"
)

// Handler bundles the HTTP handlers for the inspection API
type Handler struct {
	checklists service.ChecklistService
	fatigue    service.FatigueService
	reviews    service.ReviewService
	registry   service.RegistryService
	log        *logrus.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	checklists service.ChecklistService,
	fatigue service.FatigueService,
	reviews service.ReviewService,
	registry service.RegistryService,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		checklists: checklists,
		fatigue:    fatigue,
		reviews:    reviews,
		registry:   registry,
		log:        log,
	}
}

// ListResponse wraps a paginated listing
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// listFilterFromQuery builds a repository filter from query parameters
func listFilterFromQuery(c *gin.Context) repository.ListFilter {
	filter := repository.ListFilter{
		Bucket:   repository.Bucket(c.DefaultQuery("bucket", string(repository.BucketPending))),
		Search:   c.Query("search"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	return filter
}

// SubmitChecklist handles a checklist submission
func (h *Handler) SubmitChecklist(c *gin.Context) {
	var req service.SubmitChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid checklist request body")
		respondError(c, NewValidationError(err.Error()))
		return
	}

	if user := currentUser(c); user != nil {
		req.CreatedBy = user.UUID
	}

	record, err := h.checklists.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetChecklist returns one inspection record with its answers
func (h *Handler) GetChecklist(c *gin.Context) {
	record, err := h.checklists.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListChecklists returns inspection records for a review bucket
func (h *Handler) ListChecklists(c *gin.Context) {
	records, total, err := h.checklists.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: records, Total: total})
}

// SearchChecklists runs a free-text query against the search index
func (h *Handler) SearchChecklists(c *gin.Context) {
	text := c.Query("q")
	if text == "" {
		respondError(c, NewValidationError("query parameter q is required"))
		return
	}

	limit := 20
	if parsed, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && parsed > 0 {
		limit = parsed
	}

	docs, err := h.checklists.Search(c.Request.Context(), text, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: docs, Total: int64(len(docs))})
}

// ApproveChecklist approves a pending inspection record
func (h *Handler) ApproveChecklist(c *gin.Context) {
	h.reviewChecklist(c, true)
}

// RejectChecklist rejects a pending inspection record
func (h *Handler) RejectChecklist(c *gin.Context) {
	h.reviewChecklist(c, false)
}

func (h *Handler) reviewChecklist(c *gin.Context, approve bool) {
	user := currentUser(c)
	if user == nil {
		respondError(c, ErrUnauthorized)
		return
	}

	record, err := h.reviews.ReviewChecklist(c.Request.Context(), c.Param("id"), approve, user.UUID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// VehicleFindingsReport aggregates reviewed defect counts per vehicle
func (h *Handler) VehicleFindingsReport(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	findings, err := h.checklists.FindingsByVehicle(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, findings)
}

// SubmitFatigue handles a fatigue declaration submission
func (h *Handler) SubmitFatigue(c *gin.Context) {
	var req service.SubmitFatigueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid fatigue request body")
		respondError(c, NewValidationError(err.Error()))
		return
	}

	if user := currentUser(c); user != nil {
		req.CreatedBy = user.UUID
	}

	declaration, err := h.fatigue.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, declaration)
}

// GetFatigue returns one fatigue declaration with its responses
func (h *Handler) GetFatigue(c *gin.Context) {
	declaration, err := h.fatigue.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, declaration)
}

// ListFatigue returns fatigue declarations for a review bucket
func (h *Handler) ListFatigue(c *gin.Context) {
	declarations, total, err := h.fatigue.List(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: declarations, Total: total})
}

// ApproveFatigue approves a pending fatigue declaration
func (h *Handler) ApproveFatigue(c *gin.Context) {
	h.reviewFatigue(c, true)
}

// RejectFatigue rejects a pending fatigue declaration
func (h *Handler) RejectFatigue(c *gin.Context) {
	h.reviewFatigue(c, false)
}

func (h *Handler) reviewFatigue(c *gin.Context, approve bool) {
	user := currentUser(c)
	if user == nil {
		respondError(c, ErrUnauthorized)
		return
	}

	declaration, err := h.reviews.ReviewFatigue(c.Request.Context(), c.Param("id"), approve, user.UUID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, declaration)
}

// CreateDriver registers a driver
func (h *Handler) CreateDriver(c *gin.Context) {
	var req service.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, NewValidationError(err.Error()))
		return
	}

	driver, err := h.registry.CreateDriver(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, driver)
}

// UpdateDriver renames a driver
func (h *Handler) UpdateDriver(c *gin.Context) {
	var req service.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, NewValidationError(err.Error()))
		return
	}

	driver, err := h.registry.UpdateDriver(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

// DeleteDriver removes a driver
func (h *Handler) DeleteDriver(c *gin.Context) {
	if err := h.registry.DeleteDriver(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDrivers returns all registered drivers
func (h *Handler) ListDrivers(c *gin.Context) {
	drivers, err := h.registry.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// CreateVehicle registers a vehicle
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, NewValidationError(err.Error()))
		return
	}

	vehicle, err := h.registry.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// UpdateVehicle updates a registered vehicle
func (h *Handler) UpdateVehicle(c *gin.Context) {
	var vehicle model.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		respondError(c, NewValidationError(err.Error()))
		return
	}
	vehicle.UUID = c.Param("id")

	updated, err := h.registry.UpdateVehicle(c.Request.Context(), &vehicle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteVehicle removes a vehicle
func (h *Handler) DeleteVehicle(c *gin.Context) {
	if err := h.registry.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListVehicles returns all registered vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.registry.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicleByNumber resolves a vehicle by internal number, used by the
// submission form to prefill the vehicle snapshot
func (h *Handler) GetVehicleByNumber(c *gin.Context) {
	vehicle, err := h.registry.GetVehicleByInternalNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// Catalog returns the fixed checklist catalog grouped by section
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections":  model.Sections,
		"questions": model.FatigueQuestions,
	})
}

// HealthCheck reports service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.GetMetricsCollector().GetHealthStatus())
}

// Metrics exposes the collected metrics snapshot
func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.GetMetricsCollector().GetMetrics())
}
