package handler

import (
	"net/http"

	"rptas/internal/middleware"
	"rptas/internal/model"
	"rptas/internal/service"
	"rptas/pkg/pagination"
	"rptas/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecordHandler struct {
	recordService service.RecordService
}

func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

func (h *RecordHandler) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/api/records")
	records.Use(middleware.RequireAuth())
	{
		records.GET("/:kind", h.ListRecords)
		records.POST("/:kind", h.CreateRecord)
		records.GET("/:kind/:id", h.GetRecord)
		records.PUT("/:kind/:id", h.UpdateRecord)
		records.DELETE("/:kind/:id", h.DeleteRecord)
	}
}

func (h *RecordHandler) listFilter(c *gin.Context) service.ListRecordsFilter {
	params := pagination.Parse(c)
	return service.ListRecordsFilter{
		Municipality: c.Query("municipality"),
		Status:       c.Query("status"),
		Mine:         c.Query("mine") == "true",
		Page:         params.Page,
		Limit:        params.Limit,
	}
}

// ListRecords returns paginated records of one kind.
// @Summary      List assessment records
// @Tags         records
// @Security     BearerAuth
// @Param        kind          path   string  true   "Record kind (building|land)"
// @Param        municipality  query  string  false  "Municipality filter"
// @Param        status        query  string  false  "Status filter"
// @Param        mine          query  bool    false  "Only records created by the caller"
// @Param        page          query  int     false  "Page number (default 1)"
// @Param        limit         query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response
// @Router       /api/records/{kind} [get]
func (h *RecordHandler) ListRecords(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	actorID := c.GetString(middleware.CtxUserID)
	filter := h.listFilter(c)

	var data interface{}
	var total int64
	var err error
	switch kind {
	case model.KindBuilding:
		data, total, err = h.recordService.ListBuildings(c.Request.Context(), actorID, filter)
	case model.KindLand:
		data, total, err = h.recordService.ListLands(c.Request.Context(), actorID, filter)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{
		"records": data,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	}))
}

// CreateRecord creates a draft record of the given kind.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	actorID := c.GetString(middleware.CtxUserID)

	switch kind {
	case model.KindBuilding:
		var req service.BuildingRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid request body: "+err.Error()))
			return
		}
		rec, err := h.recordService.CreateBuilding(c.Request.Context(), actorID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.Success(rec))
	case model.KindLand:
		var req service.LandRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid request body: "+err.Error()))
			return
		}
		rec, err := h.recordService.CreateLand(c.Request.Context(), actorID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.Success(rec))
	}
}

// GetRecord returns one record by kind and id.
func (h *RecordHandler) GetRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actorID := c.GetString(middleware.CtxUserID)

	var data interface{}
	var err error
	switch kind {
	case model.KindBuilding:
		data, err = h.recordService.GetBuilding(c.Request.Context(), actorID, id)
	case model.KindLand:
		data, err = h.recordService.GetLand(c.Request.Context(), actorID, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(data))
}

// UpdateRecord replaces the editable fields of a draft or returned record.
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actorID := c.GetString(middleware.CtxUserID)

	switch kind {
	case model.KindBuilding:
		var req service.BuildingRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid request body: "+err.Error()))
			return
		}
		rec, err := h.recordService.UpdateBuilding(c.Request.Context(), actorID, id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(rec))
	case model.KindLand:
		var req service.LandRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error("Invalid request body: "+err.Error()))
			return
		}
		rec, err := h.recordService.UpdateLand(c.Request.Context(), actorID, id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(rec))
	}
}

// DeleteRecord removes a draft record.
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actorID := c.GetString(middleware.CtxUserID)

	if err := h.recordService.Delete(c.Request.Context(), actorID, kind, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"deleted": id}))
}
