package handler

import (
	"net/http"
	"strconv"

	"rptas/internal/middleware"
	"rptas/internal/model"
	"rptas/internal/service"
	"rptas/pkg/pagination"
	"rptas/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	queueService  service.QueueService
}

func NewReviewHandler(reviewService service.ReviewService, queueService service.QueueService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, queueService: queueService}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/api/records")
	records.Use(middleware.RequireAuth())
	{
		records.POST("/:kind/:id/submit", h.SubmitRecord)
		records.POST("/:kind/:id/review", h.ReviewRecord)
		records.GET("/:kind/:id/history", h.GetRecordHistory)
	}

	queue := router.Group("/api/review-queue")
	queue.Use(middleware.RequireAuth())
	{
		queue.GET("", h.GetQueue)
	}

	history := router.Group("/api/review-history")
	history.Use(middleware.RequireAuth())
	{
		history.GET("", h.ListHistory)
	}
}

// SubmitRecord moves a draft or returned record into the review queue.
// @Summary      Submit a record for review
// @Tags         review
// @Security     BearerAuth
// @Param        kind  path  string  true  "Record kind (building|land)"
// @Param        id    path  int     true  "Record id"
// @Success      200  {object}  response.Response{data=model.RecordSummary}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/records/{kind}/{id}/submit [post]
func (h *ReviewHandler) SubmitRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actorID := c.GetString(middleware.CtxUserID)
	updated, err := h.reviewService.PerformAction(c.Request.Context(), kind, id, actorID, model.ActionSubmit, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(updated))
}

type reviewActionRequest struct {
	Action string `json:"action" binding:"required,oneof=claim return approve"`
	Note   string `json:"note"`
}

// ReviewRecord performs one reviewer action (claim, return, approve).
// @Summary      Perform a review action
// @Tags         review
// @Security     BearerAuth
// @Param        kind     path  string               true  "Record kind (building|land)"
// @Param        id       path  int                  true  "Record id"
// @Param        request  body  reviewActionRequest  true  "Action payload"
// @Success      200  {object}  response.Response{data=model.RecordSummary}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/records/{kind}/{id}/review [post]
func (h *ReviewHandler) ReviewRecord(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Action must be one of claim, return, approve"))
		return
	}
	action, _ := model.ParseReviewAction(req.Action)

	actorID := c.GetString(middleware.CtxUserID)
	updated, err := h.reviewService.PerformAction(c.Request.Context(), kind, id, actorID, action, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(updated))
}

// GetQueue returns the role-and-municipality-scoped review queue.
// @Summary      Get the review queue
// @Description  Merged building and land records awaiting review, oldest submission first
// @Tags         review
// @Security     BearerAuth
// @Param        status  query  string  false  "Comma-separated status filter (default: submitted,under_review)"
// @Param        kind    query  string  false  "Restrict to one record kind"
// @Success      200  {object}  response.Response{data=[]model.RecordSummary}
// @Failure      403  {object}  response.Response
// @Router       /api/review-queue [get]
func (h *ReviewHandler) GetQueue(c *gin.Context) {
	var statuses []model.RecordStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range splitCSV(raw) {
			status, ok := model.ParseRecordStatus(part)
			if !ok {
				c.JSON(http.StatusBadRequest, response.Error("Unknown status '"+part+"'"))
				return
			}
			statuses = append(statuses, status)
		}
	}

	actorID := c.GetString(middleware.CtxUserID)
	items, err := h.queueService.GetQueue(c.Request.Context(), actorID, statuses, c.Query("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{
		"items": items,
		"total": len(items),
	}))
}

// ListHistory returns the audit trail across all records, newest first.
// With kind and id query parameters it narrows to one record.
func (h *ReviewHandler) ListHistory(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserID)

	if rawKind, rawID := c.Query("kind"), c.Query("id"); rawKind != "" && rawID != "" {
		kind, ok := model.ParseRecordKind(rawKind)
		if !ok {
			c.JSON(http.StatusBadRequest, response.Error("Unknown record kind '"+rawKind+"'"))
			return
		}
		id, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, response.Error("Invalid record id"))
			return
		}

		entries, err := h.reviewService.GetHistory(c.Request.Context(), kind, uint(id), actorID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(entries))
		return
	}

	params := pagination.Parse(c)
	entries, total, err := h.reviewService.ListHistory(c.Request.Context(), actorID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{
		"entries": entries,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetRecordHistory returns the audit trail of one record.
func (h *ReviewHandler) GetRecordHistory(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	actorID := c.GetString(middleware.CtxUserID)
	entries, err := h.reviewService.GetHistory(c.Request.Context(), kind, id, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(entries))
}
