package handler

import (
	"net/http"

	"rptas/internal/middleware"
	"rptas/internal/model"
	"rptas/internal/service"
	"rptas/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
	resolver       service.PermissionService
}

func NewCommentHandler(commentService service.CommentService, resolver service.PermissionService) *CommentHandler {
	return &CommentHandler{commentService: commentService, resolver: resolver}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/api/records")
	records.Use(middleware.RequireAuth())
	{
		records.GET("/:kind/:id/comments", h.ListComments)
		records.POST("/:kind/:id/comments", middleware.RequireFeature(h.resolver, model.FeatureCommentsWrite), h.AddComment)
	}

	comments := router.Group("/api/comments")
	comments.Use(middleware.RequireAuth())
	{
		comments.PUT("/:id/resolve", h.ResolveComment)
	}
}

// ListComments returns the comments of one record, oldest first.
func (h *CommentHandler) ListComments(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(comments))
}

// AddComment attaches a field-level comment or reply to one record.
// @Summary      Add a review comment
// @Tags         comments
// @Security     BearerAuth
// @Param        kind     path  string                     true  "Record kind (building|land)"
// @Param        id       path  int                        true  "Record id"
// @Param        request  body  service.AddCommentRequest  true  "Comment payload"
// @Success      201  {object}  response.Response{data=service.CommentResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/records/{kind}/{id}/comments [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("comment_text is required"))
		return
	}

	authorID := c.GetString(middleware.CtxUserID)
	comment, err := h.commentService.AddComment(c.Request.Context(), kind, id, authorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(comment))
}

type resolveCommentRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

// ResolveComment marks a comment resolved (or reopens it).
func (h *CommentHandler) ResolveComment(c *gin.Context) {
	var req resolveCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("resolved flag is required"))
		return
	}

	actorID := c.GetString(middleware.CtxUserID)
	if err := h.commentService.SetResolved(c.Request.Context(), c.Param("id"), actorID, *req.Resolved); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"resolved": *req.Resolved}))
}
