package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rptas/internal/model"
	"rptas/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type AddCommentRequest struct {
	Body           string  `json:"comment_text" binding:"required"`
	FieldRefs      string  `json:"field_name"`
	SuggestedValue string  `json:"suggested_value"`
	ParentID       *string `json:"parent_id"`
}

type CommentResponse struct {
	ID             string  `json:"id"`
	RecordKind     string  `json:"record_kind"`
	RecordID       uint    `json:"record_id"`
	AuthorID       string  `json:"author_id"`
	AuthorName     string  `json:"author_name"`
	AuthorRole     string  `json:"author_role"`
	Body           string  `json:"comment_text"`
	FieldRefs      string  `json:"field_name,omitempty"`
	SuggestedValue string  `json:"suggested_value,omitempty"`
	ParentID       *string `json:"parent_id,omitempty"`
	Resolved       bool    `json:"resolved"`
	CreatedAt      string  `json:"created_at"`
}

// CommentService stores and lists field-level review comments.
type CommentService interface {
	AddComment(ctx context.Context, kind model.RecordKind, recordID uint, authorID string, req AddCommentRequest) (*CommentResponse, error)
	ListComments(ctx context.Context, kind model.RecordKind, recordID uint) ([]CommentResponse, error)
	SetResolved(ctx context.Context, commentID string, actorID string, resolved bool) error
}

type commentService struct {
	comments repository.CommentRepository
	records  repository.RecordRepository
	users    repository.UserRepository
	resolver PermissionService
}

func NewCommentService(comments repository.CommentRepository, records repository.RecordRepository, users repository.UserRepository, resolver PermissionService) CommentService {
	return &commentService{
		comments: comments,
		records:  records,
		users:    users,
		resolver: resolver,
	}
}

func (s *commentService) AddComment(ctx context.Context, kind model.RecordKind, recordID uint, authorID string, req AddCommentRequest) (*CommentResponse, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrBadRequest)
	}

	if _, err := s.records.GetSummary(ctx, kind, recordID); err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("%s record %d", kind, recordID))
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%w: author could not be identified", ErrUnauthorized)
	}

	// Snapshot the author's role at creation time. Legacy role strings are
	// coerced to admin rather than rejected.
	role, ok := model.ParseRole(author.Role)
	if !ok {
		role = model.RoleAdmin
	}

	comment := &model.ReviewComment{
		RecordKind:     string(kind),
		RecordID:       recordID,
		AuthorID:       author.ID,
		AuthorRole:     string(role),
		Body:           body,
		FieldRefs:      strings.TrimSpace(req.FieldRefs),
		SuggestedValue: req.SuggestedValue,
	}

	// ParentID is stored as given when it parses; a dangling reference is a
	// tolerated gap, and nesting depth is caller discipline.
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, parseErr := uuid.Parse(*req.ParentID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid parent_id", ErrBadRequest)
		}
		comment.ParentID = &parentID
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	comment.Author = author
	resp := toCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) ListComments(ctx context.Context, kind model.RecordKind, recordID uint) ([]CommentResponse, error) {
	if _, err := s.records.GetSummary(ctx, kind, recordID); err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("%s record %d", kind, recordID))
	}

	comments, err := s.comments.ListByRecord(ctx, kind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	res := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		res = append(res, toCommentResponse(c))
	}
	return res, nil
}

func (s *commentService) SetResolved(ctx context.Context, commentID string, actorID string, resolved bool) error {
	id, err := uuid.Parse(commentID)
	if err != nil {
		return fmt.Errorf("%w: invalid comment id", ErrBadRequest)
	}

	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}
	if !model.ReviewEligibleRoles[actor.Role] {
		return fmt.Errorf("%w: role '%s' may not resolve comments", ErrForbidden, actor.Role)
	}

	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return notFoundOrStore(err, fmt.Sprintf("comment %s", commentID))
	}

	if err := s.comments.MarkResolved(ctx, id, resolved); err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func toCommentResponse(c model.ReviewComment) CommentResponse {
	resp := CommentResponse{
		ID:             c.ID.String(),
		RecordKind:     c.RecordKind,
		RecordID:       c.RecordID,
		AuthorID:       c.AuthorID.String(),
		AuthorRole:     c.AuthorRole,
		Body:           c.Body,
		FieldRefs:      c.FieldRefs,
		SuggestedValue: c.SuggestedValue,
		Resolved:       c.Resolved,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
	if c.Author != nil {
		resp.AuthorName = c.Author.FullName
		if resp.AuthorName == "" {
			resp.AuthorName = c.Author.Username
		}
	}
	if c.ParentID != nil {
		parent := c.ParentID.String()
		resp.ParentID = &parent
	}
	return resp
}
