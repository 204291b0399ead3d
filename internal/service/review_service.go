package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rptas/internal/model"
	"rptas/internal/repository"

	"gorm.io/gorm"
)

// QueueEvent is pushed to connected reviewers when a record enters or leaves
// the review queue.
type QueueEvent struct {
	Type         string             `json:"type"` // record_submitted, record_reviewed
	Kind         model.RecordKind   `json:"kind"`
	RecordID     uint               `json:"record_id"`
	Municipality string             `json:"municipality"`
	Status       model.RecordStatus `json:"status"`
}

// QueueNotifier delivers queue events to interested clients. Delivery is
// best-effort; the review action never waits on it.
type QueueNotifier interface {
	NotifyQueueEvent(event QueueEvent)
}

// ListCacheInvalidator drops cached list views for one record kind.
type ListCacheInvalidator interface {
	InvalidateKind(kind model.RecordKind)
}

// ReviewService orchestrates one reviewer action: role gate, transition
// validation, conditional update, best-effort audit write.
type ReviewService interface {
	PerformAction(ctx context.Context, kind model.RecordKind, recordID uint, actorID string, action model.ReviewAction, note string) (*model.RecordSummary, error)
	GetHistory(ctx context.Context, kind model.RecordKind, recordID uint, actorID string) ([]HistoryEntryResponse, error)
	ListHistory(ctx context.Context, actorID string, page, limit int) ([]HistoryEntryResponse, int64, error)
}

type HistoryEntryResponse struct {
	ID         string `json:"id"`
	RecordKind string `json:"record_kind"`
	RecordID   uint   `json:"record_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorName  string `json:"actor_name"`
	ActorRole  string `json:"actor_role"`
	Note       string `json:"note"`
	CreatedAt  string `json:"created_at"`
}

type reviewService struct {
	records  repository.RecordRepository
	history  repository.HistoryRepository
	resolver PermissionService
	notifier QueueNotifier
	lists    ListCacheInvalidator
}

// NewReviewService wires the action processor. notifier and lists may be nil.
func NewReviewService(records repository.RecordRepository, history repository.HistoryRepository, resolver PermissionService, notifier QueueNotifier, lists ListCacheInvalidator) ReviewService {
	return &reviewService{
		records:  records,
		history:  history,
		resolver: resolver,
		notifier: notifier,
		lists:    lists,
	}
}

func (s *reviewService) PerformAction(ctx context.Context, kind model.RecordKind, recordID uint, actorID string, action model.ReviewAction, note string) (*model.RecordSummary, error) {
	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return nil, fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}

	// Submit eligibility and review eligibility are two disjoint allow-lists.
	eligible := model.ReviewEligibleRoles
	if action == model.ActionSubmit {
		eligible = model.SubmitEligibleRoles
	}
	if !eligible[actor.Role] {
		return nil, fmt.Errorf("%w: role '%s' may not %s records", ErrForbidden, actor.Role, action)
	}

	record, err := s.records.GetSummary(ctx, kind, recordID)
	if err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("%s record %d", kind, recordID))
	}

	if actor.Municipality != "" && record.Municipality != actor.Municipality {
		return nil, fmt.Errorf("%w: record is outside municipality '%s'", ErrForbidden, actor.Municipality)
	}

	newStatus, err := model.Transition(action, record.Status)
	if err != nil {
		var terr *model.TransitionError
		if errors.As(err, &terr) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, terr.Error())
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     string(newStatus),
		"updated_at": now,
	}
	switch action {
	case model.ActionSubmit:
		updates["submitted_at"] = now
	case model.ActionClaim:
		updates["reviewer_id"] = actor.UserID
	case model.ActionApprove:
		updates["reviewer_id"] = actor.UserID
		updates["approved_at"] = now
	}

	applied, err := s.records.UpdateReviewState(ctx, kind, recordID, record.Status, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s record %d: %w", kind, recordID, err)
	}
	if !applied {
		// A concurrent transition changed the status after our read.
		return nil, fmt.Errorf("%w: record status changed while processing '%s'", ErrConflict, action)
	}

	s.appendHistory(ctx, record, actor, action, newStatus, note, now)

	if s.lists != nil {
		s.lists.InvalidateKind(kind)
	}
	if s.notifier != nil {
		eventType := "record_reviewed"
		if action == model.ActionSubmit {
			eventType = "record_submitted"
		}
		s.notifier.NotifyQueueEvent(QueueEvent{
			Type:         eventType,
			Kind:         kind,
			RecordID:     recordID,
			Municipality: record.Municipality,
			Status:       newStatus,
		})
	}

	updated := *record
	updated.Status = newStatus
	updated.UpdatedAt = now
	switch action {
	case model.ActionSubmit:
		updated.SubmittedAt = &now
	case model.ActionClaim:
		id := actor.UserID
		updated.ReviewerID = &id
	case model.ActionApprove:
		id := actor.UserID
		updated.ReviewerID = &id
		updated.ApprovedAt = &now
	}
	return &updated, nil
}

// appendHistory writes the audit row for a completed transition. The write is
// best-effort by contract: a failure is logged and never propagated, the
// status change already stands.
func (s *reviewService) appendHistory(ctx context.Context, record *model.RecordSummary, actor *PermissionSet, action model.ReviewAction, newStatus model.RecordStatus, note string, at time.Time) {
	if note == "" && action == model.ActionSubmit {
		if record.Status == model.StatusReturned {
			note = model.NoteResubmitted
		} else {
			note = model.NoteInitialSubmission
		}
	}

	actorID := actor.UserID
	entry := &model.ReviewHistory{
		RecordKind: string(record.Kind),
		RecordID:   record.ID,
		FromStatus: string(record.Status),
		ToStatus:   string(newStatus),
		ActorID:    &actorID,
		ActorRole:  string(actor.Role),
		Note:       note,
		CreatedAt:  at,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		log.Printf("WARNING: failed to write review history for %s record %d (%s -> %s): %v",
			record.Kind, record.ID, record.Status, newStatus, err)
	}
}

func (s *reviewService) GetHistory(ctx context.Context, kind model.RecordKind, recordID uint, actorID string) ([]HistoryEntryResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return nil, fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}
	if !actor.Permissions[model.FeatureHistoryView] {
		return nil, fmt.Errorf("%w: role '%s' may not view review history", ErrForbidden, actor.Role)
	}

	if _, err := s.records.GetSummary(ctx, kind, recordID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundOrStore(err, fmt.Sprintf("%s record %d", kind, recordID))
		}
		return nil, err
	}

	entries, err := s.history.ListByRecord(ctx, kind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review history: %w", err)
	}

	return historyResponses(entries), nil
}

// ListHistory returns the audit trail across every record, newest first.
func (s *reviewService) ListHistory(ctx context.Context, actorID string, page, limit int) ([]HistoryEntryResponse, int64, error) {
	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return nil, 0, fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}
	if !actor.Permissions[model.FeatureHistoryView] {
		return nil, 0, fmt.Errorf("%w: role '%s' may not view review history", ErrForbidden, actor.Role)
	}

	entries, total, err := s.history.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch review history: %w", err)
	}
	return historyResponses(entries), total, nil
}

func historyResponses(entries []model.ReviewHistory) []HistoryEntryResponse {
	res := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		name := "System"
		if e.Actor != nil {
			name = e.Actor.FullName
			if name == "" {
				name = e.Actor.Username
			}
		}
		res = append(res, HistoryEntryResponse{
			ID:         e.ID.String(),
			RecordKind: e.RecordKind,
			RecordID:   e.RecordID,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorName:  name,
			ActorRole:  e.ActorRole,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	return res
}
