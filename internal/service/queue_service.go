package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rptas/internal/model"
	"rptas/internal/repository"
)

// QueueService projects the role-and-municipality-scoped review queue across
// both record kinds, oldest submission first.
type QueueService interface {
	GetQueue(ctx context.Context, actorID string, statusFilter []model.RecordStatus, kindFilter string) ([]model.RecordSummary, error)
	InvalidateKind(kind model.RecordKind)
}

// defaultQueueStatuses is the actionable-items filter applied when the caller
// supplies none.
var defaultQueueStatuses = []model.RecordStatus{model.StatusSubmitted, model.StatusUnderReview}

type queueCacheEntry struct {
	items     []model.RecordSummary
	expiresAt time.Time
}

type queueService struct {
	records repository.RecordRepository

	// Tag-based read-through cache: entries are keyed by the full query
	// signature and tagged with the record kinds they cover, so a transition
	// on one kind only drops that kind's views.
	mu       sync.Mutex
	cache    map[string]queueCacheEntry
	tags     map[model.RecordKind][]string
	cacheTTL time.Duration

	resolver PermissionService
}

func NewQueueService(records repository.RecordRepository, resolver PermissionService) QueueService {
	return &queueService{
		records:  records,
		resolver: resolver,
		cache:    make(map[string]queueCacheEntry),
		tags:     make(map[model.RecordKind][]string),
		cacheTTL: 15 * time.Second,
	}
}

func (s *queueService) GetQueue(ctx context.Context, actorID string, statusFilter []model.RecordStatus, kindFilter string) ([]model.RecordSummary, error) {
	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return nil, fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}
	if !model.ReviewEligibleRoles[actor.Role] {
		return nil, fmt.Errorf("%w: role '%s' may not view the review queue", ErrForbidden, actor.Role)
	}

	statuses := statusFilter
	if len(statuses) == 0 {
		statuses = defaultQueueStatuses
	}

	kinds := []model.RecordKind{model.KindBuilding, model.KindLand}
	if kindFilter != "" {
		kind, ok := model.ParseRecordKind(kindFilter)
		if !ok {
			return nil, fmt.Errorf("%w: unknown record kind '%s'", ErrBadRequest, kindFilter)
		}
		kinds = []model.RecordKind{kind}
	}

	key := cacheKey(actor.Municipality, statuses, kinds)
	if items, ok := s.cached(key); ok {
		return items, nil
	}

	merged := []model.RecordSummary{}
	for _, kind := range kinds {
		items, err := s.records.ListSummaries(ctx, kind, statuses, actor.Municipality)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s queue: %w", kind, err)
		}
		merged = append(merged, items...)
	}

	// FIFO fairness across form types: oldest submission first, a missing
	// submission timestamp sorts earliest.
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].SubmittedAt, merged[j].SubmittedAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	s.store(key, kinds, merged)
	return merged, nil
}

func (s *queueService) InvalidateKind(kind model.RecordKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.tags[kind] {
		delete(s.cache, key)
	}
	delete(s.tags, kind)
}

func (s *queueService) cached(key string) ([]model.RecordSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.items, true
}

func (s *queueService) store(key string, kinds []model.RecordKind, items []model.RecordSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = queueCacheEntry{items: items, expiresAt: time.Now().Add(s.cacheTTL)}
	for _, kind := range kinds {
		s.tags[kind] = append(s.tags[kind], key)
	}
}

func cacheKey(municipality string, statuses []model.RecordStatus, kinds []model.RecordKind) string {
	parts := make([]string, 0, 2+len(statuses)+len(kinds))
	parts = append(parts, "queue", municipality)
	for _, st := range statuses {
		parts = append(parts, string(st))
	}
	for _, k := range kinds {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ":")
}
