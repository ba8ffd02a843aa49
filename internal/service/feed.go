package service

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"guestbook/internal/cache"
	"guestbook/internal/config"
	"guestbook/internal/metrics"
	"guestbook/internal/model"
	"guestbook/internal/repository"
)

// FeedService builds the enriched, paginated message feed.
// Feed pages are computed fresh on every call and never cached.
type FeedService struct {
	messages repository.MessageRepository
	replies  repository.ReplyRepository
	likes    repository.LikeRepository
	popular  cache.PopularCache
	limits   config.AppLimits
}

func NewFeedService(
	messages repository.MessageRepository,
	replies repository.ReplyRepository,
	likes repository.LikeRepository,
	limits config.AppLimits,
) *FeedService {
	if limits.EnrichConcurrency <= 0 {
		limits.EnrichConcurrency = 1
	}
	return &FeedService{
		messages: messages,
		replies:  replies,
		likes:    likes,
		limits:   limits,
	}
}

// FetchPage returns one page of messages, each enriched with its replies and
// the session identity's like status.
//
// Flow:
// 1. Validate options and resolve the effective sort
// 2. Exact count for the search term
// 3. Fetch the window [(page-1)*pageSize, page*pageSize)
// 4. Enrich every item concurrently; failures degrade that item only
func (s *FeedService) FetchPage(ctx context.Context, session model.Session, opts model.FetchOptions) (*model.PageResult, error) {
	startTime := time.Now()

	page, pageSize, err := s.normalizePaging(opts)
	if err != nil {
		return nil, err
	}
	if opts.Filter, err = model.ParseFilterType(string(opts.Filter)); err != nil {
		return nil, err
	}
	if opts.SortBy, err = model.ParseSortField(string(opts.SortBy)); err != nil {
		return nil, err
	}
	if opts.SortOrder, err = model.ParseSortOrder(string(opts.SortOrder)); err != nil {
		return nil, err
	}
	sortBy, sortOrder := opts.EffectiveSort()
	searchTerm, err := validateSearchTerm(opts.SearchTerm)
	if err != nil {
		return nil, err
	}

	total, err := s.messages.Count(ctx, searchTerm)
	if err != nil {
		log.Printf("[FeedService] FetchPage count FAILED: err=%v", err)
		return nil, queryError("count messages", err)
	}

	result := &model.PageResult{
		Items:      []model.Message{},
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	if total == 0 {
		log.Printf("[FeedService] FetchPage OK: page=%d items=0 total=0 duration=%v", page, time.Since(startTime))
		return result, nil
	}

	items, err := s.messages.List(ctx, model.FeedQuery{
		SortBy:     sortBy,
		SortOrder:  sortOrder,
		SearchTerm: searchTerm,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		log.Printf("[FeedService] FetchPage list FAILED: page=%d err=%v", page, err)
		return nil, queryError("list messages", err)
	}

	s.enrich(ctx, session, items)
	result.Items = items

	log.Printf("[FeedService] FetchPage OK: page=%d size=%d sort=%s %s filter=%s items=%d total=%d duration=%v",
		page, pageSize, sortBy, sortOrder, opts.Filter, len(items), total, time.Since(startTime))

	return result, nil
}

// WithPopularCache makes GetPopular read through c. Invalidation is the
// caller's job, normally on message and like change events.
func (s *FeedService) WithPopularCache(c cache.PopularCache) *FeedService {
	s.popular = c
	return s
}

// GetPopular returns the most liked messages without replies or like status.
func (s *FeedService) GetPopular(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = s.limits.PopularLimit
	}
	if limit <= 0 {
		limit = model.DefaultPopularLimit
	}
	if limit > model.MaxPopularLimit {
		limit = model.MaxPopularLimit
	}

	var gen int64
	cacheable := false
	if s.popular != nil {
		items, g, found, err := s.popular.Get(ctx, limit)
		if err == nil && found {
			return items, nil
		}
		gen, cacheable = g, err == nil
	}

	items, err := s.messages.Popular(ctx, limit)
	if err != nil {
		log.Printf("[FeedService] GetPopular FAILED: limit=%d err=%v", limit, err)
		return nil, queryError("popular messages", err)
	}

	if cacheable {
		// Cache errors only cost a recomputation next time
		_ = s.popular.Set(ctx, limit, gen, items)
	}
	return items, nil
}

// GetMessage returns a single enriched message.
func (s *FeedService) GetMessage(ctx context.Context, session model.Session, id string) (*model.Message, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, queryError("get message", err)
	}

	items := []model.Message{*msg}
	s.enrich(ctx, session, items)
	return &items[0], nil
}

// Ping is the connection check behind /health.
func (s *FeedService) Ping(ctx context.Context) error {
	if err := s.messages.Ping(ctx); err != nil {
		return queryError("ping", err)
	}
	return nil
}

func (s *FeedService) normalizePaging(opts model.FetchOptions) (page, pageSize int, err error) {
	if opts.Page < 1 {
		return 0, 0, model.ErrInvalidPage
	}
	pageSize = opts.PageSize
	if pageSize <= 0 {
		pageSize = s.limits.PageSize
	}
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	if s.limits.MaxPageSize > 0 && pageSize > s.limits.MaxPageSize {
		pageSize = s.limits.MaxPageSize
	}
	return opts.Page, pageSize, nil
}

// enrich fills Replies and HasLiked for every item in place. At most
// EnrichConcurrency lookups run at once. Every goroutine returns nil, so one
// failing item never cancels the others.
func (s *FeedService) enrich(ctx context.Context, session model.Session, items []model.Message) {
	identity := strings.TrimSpace(session.Identity)

	var g errgroup.Group
	g.SetLimit(s.limits.EnrichConcurrency)
	for i := range items {
		msg := &items[i]
		g.Go(func() error {
			s.enrichOne(ctx, identity, msg)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *FeedService) enrichOne(ctx context.Context, identity string, msg *model.Message) {
	replies, err := s.replies.ListByMessage(ctx, msg.ID)
	if err != nil {
		log.Printf("[FeedService] Enrich replies FAILED: message=%s err=%v", msg.ID, err)
		metrics.EnrichmentFailures.WithLabelValues(metrics.KindReplies).Inc()
		replies = nil
	}
	if replies == nil {
		replies = []model.Reply{}
	}
	msg.Replies = replies

	msg.HasLiked = false
	if identity == "" {
		return
	}
	liked, err := s.likes.HasLiked(ctx, msg.ID, identity)
	if err != nil {
		log.Printf("[FeedService] Enrich has_liked FAILED: message=%s err=%v", msg.ID, err)
		metrics.EnrichmentFailures.WithLabelValues(metrics.KindHasLiked).Inc()
		return
	}
	msg.HasLiked = liked
}

func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
