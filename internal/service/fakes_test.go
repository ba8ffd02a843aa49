package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"guestbook/internal/config"
	"guestbook/internal/model"
	"guestbook/internal/queue"
)

// =============================================================================
// IN-MEMORY STORE
// =============================================================================
//
// memStore backs fake message, reply and like repositories with the same
// cascade and counter semantics as the Postgres schema. Failure hooks let
// each test break one collaborator at a time.

var errBoom = errors.New("boom")

type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	messages map[string]model.Message
	replies  map[string]model.Reply
	likes    map[string]map[string]bool // messageID -> username -> liked

	countErr        error
	listErr         error
	createErr       error
	listRepliesFn   func(messageID string) error
	hasLikedErr     error
	listRepliesCall int
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		messages: make(map[string]model.Message),
		replies:  make(map[string]model.Reply),
		likes:    make(map[string]map[string]bool),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// seed inserts a message directly, bypassing validation.
func (s *memStore) seed(username, content string, likes int) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := model.Message{ID: uuid.NewString(), Username: username, Content: content, CreatedAt: s.tick(), Likes: likes}
	s.messages[msg.ID] = msg
	return msg
}

func (s *memStore) likeRows(messageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes[messageID])
}

func (s *memStore) message(id string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	return m, ok
}

func matches(m model.Message, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(m.Username), term) ||
		strings.Contains(strings.ToLower(m.Content), term)
}

// ---- MessageRepository ----

type fakeMessages struct{ *memStore }

func (f fakeMessages) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := model.Message{
		ID:         uuid.NewString(),
		Username:   msg.Username,
		Content:    msg.Content,
		CreatedAt:  f.tick(),
		Attachment: msg.Attachment,
	}
	f.messages[stored.ID] = stored
	return &stored, nil
}

func (f fakeMessages) GetByID(ctx context.Context, id string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	return &m, nil
}

func (f fakeMessages) UpdateContent(ctx context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return model.ErrMessageNotFound
	}
	m.Content = content
	f.messages[id] = m
	return nil
}

func (f fakeMessages) Delete(ctx context.Context, id string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	delete(f.messages, id)
	delete(f.likes, id)
	for rid, r := range f.replies {
		if r.MessageID == id {
			delete(f.replies, rid)
		}
	}
	return &m, nil
}

func (f fakeMessages) Count(ctx context.Context, searchTerm string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.messages {
		if matches(m, searchTerm) {
			n++
		}
	}
	return n, nil
}

func (f fakeMessages) List(ctx context.Context, q model.FeedQuery) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var rows []model.Message
	for _, m := range f.messages {
		if matches(m, q.SearchTerm) {
			rows = append(rows, m)
		}
	}
	lessAsc := func(a, b model.Message) bool {
		switch q.SortBy {
		case model.SortByLikes:
			if a.Likes != b.Likes {
				return a.Likes < b.Likes
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(rows, func(i, j int) bool {
		if q.SortOrder == model.SortDesc {
			return lessAsc(rows[j], rows[i])
		}
		return lessAsc(rows[i], rows[j])
	})
	if q.Offset >= len(rows) {
		return []model.Message{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return append([]model.Message(nil), rows[q.Offset:end]...), nil
}

func (f fakeMessages) Popular(ctx context.Context, limit int) ([]model.Message, error) {
	return f.List(ctx, model.FeedQuery{SortBy: model.SortByLikes, SortOrder: model.SortDesc, Limit: limit})
}

func (f fakeMessages) Ping(ctx context.Context) error { return nil }

// ---- ReplyRepository ----

type fakeReplies struct{ *memStore }

func (f fakeReplies) Create(ctx context.Context, messageID, username, content string) (*model.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[messageID]; !ok {
		return nil, model.ErrMessageNotFound
	}
	r := model.Reply{ID: uuid.NewString(), MessageID: messageID, Username: username, Content: content, CreatedAt: f.tick()}
	f.replies[r.ID] = r
	return &r, nil
}

func (f fakeReplies) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.replies[id]
	delete(f.replies, id)
	return ok, nil
}

func (f fakeReplies) ListByMessage(ctx context.Context, messageID string) ([]model.Reply, error) {
	f.mu.Lock()
	f.listRepliesCall++
	hook := f.listRepliesFn
	f.mu.Unlock()
	if hook != nil {
		if err := hook(messageID); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reply{}
	for _, r := range f.replies {
		if r.MessageID == messageID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- LikeRepository ----

type fakeLikes struct{ *memStore }

func (f fakeLikes) Toggle(ctx context.Context, messageID, username string) (*model.LikeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	if f.likes[messageID] == nil {
		f.likes[messageID] = make(map[string]bool)
	}
	liked := f.likes[messageID][username]
	if liked {
		delete(f.likes[messageID], username)
		m.Likes--
	} else {
		f.likes[messageID][username] = true
		m.Likes++
	}
	f.messages[messageID] = m
	return &model.LikeResult{Likes: m.Likes, HasLiked: !liked}, nil
}

func (f fakeLikes) HasLiked(ctx context.Context, messageID, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasLikedErr != nil {
		return false, f.hasLikedErr
	}
	return f.likes[messageID][username], nil
}

// =============================================================================
// COLLABORATOR FAKES
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.ChangeEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *recordingPublisher) recorded() []queue.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.ChangeEvent(nil), p.events...)
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *memBlobs) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBlobs) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// =============================================================================
// HELPERS
// =============================================================================

type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	blobs     *memBlobs
	feed      *FeedService
	messages  *MessageService
	replies   *ReplyService
}

func newFixture() *fixture {
	store := newMemStore()
	pub := &recordingPublisher{}
	blobs := newMemBlobs()
	limits := config.DefaultAppLimits()
	return &fixture{
		store:     store,
		publisher: pub,
		blobs:     blobs,
		feed:      NewFeedService(fakeMessages{store}, fakeReplies{store}, fakeLikes{store}, limits),
		messages:  NewMessageService(fakeMessages{store}, fakeLikes{store}, blobs, pub, limits),
		replies:   NewReplyService(fakeReplies{store}, pub, limits),
	}
}
