package service

import (
	"context"
	"log"

	"guestbook/internal/config"
	"guestbook/internal/model"
	"guestbook/internal/queue"
	"guestbook/internal/repository"
)

type ReplyService struct {
	replies  repository.ReplyRepository
	notifier changeNotifier
	limits   config.AppLimits
}

func NewReplyService(replies repository.ReplyRepository, publisher queue.Publisher, limits config.AppLimits) *ReplyService {
	return &ReplyService{
		replies:  replies,
		notifier: changeNotifier{publisher: publisher},
		limits:   limits,
	}
}

// Add creates a reply under messageID.
func (s *ReplyService) Add(ctx context.Context, messageID, username, content string) (*model.Reply, error) {
	if err := validateID(messageID); err != nil {
		return nil, err
	}
	username, content, err := validateAuthored(username, content, s.limits.MaxContentLength)
	if err != nil {
		return nil, err
	}

	reply, err := s.replies.Create(ctx, messageID, username, content)
	if err != nil {
		log.Printf("[ReplyService] Add FAILED: message=%s user=%s err=%v", messageID, username, err)
		return nil, persistenceError("create reply", err)
	}

	s.notifier.notify(ctx, queue.NewReplyEvent(queue.EventInsert, reply.ID, messageID))
	log.Printf("[ReplyService] Add OK: reply=%s message=%s user=%s", reply.ID, messageID, username)
	return reply, nil
}

// Delete removes a reply. Deleting an absent reply succeeds.
func (s *ReplyService) Delete(ctx context.Context, replyID string) error {
	if err := validateID(replyID); err != nil {
		return err
	}

	removed, err := s.replies.Delete(ctx, replyID)
	if err != nil {
		log.Printf("[ReplyService] Delete FAILED: reply=%s err=%v", replyID, err)
		return persistenceError("delete reply", err)
	}
	if !removed {
		log.Printf("[ReplyService] Delete no-op: reply=%s not found", replyID)
		return nil
	}

	s.notifier.notify(ctx, queue.NewReplyEvent(queue.EventDelete, replyID, ""))
	log.Printf("[ReplyService] Delete OK: reply=%s", replyID)
	return nil
}

// ListByMessage returns replies oldest first. An unknown message has no replies.
func (s *ReplyService) ListByMessage(ctx context.Context, messageID string) ([]model.Reply, error) {
	if err := validateID(messageID); err != nil {
		return nil, err
	}

	replies, err := s.replies.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, queryError("list replies", err)
	}
	if replies == nil {
		replies = []model.Reply{}
	}
	return replies, nil
}
