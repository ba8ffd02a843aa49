package service

import (
	"context"
	"log"
	"strings"
	"time"

	"guestbook/internal/config"
	"guestbook/internal/model"
	"guestbook/internal/queue"
	"guestbook/internal/repository"
	"guestbook/internal/storage"
)

type MessageService struct {
	messages repository.MessageRepository
	likes    repository.LikeRepository
	blobs    storage.BlobStore
	notifier changeNotifier
	limits   config.AppLimits
}

// NewMessageService wires the message mutations. blobs and publisher may be nil
// (no attachment cleanup, no change events).
func NewMessageService(
	messages repository.MessageRepository,
	likes repository.LikeRepository,
	blobs storage.BlobStore,
	publisher queue.Publisher,
	limits config.AppLimits,
) *MessageService {
	return &MessageService{
		messages: messages,
		likes:    likes,
		blobs:    blobs,
		notifier: changeNotifier{publisher: publisher},
		limits:   limits,
	}
}

// Create validates and inserts a message. The attachment metadata is written
// in the same row, so there is never a message with a half-written attachment.
func (s *MessageService) Create(ctx context.Context, username, content string, attachment *model.Attachment) (*model.Message, error) {
	startTime := time.Now()

	username, content, err := validateAuthored(username, content, s.limits.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if attachment != nil {
		if err := s.checkAttachment(attachment); err != nil {
			log.Printf("[MessageService] Create rejected attachment: user=%s key=%q err=%v", username, attachment.Key, err)
			return nil, err
		}
	}

	msg, err := s.messages.Create(ctx, &model.Message{
		Username:   username,
		Content:    content,
		Attachment: attachment,
	})
	if err != nil {
		log.Printf("[MessageService] Create FAILED: user=%s err=%v", username, err)
		return nil, persistenceError("create message", err)
	}
	msg.Replies = []model.Reply{}
	msg.HasLiked = false

	s.notifier.notify(ctx, queue.NewMessageEvent(queue.EventInsert, msg.ID))

	log.Printf("[MessageService] Create OK: message=%s user=%s attachment=%v duration=%v",
		msg.ID, username, attachment != nil, time.Since(startTime))
	return msg, nil
}

// Update replaces a message's content. Likes, attachment and timestamp are untouched.
func (s *MessageService) Update(ctx context.Context, id, content string) error {
	if err := validateID(id); err != nil {
		return err
	}
	content, err := validateContent(content, s.limits.MaxContentLength)
	if err != nil {
		return err
	}

	if err := s.messages.UpdateContent(ctx, id, content); err != nil {
		log.Printf("[MessageService] Update FAILED: message=%s err=%v", id, err)
		return persistenceError("update message", err)
	}

	s.notifier.notify(ctx, queue.NewMessageEvent(queue.EventUpdate, id))
	log.Printf("[MessageService] Update OK: message=%s", id)
	return nil
}

// Delete removes a message with its replies and likes. Deleting a message that
// does not exist succeeds without doing anything.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	deleted, err := s.messages.Delete(ctx, id)
	if err != nil {
		log.Printf("[MessageService] Delete FAILED: message=%s err=%v", id, err)
		return persistenceError("delete message", err)
	}
	if deleted == nil {
		log.Printf("[MessageService] Delete no-op: message=%s not found", id)
		return nil
	}

	s.removeAttachment(ctx, deleted.Attachment)
	s.notifier.notify(ctx, queue.NewMessageEvent(queue.EventDelete, id))

	log.Printf("[MessageService] Delete OK: message=%s", id)
	return nil
}

// ToggleLike likes or unlikes a message for identity.
func (s *MessageService) ToggleLike(ctx context.Context, messageID, identity string) (*model.LikeResult, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, model.ErrIdentityRequired
	}
	identity, err := validateUsername(identity)
	if err != nil {
		return nil, err
	}
	if err := validateID(messageID); err != nil {
		return nil, err
	}

	result, err := s.likes.Toggle(ctx, messageID, identity)
	if err != nil {
		log.Printf("[MessageService] ToggleLike FAILED: message=%s user=%s err=%v", messageID, identity, err)
		return nil, persistenceError("toggle like", err)
	}

	s.notifier.notify(ctx, queue.NewLikeEvent(messageID, result.HasLiked))

	log.Printf("[MessageService] ToggleLike OK: message=%s user=%s liked=%v likes=%d",
		messageID, identity, result.HasLiked, result.Likes)
	return result, nil
}

// removeAttachment deletes the attachment blob and its preview. The message row
// is already gone, so failures are only logged.
func (s *MessageService) removeAttachment(ctx context.Context, attachment *model.Attachment) {
	if s.blobs == nil || attachment == nil || attachment.Key == "" {
		return
	}
	if !model.IsAttachmentKey(attachment.Key) {
		log.Printf("[MessageService] Refusing to delete blob outside attachments: key=%q", attachment.Key)
		return
	}
	if err := s.blobs.Delete(ctx, attachment.Key); err != nil {
		log.Printf("[MessageService] Failed to delete attachment: key=%s err=%v", attachment.Key, err)
	}
	if attachment.PreviewURL != "" {
		previewKey := model.PreviewKey(attachment.Key)
		if err := s.blobs.Delete(ctx, previewKey); err != nil {
			log.Printf("[MessageService] Failed to delete preview: key=%s err=%v", previewKey, err)
		}
	}
}

// checkAttachment accepts only metadata that an upload to our own blob store
// produced: the key lives under the attachments folder and the URLs, size and
// type agree with it and with the configured limits.
func (s *MessageService) checkAttachment(a *model.Attachment) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" || a.URL == "" {
		return model.ErrFileNameRequired
	}
	if s.blobs == nil {
		// Without storage nothing could have been uploaded
		return model.ErrInvalidAttachment
	}
	if !model.IsStorableText(a.Name) || sanitizeFileName(a.Name) != a.Name {
		return model.ErrInvalidAttachment
	}
	if !model.IsAttachmentKey(a.Key) || strings.HasPrefix(a.Key, model.PreviewFolder+"/") {
		return model.ErrInvalidAttachment
	}
	if a.URL != s.blobs.PublicURL(a.Key) {
		return model.ErrInvalidAttachment
	}
	if a.PreviewURL != "" && a.PreviewURL != s.blobs.PublicURL(model.PreviewKey(a.Key)) {
		return model.ErrInvalidAttachment
	}
	if a.Size < 0 {
		return model.ErrInvalidAttachment
	}
	if a.Size > s.limits.MaxFileSize {
		return model.ErrFileTooLarge
	}
	a.Type = model.NormalizeContentType(a.Type)
	if !isSupportedType(s.limits.SupportedFileTypes, a.Type) {
		return model.ErrUnsupportedFileType
	}
	return nil
}
