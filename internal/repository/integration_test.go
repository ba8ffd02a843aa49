package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/database"
	"guestbook/internal/model"
	"guestbook/internal/repository"
)

// setupDB connects to TEST_DATABASE_URL, migrates and truncates.
// Tests are skipped when Postgres is unavailable.
func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE messages CASCADE`)
	require.NoError(t, err)
	return db
}

func TestMessageRepository_CreateListDelete(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	messages := repository.NewMessageRepository(db)
	replies := repository.NewReplyRepository(db)
	likes := repository.NewLikeRepository(db)

	created, err := messages.Create(ctx, &model.Message{
		Username: "Alice",
		Content:  "Hello 100% world",
		Attachment: &model.Attachment{
			Name: "cat.png", URL: "https://cdn.example/attachments/1_cat.png",
			Size: 1024, Type: "image/png", Key: "attachments/1_cat.png",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0, created.Likes)
	require.NotNil(t, created.Attachment)
	assert.Equal(t, "cat.png", created.Attachment.Name)

	_, err = messages.Create(ctx, &model.Message{Username: "bob", Content: "100 percent"})
	require.NoError(t, err)

	// % is matched literally
	total, err := messages.Count(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Case-insensitive across username
	total, err = messages.Count(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	page, err := messages.List(ctx, model.FeedQuery{
		SortBy: model.SortByCreatedAt, SortOrder: model.SortDesc, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "bob", page[0].Username)

	_, err = replies.Create(ctx, created.ID, "bob", "hi back")
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, created.ID, "bob")
	require.NoError(t, err)

	deleted, err := messages.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "attachments/1_cat.png", deleted.Attachment.Key)

	// Cascade removed replies and likes
	var orphans int
	require.NoError(t, db.GetContext(ctx, &orphans,
		`SELECT (SELECT COUNT(*) FROM replies WHERE message_id = $1) + (SELECT COUNT(*) FROM likes WHERE message_id = $1)`,
		created.ID))
	assert.Equal(t, 0, orphans)

	// Deleting again is a no-op
	deleted, err = messages.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestLikeRepository_ToggleIsInvolution(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	messages := repository.NewMessageRepository(db)
	likes := repository.NewLikeRepository(db)

	msg, err := messages.Create(ctx, &model.Message{Username: "alice", Content: "like me"})
	require.NoError(t, err)

	res, err := likes.Toggle(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Likes: 1, HasLiked: true}, *res)

	res, err = likes.Toggle(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Likes: 0, HasLiked: false}, *res)

	_, err = likes.Toggle(ctx, "00000000-0000-0000-0000-000000000000", "bob")
	assert.ErrorIs(t, err, model.ErrMessageNotFound)
}

func TestLikeRepository_ConcurrentTogglesKeepCounterConsistent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	messages := repository.NewMessageRepository(db)
	likes := repository.NewLikeRepository(db)

	msg, err := messages.Create(ctx, &model.Message{Username: "alice", Content: "race"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, _ = likes.Toggle(ctx, msg.ID, name)
		}(name)
	}
	wg.Wait()

	got, err := messages.GetByID(ctx, msg.ID)
	require.NoError(t, err)

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows, `SELECT COUNT(*) FROM likes WHERE message_id = $1`, msg.ID))
	assert.Equal(t, rows, got.Likes)
	assert.Equal(t, 8, got.Likes)
}
