package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"guestbook/internal/repository"
	"guestbook/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the guestbook with fake messages, replies and likes",
	Long: `Insert fake messages through the same services the server uses, so
every row passes the usual validation. Meant for local development.

Example usage:
  guestbookctl seed --messages 50 --max-replies 3 --max-likes 10`,
	RunE: runSeed,
}

var (
	seedMessages   int
	seedMaxReplies int
	seedMaxLikes   int
	seedValue      int64
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedMessages, "messages", 30, "number of messages to create")
	seedCmd.Flags().IntVar(&seedMaxReplies, "max-replies", 3, "maximum replies per message")
	seedCmd.Flags().IntVar(&seedMaxLikes, "max-likes", 8, "maximum likes per message")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 uses the current time)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	gofakeit.Seed(seedValue)

	messageRepo := repository.NewMessageRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	// No publisher: nobody is listening to a seed run
	messages := service.NewMessageService(messageRepo, likeRepo, nil, nil, cfg.App)
	replies := service.NewReplyService(repository.NewReplyRepository(db), nil, cfg.App)

	ctx := cmd.Context()
	var replyCount, likeCount int
	for i := 0; i < seedMessages; i++ {
		msg, err := messages.Create(ctx, gofakeit.Username(), fakeContent(cfg.App.MaxContentLength), nil)
		if err != nil {
			return fmt.Errorf("create message %d: %w", i+1, err)
		}

		for j := gofakeit.Number(0, seedMaxReplies); j > 0; j-- {
			if _, err := replies.Add(ctx, msg.ID, gofakeit.Username(), fakeContent(cfg.App.MaxContentLength)); err != nil {
				return fmt.Errorf("reply to %s: %w", msg.ID, err)
			}
			replyCount++
		}

		for j := gofakeit.Number(0, seedMaxLikes); j > 0; j-- {
			res, err := messages.ToggleLike(ctx, msg.ID, gofakeit.Username())
			if err != nil {
				return fmt.Errorf("like %s: %w", msg.ID, err)
			}
			if res.HasLiked {
				likeCount++
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d messages, %d replies, %d likes (seed=%d)\n",
		seedMessages, replyCount, likeCount, seedValue)
	return nil
}

// fakeContent returns a sentence that fits within max characters.
func fakeContent(max int) string {
	s := gofakeit.Sentence(gofakeit.Number(3, 15))
	r := []rune(s)
	if max > 0 && len(r) > max {
		r = r[:max]
	}
	return string(r)
}
