package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"guestbook/internal/queue"
	"guestbook/internal/redis"
	"guestbook/internal/repository"
	"guestbook/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print guestbook totals and recent daily activity",
	RunE:  runStats,
}

var statsDays int

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsDays, "days", 7, "number of days of activity to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	stats := service.NewStatsService(repository.NewStatsRepository(db))

	summary, err := stats.Summary(ctx)
	if err != nil {
		return err
	}
	activity, err := stats.Activity(ctx, statsDays)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Messages: %s (today %s)\n", humanize.Comma(int64(summary.TotalMessages)), humanize.Comma(int64(summary.TodayMessages)))
	fmt.Fprintf(out, "Replies:  %s\n", humanize.Comma(int64(summary.TotalReplies)))

	if rc, err := redis.Connect(ctx, cfg.RedisURL); err != nil {
		fmt.Fprintf(out, "Change stream: unavailable (%v)\n", err)
	} else {
		defer rc.Close()
		if n, err := rc.StreamLength(ctx, queue.StreamChanges); err == nil {
			fmt.Fprintf(out, "Change stream: %s retained events\n", humanize.Comma(n))
		}
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tMESSAGES\tREPLIES")
	for _, day := range activity {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", day.Date.Format("2006-01-02"), day.Messages, day.Replies)
	}
	return tw.Flush()
}
