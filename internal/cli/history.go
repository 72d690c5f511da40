package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/models"
)

var (
	historySession   string
	historyLimit     int
	historySince     string
	historyOlderThan string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().StringVar(&historySession, "session", "", "show the events of one session")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of sessions or events")
	historyCmd.Flags().BoolVar(&watchMode, "watch", false, "stream new events (requires --jsonl)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "with --watch, replay events since a duration or time (e.g. 1h, 2d, 2024-01-15)")

	historyPruneCmd.Flags().StringVar(&historyOlderThan, "older-than", "90d", "delete events older than this")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past recitations",
	Long:  "List playback sessions, the events of one session, or stream the event log with --watch --jsonl.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := MustBeJSONLForWatch(); err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()
		repo := db.NewEventRepository(database)

		if watchMode {
			return watchHistory(cmd.Context(), repo)
		}
		if historySession != "" {
			return showSessionEvents(context.Background(), repo, historySession)
		}
		return listSessions(context.Background(), repo)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, err := parseDurationWithDays(historyOlderThan)
		if err != nil || age <= 0 {
			return fmt.Errorf("invalid --older-than %q", historyOlderThan)
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		deleted, err := db.NewEventRepository(database).PruneBefore(context.Background(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]int64{"deleted": deleted})
		}
		fmt.Printf("Deleted %d events.\n", deleted)
		return nil
	},
}

func listSessions(ctx context.Context, repo *db.EventRepository) error {
	sessions, err := repo.ListSessions(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, sessions)
	}
	if len(sessions) == 0 {
		fmt.Println("No recitations yet.")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			session.SessionID,
			session.StartedAt.Local().Format("2006-01-02 15:04"),
			session.LastAt.Sub(session.StartedAt).Round(time.Second).String(),
			strconv.Itoa(session.Segments),
			strconv.Itoa(session.Failures),
			yesNo(session.Completed),
		})
	}
	return writeTable(os.Stdout, []string{"SESSION", "STARTED", "LENGTH", "SEGMENTS", "FAILURES", "COMPLETED"}, rows)
}

func showSessionEvents(ctx context.Context, repo *db.EventRepository, sessionID string) error {
	events, err := repo.ListByEntity(ctx, models.EntityTypeSession, sessionID, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load session events: %w", err)
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, events)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events for session %q", sessionID)
	}

	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			event.Timestamp.Local().Format("15:04:05"),
			string(event.Type),
			truncate(string(event.Payload), 80),
		})
	}
	return writeTable(os.Stdout, []string{"TIME", "TYPE", "DETAILS"}, rows)
}

func watchHistory(ctx context.Context, repo *db.EventRepository) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := DefaultStreamConfig()
	if historySession != "" {
		config.EntityTypes = []models.EntityType{models.EntityTypeSession}
		config.EntityID = historySession
	}
	since, err := ParseSince(historySince)
	if err != nil {
		return err
	}
	if since != nil {
		config.Since = since
		config.IncludeExisting = true
	}

	return NewEventStreamer(repo, os.Stdout, config).Stream(ctx)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
