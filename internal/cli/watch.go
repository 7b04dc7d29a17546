package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/observability"
	"github.com/minijira/issue-tracker/internal/persistence"
	"github.com/minijira/issue-tracker/internal/worker"
)

func newWatchCommand(opts *options) *cobra.Command {
	cfg := config.RedisConfig{}
	var logLevel string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream ticket events from Redis",
		Long:  `Subscribe to the events channel the API forwards ticket changes to and print each event until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("redis-addr") {
				if v := os.Getenv("REDIS_ADDR"); v != "" {
					cfg.Addr = v
				}
			}
			if !cfg.Enabled() {
				return fmt.Errorf("--redis-addr is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := observability.NewLogger(config.LoggerConfig{Level: logLevel, Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			redis := persistence.NewRedis(cfg, logger)
			defer redis.Close()

			return worker.TailEvents(ctx, redis.Client, cfg.EventsChannel, logger, func(event events.Event) {
				if opts.output == outputJSON {
					_ = printJSON(opts.out, event)
					return
				}
				fmt.Fprintln(opts.out, formatEvent(event))
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "redis-addr", "", "Redis address (env REDIS_ADDR)")
	flags.StringVar(&cfg.Password, "redis-password", "", "Redis password")
	flags.IntVar(&cfg.DB, "redis-db", 0, "Redis database")
	flags.StringVar(&cfg.EventsChannel, "channel", "tickets.events", "events channel")
	flags.StringVar(&logLevel, "log-level", "warn", "log level for connection diagnostics")
	return cmd
}

func formatEvent(event events.Event) string {
	actor := "system"
	if event.Actor.UserID != nil {
		actor = fmt.Sprintf("user %d", *event.Actor.UserID)
	}
	return fmt.Sprintf("%s  %-15s ticket %d by %s",
		event.Timestamp.Local().Format("2006-01-02 15:04:05"), event.Type, event.TicketID, actor)
}
