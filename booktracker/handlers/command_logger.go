package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/config"
	"github.com/booktrackerbot/booktracker/booktracker/logger"
	"github.com/disgoorg/disgo/handler"
)

// WrapWithLogging wraps a command handler with start/completion logging and
// a hard execution timeout.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			logger.LogCommand(name, duration, err)
			if err == nil && duration > 2*time.Second {
				slog.Warn("Command executed slowly",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.Duration("took", duration),
					slog.String("status", "slow"),
				)
			}
			return err

		case <-time.After(config.CommandExecutionTimeout):
			err := fmt.Errorf("command timed out after %s", config.CommandExecutionTimeout)
			logger.LogError("Command timed out", err,
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
			)
			return err
		}
	}
}
