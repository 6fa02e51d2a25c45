package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rowsweep/internal/editwatch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Tail the edit log and track recently edited keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *jobEnv) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				watcher := editwatch.New(env.cfg, env.states, env.logger)
				err := watcher.Run(runCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
