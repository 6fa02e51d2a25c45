package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rowsweep/internal/cleanup"
	"rowsweep/internal/logging"
	"rowsweep/internal/notifications"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Run one time-boxed pass of the deletion cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *jobEnv) error {
				runID := uuid.NewString()
				lock, acquired := acquireJobLock(cmd.Context(), env)
				defer func() { _ = lock.Release() }()

				env.logger.Info("cleanup invocation starting",
					logging.String(logging.FieldRunID, runID),
					logging.Bool("lock_acquired", acquired))

				machine := cleanup.NewMachine(env.cfg, env.sheets, env.states, env.sender, env.logger)
				result, err := machine.RunPass(cmd.Context(), runID, acquired)
				if err != nil {
					// A forced terminal pass already reported with the error
					// inline; everything else gets a standalone error report.
					if result == nil || !result.Reported {
						subject, body := notifications.BuildErrorReport("cleanup", runID, err)
						if sendErr := env.sender.Send(cmd.Context(), subject, body); sendErr != nil {
							env.logger.Error("error report delivery failed", logging.Error(sendErr))
						}
					}
					return fmt.Errorf("cleanup run %s: %w", runID, err)
				}

				out := cmd.OutOrStdout()
				switch result.Outcome {
				case cleanup.OutcomeNoQueue:
					fmt.Fprintln(out, "Deletion queue is empty; nothing to do.")
				case cleanup.OutcomePartial:
					fmt.Fprintf(out, "Pass %d done: %d deleted, %d skipped, %d remaining. Cycle continues next invocation.\n",
						result.Pass, result.Deleted, result.Skipped, result.Remaining)
				case cleanup.OutcomeCompleted:
					fmt.Fprintf(out, "Cycle complete after %d pass(es): %d deleted.\n", result.Pass, result.Deleted)
				case cleanup.OutcomeExhausted:
					fmt.Fprintf(out, "Cycle stopped at the pass cap (%d): %d deleted, %d unresolved.\n",
						result.Pass, result.Deleted, result.Remaining)
				}
				return nil
			})
		},
	}
}
