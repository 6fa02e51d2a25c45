package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rowsweep/internal/logging"
	"rowsweep/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Classify dropped rows, copy them to the archive tabs, and rebuild the deletion queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *jobEnv) error {
				runID := uuid.NewString()
				lock, acquired := acquireJobLock(cmd.Context(), env)
				defer func() { _ = lock.Release() }()

				env.logger.Info("sync run starting",
					logging.String(logging.FieldRunID, runID),
					logging.Bool("lock_acquired", acquired))

				orch := syncer.NewOrchestrator(env.cfg, env.sheets, env.states, env.sender, env.logger)
				summary, err := orch.Run(cmd.Context(), runID, acquired)
				if err != nil {
					return fmt.Errorf("sync run %s: %w", runID, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Sync run %s finished.\n", runID)
				fmt.Fprintln(out, renderTable(
					[]string{"Scanned", "Archive", "Relocations", "Duplicates", "Rejected", "Queued"},
					[][]string{{
						strconv.Itoa(summary.Scanned),
						strconv.Itoa(summary.Archive),
						strconv.Itoa(summary.Relocations),
						strconv.Itoa(summary.Duplicates),
						strconv.Itoa(summary.Rejected),
						strconv.Itoa(summary.Queued),
					}},
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}
