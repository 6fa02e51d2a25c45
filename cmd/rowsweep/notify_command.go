package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rowsweep/internal/notifications"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	notifyCmd.AddCommand(newNotifyTestCommand(ctx))
	return notifyCmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Notify.Endpoint == "" {
				fmt.Fprintln(out, "No notification endpoint configured; nothing sent.")
				return nil
			}

			sender := notifications.NewSender(cfg)
			body := fmt.Sprintf("<p>Test notification sent %s.</p>", time.Now().UTC().Format(time.RFC3339))
			if err := sender.Send(cmd.Context(), "rowsweep: test notification", body); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
