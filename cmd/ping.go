package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/application/usecases"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the booking backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			uc := usecases.PingBackend{Backend: a.client}
			if err := uc.Execute(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", a.cfg.BookingAPIURL)
			return nil
		},
	}
}
