package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin helpers",
	}
	cmd.AddCommand(newAdminHashCmd())
	cmd.AddCommand(newAdminBookingsCmd())
	return cmd
}

func newAdminHashCmd() *cobra.Command {
	var password string

	c := &cobra.Command{
		Use:   "hash-password",
		Short: "Print an ADMIN_PASSWORD_HASH value for the given password",
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export ADMIN_PASSWORD_HASH='%s'\n", hash)
			return nil
		},
	}

	c.Flags().StringVar(&password, "password", "", "admin password")
	_ = c.MarkFlagRequired("password")
	return c
}

func newAdminBookingsCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "bookings",
		Short: "Print recent booking attempts from the booking log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			a, err := newApp(ctx, appOptions{useStore: true})
			if err != nil {
				return err
			}
			defer a.close()
			if a.bookLog == nil {
				return fmt.Errorf("DATABASE_URL is required")
			}

			entries, err := a.bookLog.List(ctx, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "max entries")
	return c
}
