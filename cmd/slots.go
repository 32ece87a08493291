package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var timezone string

	c := &cobra.Command{
		Use:   "slots",
		Short: "List available slots in a timezone",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.newForm(timezone).Load(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "timezone: %s\n", st.Timezone)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTIME\tUTC\tCOUNSELOR\tNEXT")
			for _, d := range st.Map.Dates() {
				for i, s := range st.Map[d] {
					next := ""
					if d == st.Selection.Date && i == 0 {
						next = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d, s.DisplayTime, s.TimeRangeUTC, s.CounselorEmail, next)
				}
			}
			return tw.Flush()
		},
	}

	c.Flags().StringVar(&timezone, "timezone", os.Getenv("SLOTBOOK_TIMEZONE"), "IANA timezone to display slots in (default: DEFAULT_TIMEZONE)")
	return c
}
