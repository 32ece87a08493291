package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/domain/booking"
)

func newBookCmd() *cobra.Command {
	var (
		timezone string
		date     string
		slotTime string
		form     = booking.EmptyForm()
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a slot by its local date and display time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			a, err := newApp(ctx, appOptions{useStore: true, migrate: true})
			if err != nil {
				return err
			}
			defer a.close()

			f := a.newForm(timezone)
			if _, err := f.Load(ctx); err != nil {
				return err
			}
			f.SelectDate(date)
			f.SelectTime(slotTime)

			o, err := f.Submit(ctx, &form)
			if err != nil {
				var ve *booking.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("cannot book: %w", err)
				}
				return err
			}
			switch o.Kind {
			case booking.OutcomeSuccess:
				fmt.Fprintf(cmd.OutOrStdout(), "booked %s %s (%s) ref=%s\n", date, slotTime, f.State().Timezone, o.BookingRef)
				return nil
			case booking.OutcomeServerRejection:
				return fmt.Errorf("booking rejected: %s", o.Message)
			default:
				return fmt.Errorf("booking not sent: %w", o.Cause)
			}
		},
	}

	c.Flags().StringVar(&timezone, "timezone", "", "IANA timezone the date and time are given in (default: DEFAULT_TIMEZONE)")
	c.Flags().StringVar(&date, "date", "", "local date (YYYY-MM-DD)")
	c.Flags().StringVar(&slotTime, "time", "", `display time as listed by "slots", e.g. "2:30 PM-3:30 PM"`)
	c.Flags().StringVar(&form.Name, "name", "", "student name")
	c.Flags().StringVar(&form.Email, "email", "", "contact email")
	c.Flags().StringVar(&form.Phone, "phone", "", "contact phone")
	c.Flags().StringVar(&form.CountryCode, "country-code", booking.DefaultCountryCode, "phone country code")
	c.Flags().StringVar(&form.Location, "location", "", "city or location")
	c.Flags().StringVar(&form.Grade, "grade", "", "student grade")
	c.Flags().StringVar(&form.BatchNo, "batch", booking.DefaultBatchNo, "batch number")
	c.Flags().BoolVar(&form.ParentConfirmed, "parent-confirmed", false, "a parent or guardian confirmed the booking")

	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("time")
	_ = c.MarkFlagRequired("email")
	return c
}
