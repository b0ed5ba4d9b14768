package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"servicehours/internal/models"

	"github.com/spf13/cobra"
)

func newSlotsCmd(configPath *string) *cobra.Command {
	var (
		restaurantID int64
		date         string
		ignore       bool
		asJSON       bool
	)
	c := &cobra.Command{
		Use:   "slots",
		Short: "Print bookable start times of one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := e.slotService()
			if err != nil {
				return err
			}
			day, err := parseDate(date, svc.Today())
			if err != nil {
				return err
			}

			list, err := svc.GetServiceTimes(cmd.Context(), restaurantID, day, ignore)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				return enc.Encode(models.DaySlots{Date: day, Slots: list})
			}
			if len(list) == 0 {
				fmt.Fprintf(out, "%s: closed\n", day.Format(models.DateLayout))
				return nil
			}
			fmt.Fprintln(out, strings.Join(list, "\n"))
			return nil
		},
	}
	c.Flags().Int64Var(&restaurantID, "restaurant", 0, "restaurant id")
	c.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	c.Flags().BoolVar(&ignore, "ignore-duration", false, "do not trim the last window by the booking duration")
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = c.MarkFlagRequired("restaurant")
	return c
}
