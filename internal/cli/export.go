package cli

import (
	"fmt"
	"os"

	"servicehours/internal/export"
	"servicehours/internal/models"

	"github.com/spf13/cobra"
)

func newExportCmd(configPath *string) *cobra.Command {
	var (
		restaurantID int64
		from         string
		days         int
		outPath      string
	)
	c := &cobra.Command{
		Use:   "export",
		Short: "Write a range of days to an .xlsx workbook",
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
			start, err := parseDate(from, svc.Today())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			r, err := e.db.GetRestaurant(ctx, restaurantID)
			if err != nil {
				return err
			}
			rangeSlots, err := svc.GetSlotRange(ctx, restaurantID, start, days, false)
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path, err = export.SaveWorkbook(e.cfg.Exports.Path, r, rangeSlots)
				if err != nil {
					return err
				}
			} else if err := writeWorkbookFile(path, r, rangeSlots); err != nil {
				return err
			}

			e.logger.Info().Str("path", path).Int64("restaurant_id", restaurantID).Int("days", days).Msg("export written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	c.Flags().Int64Var(&restaurantID, "restaurant", 0, "restaurant id")
	c.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD (default today)")
	c.Flags().IntVar(&days, "days", 7, "number of days")
	c.Flags().StringVar(&outPath, "out", "", "output file (default: exports.path from config)")
	_ = c.MarkFlagRequired("restaurant")
	return c
}

func writeWorkbookFile(path string, r *models.Restaurant, days []models.DaySlots) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, r, days); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
