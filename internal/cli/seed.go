package cli

import (
	"errors"
	"fmt"

	"servicehours/internal/database"

	"github.com/spf13/cobra"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "seed",
		Short: "Load restaurants and service hours from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			path := file
			if path == "" {
				path = e.cfg.Database.SeedFile
			}
			if path == "" {
				return errors.New("no seed file: pass --file or set database.seed_file")
			}

			seed, err := database.LoadSeed(path)
			if err != nil {
				return err
			}
			if err := e.db.ApplySeed(cmd.Context(), seed); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d restaurants from %s\n", len(seed.Restaurants), path)
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "seed YAML (default: database.seed_file from config)")
	return c
}
