package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jobvacancies/backend/internal/storage"
)

func archiveCmd(a *app) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Print vacancies saved to the Postgres archive by previous fetches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := storage.NewDatabase(a.cfg.DatabaseURL, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			vacancies, err := db.ListVacancies(context.Background(), area)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			return encoder.Encode(vacancies)
		},
	}

	cmd.Flags().StringVar(&area, "area", "", "Only vacancies from this area name")

	return cmd
}
