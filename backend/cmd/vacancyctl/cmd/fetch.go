package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobvacancies/backend/internal/services"
	"jobvacancies/backend/internal/storage"
)

func fetchCmd(a *app) *cobra.Command {
	var (
		text  string
		area  string
		pages int
		create bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download vacancies from HH.ru and overwrite the file with them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("text") {
				a.cfg.HH.SearchText = text
			}
			if cmd.Flags().Changed("area") {
				a.cfg.HH.Area = area
			}
			if cmd.Flags().Changed("pages") {
				a.cfg.HH.Pages = pages
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			// Хранилище само файл не создает, создаем пустой документ явно
			if create {
				if err := createEmptyDocument(a.cfg.VacanciesFile); err != nil {
					return err
				}
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var redisClient *storage.RedisClient
			if a.cfg.RedisAddress != "" {
				redisClient, err = storage.NewRedisClient(a.cfg.RedisAddress, a.cfg.RedisPassword, a.cfg.RedisDB, a.logger)
				if err != nil {
					return err
				}
				defer redisClient.Close()
			}

			var archive services.VacancyArchive
			if a.cfg.DatabaseURL != "" {
				db, err := storage.NewDatabase(a.cfg.DatabaseURL, a.logger)
				if err != nil {
					return err
				}
				defer db.Close()
				archive = db
			}

			hhService := services.NewHHService(&a.cfg.HH, redisClient, a.logger)
			engine := services.NewRefreshEngine(
				services.NewVacancyService(store, a.logger),
				hhService,
				archive,
				services.QueryFromConfig(&a.cfg.HH),
				a.logger,
			)

			result, err := engine.RunOnce(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d vacancies into %s\n", result.Fetched, store.Path())
			if archive != nil && !result.Archived {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: vacancies were not archived")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Search text (default: $HH_SEARCH_TEXT)")
	cmd.Flags().StringVar(&area, "area", "", "HH.ru area id (default: $HH_AREA)")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of result pages to download")
	cmd.Flags().BoolVar(&create, "init", false, "Create the file if it does not exist")

	return cmd
}

func createEmptyDocument(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	return os.WriteFile(path, []byte(`{"items": []}`), 0o644)
}
