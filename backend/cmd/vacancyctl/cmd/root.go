package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobvacancies/backend/internal/config"
	"jobvacancies/backend/internal/storage"
)

// app общие зависимости подкоманд, заполняются в PersistentPreRunE
type app struct {
	file    string
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

// RootCmd корневая команда vacancyctl
func RootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "vacancyctl",
		Short:         "vacancyctl manages the JSON vacancies file.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Vacancies file (default: $VACANCIES_FILE or data/request_vacancies.json)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(
		countCmd(a),
		addCmd(a),
		deleteCmd(a),
		queryCmd(a),
		fetchCmd(a),
		tokenCmd(a),
		archiveCmd(a),
	)

	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.file != "" {
		cfg.VacanciesFile = a.file
	}
	a.cfg = cfg

	if a.verbose {
		a.logger, err = zap.NewDevelopment()
	} else {
		a.logger = zap.NewNop()
	}
	return err
}

func (a *app) store() (*storage.VacancyStore, error) {
	return storage.NewVacancyStore(a.cfg.VacanciesFile, a.logger)
}
