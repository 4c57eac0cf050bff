package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jobvacancies/backend/internal/models"
)

func countCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored vacancies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}

			count, err := store.Count()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var (
		vacancy    models.Vacancy
		salaryFrom string
		salaryTo   string
		currency   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a vacancy to the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if vacancy.SalaryFrom, err = optionalFloat(models.FieldSalaryFrom, salaryFrom); err != nil {
				return err
			}
			if vacancy.SalaryTo, err = optionalFloat(models.FieldSalaryTo, salaryTo); err != nil {
				return err
			}
			if currency != "" {
				vacancy.SalaryCurrency = &currency
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			if _, err := store.Add(vacancy); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Vacancy %d added\n", vacancy.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&vacancy.ID, "id", 0, "Vacancy id")
	cmd.Flags().StringVar(&vacancy.Name, "name", "", "Vacancy name")
	cmd.Flags().StringVar(&vacancy.URL, "url", "", "Vacancy URL")
	cmd.Flags().StringVar(&vacancy.Area, "area", "", "Area name")
	cmd.Flags().StringVar(&vacancy.Requirement, "requirement", "", "Requirement snippet")
	cmd.Flags().StringVar(&salaryFrom, "salary-from", "", "Lower salary bound")
	cmd.Flags().StringVar(&salaryTo, "salary-to", "", "Upper salary bound")
	cmd.Flags().StringVar(&currency, "currency", "", "Salary currency")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	var last bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete the first vacancy with the given id, or the last one with --last",
		Args: func(cmd *cobra.Command, args []string) error {
			if last && len(args) != 0 {
				return fmt.Errorf("--last takes no id")
			}
			if !last && len(args) != 1 {
				return fmt.Errorf("expected exactly one vacancy id or --last")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}

			var deleted bool
			if last {
				deleted, err = store.DeleteLast()
			} else {
				id, convErr := strconv.Atoi(args[0])
				if convErr != nil {
					return fmt.Errorf("invalid vacancy id %q", args[0])
				}
				deleted, err = store.Delete(id)
			}
			if err != nil {
				return err
			}

			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Vacancy not found")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Vacancy deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&last, "last", false, "Delete the last vacancy in the file")

	return cmd
}

func queryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query [field=value...]",
		Short: "Print vacancies whose fields exactly match all given values",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilterArgs(args)
			if err != nil {
				return err
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			vacancies, err := store.Query(filter)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			return encoder.Encode(vacancies)
		},
	}
}

func parseFilterArgs(args []string) (map[string]interface{}, error) {
	filter := make(map[string]interface{}, len(args))

	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("filter %q must look like field=value", arg)
		}

		value, err := models.ParseFieldValue(field, raw)
		if err != nil {
			return nil, err
		}
		filter[field] = value
	}

	return filter, nil
}

func optionalFloat(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}

	value, err := models.ParseFieldValue(field, raw)
	if err != nil || value == nil {
		return nil, err
	}

	amount := value.(float64)
	return &amount, nil
}
