package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/riskconfig"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	var saved bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the risk category summary",
		Long: `Print one line per risk category with its condition count, total weight and status.
With --saved the last saved configuration is read from the settings store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !saved {
				editor, err := riskconfig.NewEditor(nil, nil)
				if err != nil {
					return err
				}
				return writeCategories(cmd.OutOrStdout(), editor.Summary())
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return riskconfig.ErrNoStore
			}
			defer store.Close()

			editor, err := riskconfig.NewEditor(store, nil)
			if err != nil {
				return err
			}
			cats, err := editor.Saved(cmd.Context())
			if errors.Is(err, riskconfig.ErrNothingSaved) {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No saved risk configuration."))
				return nil
			}
			if err != nil {
				return err
			}
			return writeCategories(cmd.OutOrStdout(), summarize(cats))
		},
	}

	cmd.Flags().BoolVar(&saved, "saved", false, "show the last saved configuration")

	return cmd
}

func summarize(cats []domain.RiskCategory) []domain.CategorySummary {
	out := make([]domain.CategorySummary, len(cats))
	for i, c := range cats {
		c.Recompute()
		out[i] = domain.CategorySummary{
			ID:             c.ID,
			Name:           c.Name,
			ConditionCount: len(c.Conditions),
			TotalWeight:    c.TotalWeight,
			Status:         c.Status,
		}
	}
	return out
}

func writeCategories(out io.Writer, summary []domain.CategorySummary) error {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		status := warnStyle.Render(string(s.Status))
		if s.Status == domain.StatusComplete {
			status = okStyle.Render(string(s.Status))
		}
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.ConditionCount),
			humanize.Ftoa(s.TotalWeight) + "%",
			status,
		})
	}

	fmt.Fprintln(out, titleStyle.Render("Risk Categories"))
	_, err := fmt.Fprintln(out, newTable([]string{"Category", "Conditions", "Total Weight", "Status"}, rows))
	return err
}
