package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/portfolio"
	"github.com/spf13/cobra"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// newTable renders rows under a bold header. Cell widths are measured
// after styling, so coloured cells stay aligned.
func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Inherit(headerStyle)
			}
			return cellStyle
		})
}

func summaryCmd() *cobra.Command {
	var (
		search string
		risk   string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the defaulter list and dashboard metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := portfolio.ParseRiskFilter(risk)
			if err != nil {
				return err
			}

			view := portfolio.NewView(portfolio.Seed())
			page := view.Render(portfolio.Query{Search: search, Risk: level})
			return writeSummary(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&risk, "risk", domain.RiskFilterAll, "risk level filter (Critical, High, Medium, Low)")

	return cmd
}

func writeSummary(out io.Writer, page portfolio.Page) error {
	m := page.Metrics

	fmt.Fprintln(out, titleStyle.Render("Defaulter Dashboard"))
	fmt.Fprintf(out, "Total defaulters:       %d\n", m.TotalDefaulters)
	fmt.Fprintf(out, "Total loan amount:      %s\n", portfolio.FormatCurrency(m.TotalLoanAmount))
	fmt.Fprintf(out, "Avg days past due:      %d\n", m.AvgDaysPastDue)
	fmt.Fprintf(out, "Total collection cost:  %s\n", portfolio.FormatCurrency(m.TotalCollectionCost))
	fmt.Fprintf(out, "Avg payment score:      %d\n", m.AvgPaymentScore)

	dist := make([]string, 0, len(domain.RiskLevels()))
	for _, l := range domain.RiskLevels() {
		dist = append(dist, fmt.Sprintf("%s %d", l, m.RiskDistribution[l]))
	}
	fmt.Fprintf(out, "Risk distribution:      %s\n\n", strings.Join(dist, ", "))

	if page.Showing == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No defaulters match the current filters."))
	} else {
		rows := make([][]string, 0, page.Showing)
		for _, row := range portfolio.Present(page.Rows) {
			rows = append(rows, []string{
				row.Name,
				row.LoanAmountDisplay,
				fmt.Sprintf("%d days", row.DaysPastDue),
				fmt.Sprintf("%d/100", row.PaymentScore),
				string(row.RiskLevel),
				row.CollectionCostDisplay,
			})
		}
		fmt.Fprintln(out, newTable(
			[]string{"Name", "Loan Amount", "Days Past Due", "Payment Score", "Risk Level", "Collection Cost"},
			rows,
		))
	}

	_, err := fmt.Fprintf(out, "\nShowing %d of %d defaulters\n", page.Showing, page.Total)
	return err
}
