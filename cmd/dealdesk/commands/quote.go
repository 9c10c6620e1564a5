package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/forms"
	"github.com/kingrea/dealdesk/internal/order"
	"github.com/kingrea/dealdesk/internal/wizard"
)

const quoteTimeout = 15 * time.Second

// quote: price an order from flags without the interactive wizard.
func quoteCmd() *cobra.Command {
	var (
		req    wizard.QuoteRequest
		addOns []string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the total and contract term for an order",
		Example: `  dealdesk quote --product standard --plan pro --addon support=2
  dealdesk quote --product standard --plan basic --price 25 --period Custom --months 18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), quoteTimeout)
			defer cancel()

			provider := catalog.FromConfig(cfg)
			products, err := provider.Products(ctx)
			if err != nil {
				return errors.New(catalog.FormatError(err))
			}
			var catalogAddOns []order.AddOn
			if len(addOns) > 0 {
				catalogAddOns, err = provider.AddOns(ctx)
				if err != nil {
					return errors.New(catalog.FormatError(err))
				}
			}
			for _, a := range addOns {
				req.AddOns = append(req.AddOns, wizard.ParseQuoteAddOn(a))
			}

			ctl := wizard.New(nil, wizard.WithLogger(logger.Zap()))
			summary, err := ctl.Quote(req, products, catalogAddOns)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}

	defaults := forms.DefaultTermsInput(time.Now())
	cmd.Flags().StringVar(&req.Customer, "customer", wizard.DefaultQuoteCustomer, "customer name")
	cmd.Flags().StringVar(&req.Product, "product", "", "product id")
	cmd.Flags().StringVar(&req.Plan, "plan", "", "plan id")
	cmd.Flags().StringVar(&req.Price, "price", "", "override the plan base price")
	cmd.Flags().StringVar(&req.Terms.StartDate, "start", defaults.StartDate, "start date (YYYY-MM-DD or MM/DD/YYYY)")
	cmd.Flags().StringVar(&req.Terms.Period, "period", defaults.Period, `contract period, e.g. "24 months" or "Custom"`)
	cmd.Flags().StringVar(&req.Terms.CustomMonths, "months", "", "month count for a Custom period")
	cmd.Flags().StringArrayVar(&addOns, "addon", nil, "add-on id, optionally id=qty (repeatable)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func renderSummary(s wizard.Summary) string {
	rows := make([][]string, 0, 8)
	for _, r := range s.Rows() {
		rows = append(rows, []string{r.Label, r.Value})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Rows(rows...).
		String()
}
