package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/billing"
	"github.com/worksdev/portal/internal/events"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/workflows"
)

var (
	orderItems       []string
	orderDiscount    string
	orderJSON        bool
	orderDescription string
	orderDisposable  bool

	OrdersCmd = &cobra.Command{
		Use:   "orders",
		Short: "Price orders and manage discounts and status",
	}
)

func init() {
	ordersBreakdownCmd.Flags().StringSliceVarP(&orderItems, "item", "i", nil, "item cost, tax included (repeatable); prices offline instead of fetching the order")
	ordersBreakdownCmd.Flags().StringVar(&orderDiscount, "discount", "", "discount percentage overriding the order's")
	ordersBreakdownCmd.Flags().BoolVar(&orderJSON, "json", false, "output as JSON")

	ordersDiscountCmd.Flags().StringVar(&orderDescription, "description", "", "reason for the discount")
	ordersDiscountCmd.Flags().BoolVar(&orderDisposable, "disposable", false, "apply once, for the next payment only")

	OrdersCmd.AddCommand(ordersBreakdownCmd)
	OrdersCmd.AddCommand(ordersDiscountCmd)
	OrdersCmd.AddCommand(ordersStatusCmd)
}

func resetOrdersState() {
	orderItems = nil
	orderDiscount = ""
	orderJSON = false
	orderDescription = ""
	orderDisposable = false
}

var ordersBreakdownCmd = &cobra.Command{
	Use:   "breakdown [order-id]",
	Short: "Show the payment breakdown of an order",
	Long: `Computes the taxes, discount, card processor commission and net amounts
of an order.

Examples:
  # Price an order from the API
  portal orders breakdown 42

  # Price two items offline with a 10% discount
  portal orders breakdown --item 580 --item 580 --discount 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := workflows.OrderBreakdownOptions{}

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			opts.OrderID = id
		} else if len(orderItems) == 0 {
			return fmt.Errorf("give an order id or at least one --item")
		}

		for _, raw := range orderItems {
			cost, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid item cost %q", raw)
			}
			opts.Items = append(opts.Items, cost)
		}
		if orderDiscount != "" {
			d, err := decimal.NewFromString(orderDiscount)
			if err != nil {
				return fmt.Errorf("invalid discount %q", orderDiscount)
			}
			opts.Discount = &d
		}

		ctx, cancel := commandContext()
		defer cancel()

		var err error
		var result *workflows.OrderBreakdownResult
		if opts.OrderID != 0 {
			a, appErr := newApp()
			if appErr != nil {
				return appErr
			}
			result, err = workflows.OrderBreakdown(ctx, a, opts)
		} else {
			result, err = workflows.OrderBreakdown(ctx, nil, opts)
		}
		if err != nil {
			return reportError(cmd, err)
		}

		if orderJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Breakdown)
		}
		printBreakdown(cmd.OutOrStdout(), result)
		return nil
	},
}

func printBreakdown(out io.Writer, result *workflows.OrderBreakdownResult) {
	b := result.Breakdown
	if result.Order != nil {
		fmt.Fprintf(out, "%s %s\n", ui.Heading.Sprint(result.Order.Name), ui.Muted.Sprint(api.OrderStatusName(result.Order.Status)))
	}

	row := func(label string, c billing.Cents) {
		fmt.Fprintf(out, "  %-28s %14s\n", label, ui.Money(c))
	}

	fmt.Fprintln(out, ui.Heading.Sprint("Original"))
	row("Subtotal", b.Original.Subtotal)
	row("Taxes", b.Original.Taxes)
	row("Total", b.Original.Total)

	fmt.Fprintln(out, ui.Heading.Sprintf("Discount %s", ui.Percent(b.Discount.Percentage)))
	row("Amount", b.Discount.Amount)

	fmt.Fprintln(out, ui.Heading.Sprint("Final"))
	row("Subtotal", b.Final.Subtotal)
	row("Taxes", b.Final.Taxes)
	row("Total", b.Final.Total)

	fmt.Fprintln(out, ui.Heading.Sprint("Card processor"))
	row("Paid by client", b.StripeCommission.Client)
	row("Paid by us", b.StripeCommission.Own)
	row("Total commission", b.StripeCommission.Total)

	fmt.Fprintln(out, ui.Heading.Sprint("Net"))
	row("Received", b.Received)
	row("Net received", b.NetReceived)
	row("Profit", b.Profit)
}

var ordersDiscountCmd = &cobra.Command{
	Use:   "discount <order-id> <percentage>",
	Short: "Apply a discount to an order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		out := cmd.OutOrStdout()
		var refreshed *workflows.OrderBreakdownResult

		spinner, cleanup := startSpinner("Applying discount...", out)
		defer func() {
			cleanup()
			if refreshed != nil {
				printBreakdown(out, refreshed)
			}
		}()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		// Reprice the order with the saved discount once the API accepts it.
		unsubscribe := a.Events.Discounts.Subscribe(func(e events.DiscountUpdated) {
			percentage := e.Percentage
			result, err := workflows.OrderBreakdown(ctx, a, workflows.OrderBreakdownOptions{
				OrderID:  e.OrderID,
				Discount: &percentage,
			})
			if err != nil {
				Logger.Warnf("Failed to refresh the breakdown of order %d: %v", e.OrderID, err)
				return
			}
			refreshed = result
		})
		defer unsubscribe()

		result, err := workflows.SetDiscount(ctx, a, workflows.SetDiscountOptions{
			OrderID:     id,
			Description: orderDescription,
			Percentage:  args[1],
			Disposable:  orderDisposable,
		})
		if err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Discount of " + ui.Highlight.Sprint(ui.Percent(result.Percentage)) +
			" applied to order " + ui.Highlight.Sprint(id)
		return nil
	},
}

var ordersStatusCmd = &cobra.Command{
	Use:   "status <order-id> <status>",
	Short: "Move an order to another status",
	Long: `Statuses:
  1 En planificación     6 Revisión del cliente
  2 Pago requerido       7 En espera
  3 En desarrollo        8 Archivado
  4 En producción        9 Cancelado
  5 En mantenimiento    10 Completado`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		spinner, cleanup := startSpinner("Updating order status...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		unsubscribe := a.Events.Statuses.Subscribe(func(e events.StatusChanged) {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Order " + ui.Highlight.Sprint(e.OrderID) +
				" is now " + ui.Highlight.Sprint(api.OrderStatusName(e.Status))
		})
		defer unsubscribe()

		if _, err := workflows.SetStatus(ctx, a, workflows.SetStatusOptions{OrderID: id, Status: args[1]}); err != nil {
			return finish(spinner, err)
		}
		return nil
	},
}
