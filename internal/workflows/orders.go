package workflows

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/audit"
	"github.com/worksdev/portal/internal/billing"
	"github.com/worksdev/portal/internal/events"
	"github.com/worksdev/portal/internal/validation"
)

// OrderBreakdownOptions selects what to price.
type OrderBreakdownOptions struct {
	// OrderID fetches the order's items and discount from the API. Zero
	// prices Items instead, offline.
	OrderID int64

	// Items are item costs (tax included) used when OrderID is zero.
	Items []decimal.Decimal

	// Discount overrides the order's discount percentage.
	Discount *decimal.Decimal
}

// OrderBreakdownResult contains the priced order.
type OrderBreakdownResult struct {
	// Order is nil for offline breakdowns.
	Order *api.Order

	// Total is the sum of the item costs.
	Total decimal.Decimal

	// Discount is the percentage that was applied.
	Discount decimal.Decimal

	Breakdown billing.Breakdown
}

// OrderBreakdown computes the payment breakdown of an order. a may be nil
// when OrderID is zero.
func OrderBreakdown(ctx context.Context, a *app.App, opts OrderBreakdownOptions) (*OrderBreakdownResult, error) {
	result := &OrderBreakdownResult{}
	costs := opts.Items

	if opts.OrderID != 0 {
		if err := a.RequireLogin(); err != nil {
			return nil, err
		}
		order, err := a.API.Order(ctx, opts.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch order %d: %w", opts.OrderID, err)
		}
		result.Order = order
		result.Discount = order.DiscountPercentage()
		costs = order.ItemCosts()
	}

	if opts.Discount != nil {
		result.Discount = *opts.Discount
	}

	result.Total = billing.SumItems(costs)
	result.Breakdown = billing.ComputeBreakdown(result.Total, result.Discount)
	return result, nil
}

// SetDiscountOptions configures the discount workflow.
type SetDiscountOptions struct {
	OrderID     int64
	Description string

	// Percentage is the raw user input, validated as a number in [1, 100].
	Percentage string

	Disposable bool
}

// SetDiscountResult contains the applied discount.
type SetDiscountResult struct {
	Percentage decimal.Decimal
}

// SetDiscount validates and applies a discount to an order, then publishes
// events.DiscountUpdated on the app's hub.
func SetDiscount(ctx context.Context, a *app.App, opts SetDiscountOptions) (*SetDiscountResult, error) {
	values, verrs := validation.Validate(validation.DiscountSchema, map[string]string{
		"description": opts.Description,
		"percentage":  opts.Percentage,
		"disposable":  strconv.FormatBool(opts.Disposable),
	})
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	percentage, err := decimal.NewFromString(values["percentage"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse percentage: %w", err)
	}
	disposable, _ := strconv.ParseBool(values["disposable"])

	if err := a.RequireLogin(); err != nil {
		return nil, err
	}

	if err := a.API.SetDiscount(ctx, opts.OrderID, values["description"], percentage, disposable); err != nil {
		return nil, fmt.Errorf("failed to apply discount: %w", err)
	}

	a.Events.Discounts.Publish(events.DiscountUpdated{
		OrderID:     opts.OrderID,
		Percentage:  percentage,
		Description: values["description"],
	})

	entry := auditEntry(a, audit.OpSetDiscount)
	entry.OrderID = opts.OrderID
	entry.Percentage = percentage.String()
	entry.Disposable = disposable
	audit.Log(entry)

	return &SetDiscountResult{Percentage: percentage}, nil
}

// SetStatusOptions configures the status workflow.
type SetStatusOptions struct {
	OrderID int64

	// Status is the raw user input, a status number from 1 to 10.
	Status string
}

// SetStatusResult contains the new status.
type SetStatusResult struct {
	Status int
	Name   string
}

// SetStatus moves an order to another status and publishes
// events.StatusChanged on the app's hub.
func SetStatus(ctx context.Context, a *app.App, opts SetStatusOptions) (*SetStatusResult, error) {
	values, verrs := validation.Validate(validation.StatusSchema, map[string]string{"status": opts.Status})
	if err := verrs.Err(); err != nil {
		return nil, err
	}
	status, err := strconv.Atoi(values["status"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}

	if err := a.RequireLogin(); err != nil {
		return nil, err
	}

	if err := a.API.SetStatus(ctx, opts.OrderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	a.Events.Statuses.Publish(events.StatusChanged{OrderID: opts.OrderID, Status: status})

	entry := auditEntry(a, audit.OpSetStatus)
	entry.OrderID = opts.OrderID
	entry.Status = status
	audit.Log(entry)

	return &SetStatusResult{Status: status, Name: api.OrderStatusName(status)}, nil
}
