package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Order fetches an order with its items and discount.
func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetDiscount replaces the discount of an order. Disposable marks a
// one-time discount.
func (c *Client) SetDiscount(ctx context.Context, orderID int64, description string, percentage decimal.Decimal, disposable bool) error {
	body := DiscountRequest{
		Description: description,
		Percentage:  json.Number(percentage.String()),
		Disposable:  disposable,
	}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/discount", orderID), nil, body, nil)
}

// SetStatus moves an order to another status.
func (c *Client) SetStatus(ctx context.Context, orderID int64, status int) error {
	body := StatusRequest{Status: status}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID), nil, body, nil)
}

// Thread fetches a support thread with its messages.
func (c *Client) Thread(ctx context.Context, id int64) (*Thread, error) {
	var out Thread
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/threads/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
