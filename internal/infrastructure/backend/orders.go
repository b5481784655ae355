package backend

import (
	"context"
	"fmt"
	"net/http"

	"mutitpay-storefront/internal/domain"

	"github.com/goccy/go-json"
)

// OrderStats reads the aggregated dashboard numbers
func (c *Client) OrderStats(ctx context.Context, token string) (*domain.OrderStats, error) {
	var out struct {
		Stats struct {
			TodayOrders  int       `json:"today_orders"`
			TodayRevenue flexFloat `json:"today_revenue"`
			TotalOrders  int       `json:"total_orders"`
			Pending      int       `json:"pending_orders"`
		} `json:"stats"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/cart/admin/orders/stats/", token: token}, &out); err != nil {
		return nil, err
	}
	return &domain.OrderStats{
		TodayOrders:  out.Stats.TodayOrders,
		TodayRevenue: float64(out.Stats.TodayRevenue),
		TotalOrders:  out.Stats.TotalOrders,
		Pending:      out.Stats.Pending,
	}, nil
}

// Orders lists orders. The API answers {orders, count} or a DRF envelope.
func (c *Client) Orders(ctx context.Context, token string, f domain.OrderFilter) (domain.Page[domain.Order], error) {
	f.ListParams = f.ListParams.Normalized()
	q := listQuery(f.ListParams)
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	q.Set("date_from", f.DateFrom)
	q.Set("date_to", f.DateTo)

	data, err := c.getList(ctx, request{path: "/api/cart/admin/orders/", query: q, token: token})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	var list []orderDTO
	var total int64
	var wrapped struct {
		Orders *[]orderDTO `json:"orders"`
		Count  int64       `json:"count"`
		Total  int64       `json:"total"`
	}
	if jerr := json.Unmarshal(data, &wrapped); jerr == nil && wrapped.Orders != nil {
		list = *wrapped.Orders
		total = wrapped.Count
		if total == 0 {
			total = wrapped.Total
		}
		if total == 0 {
			total = int64(len(list))
		}
	} else {
		list, total, err = decodeList[orderDTO](data)
		if err != nil {
			return domain.Page[domain.Order]{}, fmt.Errorf("decode orders: %w", err)
		}
	}

	orders := make([]domain.Order, 0, len(list))
	for _, d := range list {
		orders = append(orders, toOrder(d))
	}
	return domain.Page[domain.Order]{Items: orders, Pagination: domain.NewPagination(f.Page, f.PageSize, total)}, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status string) error {
	path := fmt.Sprintf("/api/cart/admin/orders/%d/status/", id)
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"status": status}, token: token}, nil)
}

// Customers lists registered customers. The count comes from the envelope or the array length.
func (c *Client) Customers(ctx context.Context, token string, p domain.ListParams) (domain.Page[domain.Customer], error) {
	p = p.Normalized()
	data, err := c.getList(ctx, request{path: "/api/customers/admin/", query: listQuery(p), token: token})
	if err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	list, total, err := decodeList[customerDTO](data)
	if err != nil {
		return domain.Page[domain.Customer]{}, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]domain.Customer, 0, len(list))
	for _, d := range list {
		out = append(out, toCustomer(d))
	}
	return domain.Page[domain.Customer]{Items: out, Pagination: domain.NewPagination(p.Page, p.PageSize, total)}, nil
}

// CustomerCount accepts a bare array or a {count} object
func (c *Client) CustomerCount(ctx context.Context, token string) (int64, error) {
	data, err := c.getList(ctx, request{path: "/api/customers/admin/", token: token})
	if err != nil {
		return 0, err
	}
	var counted struct {
		Count *int64 `json:"count"`
	}
	if jerr := json.Unmarshal(data, &counted); jerr == nil && counted.Count != nil {
		return *counted.Count, nil
	}
	_, total, err := decodeList[json.RawMessage](data)
	if err != nil {
		return 0, fmt.Errorf("decode customer count: %w", err)
	}
	return total, nil
}
