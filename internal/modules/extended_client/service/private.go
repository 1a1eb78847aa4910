package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"stark_bridge/internal/models"
)

// PlaceOrder: POST /user/order. Тело ответа отдаётся как есть, отказ, *models.UpstreamError.
func (c *Client) PlaceOrder(ctx context.Context, apiKey string, order any) ([]byte, error) {
	resp, err := c.do(ctx, "place_order", http.MethodPost, c.apiBase+"/user/order",
		map[string]string{headerAPIKey: apiKey}, order)
	if err != nil {
		return nil, err
	}
	if resp.status >= http.StatusBadRequest {
		return nil, &models.UpstreamError{Op: "place_order", Status: resp.status, Body: string(resp.body)}
	}
	return resp.body, nil
}

// GetPrivate: прокси GET к приватному эндпоинту (/user/balance, /user/positions, /user/orders).
func (c *Client) GetPrivate(ctx context.Context, apiKey, path string, query url.Values) ([]byte, error) {
	u := c.apiBase + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	op := "get_private"
	resp, err := c.do(ctx, op, http.MethodGet, u, map[string]string{headerAPIKey: apiKey}, nil)
	if err != nil {
		return nil, err
	}
	if resp.status/100 != 2 {
		return nil, &models.UpstreamError{Op: op, Status: resp.status, Body: string(resp.body)}
	}
	return resp.body, nil
}
