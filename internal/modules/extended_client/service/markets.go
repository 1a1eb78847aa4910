package service

import (
	"context"
	"net/http"
	"net/url"

	"stark_bridge/internal/models"

	"github.com/pkg/errors"
)

// GetMarket: GET /info/markets?market=... на mainnet. Метаданные рынков берутся оттуда для любого окружения.
func (c *Client) GetMarket(ctx context.Context, name string) (*models.Market, error) {
	u := c.marketsBase + "/info/markets?market=" + url.QueryEscape(name)

	resp, err := c.do(ctx, "get_market", http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}

	var markets []models.Market
	if err := decodeOK("get_market", resp, &markets); err != nil {
		return nil, err
	}
	for i := range markets {
		if markets[i].Name == name {
			return &markets[i], nil
		}
	}
	return nil, errors.Wrapf(models.ErrUnknownMarket, "market %s", name)
}
