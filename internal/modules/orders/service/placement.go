package service

import (
	"context"
	"net/url"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/logger"
)

// Приватные GET, которые проксируются с сохранённым ключом.
const (
	PathBalance   = "/user/balance"
	PathPositions = "/user/positions"
	PathOrders    = "/user/orders"
)

func (e *Engine) apiKey(ctx context.Context, wallet string, index int64) (string, error) {
	cred, err := e.store.Get(ctx, wallet, index)
	if err != nil {
		return "", err
	}
	if !cred.HasAPIKey() {
		return "", models.ErrAPIKeyNotFound
	}
	return *cred.APIKey, nil
}

// Place отправляет уже подписанное тело ордера как есть. Отказ биржи, *models.UpstreamError.
func (e *Engine) Place(ctx context.Context, wallet string, index int64, order any) ([]byte, error) {
	key, err := e.apiKey(ctx, wallet, index)
	if err != nil {
		return nil, err
	}
	return e.active.Exchange.PlaceOrder(ctx, key, order)
}

// CreateAndPlace подписывает и сразу отправляет в ту же сеть, под чей домен подписан ордер.
func (e *Engine) CreateAndPlace(ctx context.Context, req *BuildRequest) ([]byte, *models.SignedOrder, error) {
	key, err := e.apiKey(ctx, req.WalletAddress, req.AccountIndex)
	if err != nil {
		return nil, nil, err
	}

	order, err := e.Build(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	net := e.network(req.UseMainnet)
	body, err := net.Exchange.PlaceOrder(ctx, key, order)
	if err != nil {
		logger.Warn("[ORDER-PLACE] wallet=%s account=%d id=%s net=%s: %v",
			req.WalletAddress, req.AccountIndex, order.ID, net.Name, err)
		return nil, order, err
	}
	logger.Info("[ORDER-PLACE] wallet=%s account=%d id=%s net=%s placed",
		req.WalletAddress, req.AccountIndex, order.ID, net.Name)
	return body, order, nil
}

// Private: прокси GET к приватному эндпоинту активной сети.
func (e *Engine) Private(ctx context.Context, wallet string, index int64, path string, query url.Values) ([]byte, error) {
	key, err := e.apiKey(ctx, wallet, index)
	if err != nil {
		return nil, err
	}
	return e.active.Exchange.GetPrivate(ctx, key, path, query)
}
