package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stark_bridge/internal/models"
	credentials "stark_bridge/internal/modules/credentials/service"
	"stark_bridge/internal/notify"
	"stark_bridge/pkg/ethsig"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/metrics"
)

const (
	AccountsPath = "/api/v1/user/accounts"
	APIKeyPath   = "/api/v1/user/account/api-key"

	challengeTimeLayout = "2006-01-02T15:04:05Z"
)

type Client interface {
	ListAccounts(ctx context.Context, auth models.L1Auth) ([]models.ExchangeAccount, error)
	CreateAPIKey(ctx context.Context, auth models.L1Auth, accountID int64, description string) (string, error)
}

// Issuer: двухфазный обмен двух L1 подписей на API ключ субаккаунта. Между фазами состояния нет.
type Issuer struct {
	client      Client
	store       credentials.Store
	notifier    notify.Notifier
	description string
	now         func() time.Time
}

func NewIssuer(client Client, store credentials.Store, notifier notify.Notifier, description string, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		client:      client,
		store:       store,
		notifier:    notifier,
		description: description,
		now:         now,
	}
}

// ChallengeMessage: "<request_path>@<ISO-8601>", строка, которую подписывает кошелёк.
func ChallengeMessage(path, ts string) string {
	return path + "@" + ts
}

// Challenge выдаёт оба сообщения. Время одно на обе фазы.
func (i *Issuer) Challenge(req *models.APIKeyChallengeRequest) (*models.APIKeyChallengeResponse, error) {
	if _, err := credentials.Key(req.WalletAddress, req.AccountIndex); err != nil {
		return nil, err
	}
	ts := i.now().UTC().Format(challengeTimeLayout)
	return &models.APIKeyChallengeResponse{
		AccountsMessage: ChallengeMessage(AccountsPath, ts),
		AccountsTime:    ts,
		APIKeyMessage:   ChallengeMessage(APIKeyPath, ts),
		APIKeyTime:      ts,
	}, nil
}

// Issue: фаза 1 находит id аккаунта по индексу, фаза 2 выпускает ключ. Ключ пишется только после успеха обеих.
func (i *Issuer) Issue(ctx context.Context, req *models.APIKeyIssueRequest) (out *models.APIKeyIssueResponse, err error) {
	defer func() {
		if err != nil {
			metrics.APIKeyIssued("failed")
			logger.Error("[API-KEY] wallet=%s account=%d: %v", req.WalletAddress, req.AccountIndex, err)
			return
		}
		metrics.APIKeyIssued("ok")
	}()

	if _, err := credentials.Key(req.WalletAddress, req.AccountIndex); err != nil {
		return nil, err
	}

	accountsAuth := models.L1Auth{Signature: ethsig.Normalize(req.Accounts.Signature), Time: req.Accounts.Time}
	accounts, err := i.client.ListAccounts(ctx, accountsAuth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrAccountsFetchFailed, err)
	}

	accountID, err := findAccountID(accounts, req.AccountIndex)
	if err != nil {
		return nil, err
	}
	logger.Info("[API-KEY] wallet=%s account=%d resolved id=%d", req.WalletAddress, req.AccountIndex, accountID)

	description := req.Description
	if description == "" {
		description = i.description
	}

	keyAuth := models.L1Auth{Signature: ethsig.Normalize(req.APIKey.Signature), Time: req.APIKey.Time}
	key, err := i.client.CreateAPIKey(ctx, keyAuth, accountID, description)
	if err != nil {
		if errors.Is(err, models.ErrApiKeyMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrApiKeyIssuanceFailed, err)
	}

	if _, err := i.store.Upsert(ctx, req.WalletAddress, req.AccountIndex, models.CredentialPatch{APIKey: &key}); err != nil {
		return nil, fmt.Errorf("store api key: %w", err)
	}
	i.notifier.Sendf("api key issued: wallet=%s account=%d", models.NormalizeWallet(req.WalletAddress), req.AccountIndex)

	return &models.APIKeyIssueResponse{
		WalletAddress: models.NormalizeWallet(req.WalletAddress),
		AccountIndex:  req.AccountIndex,
		AccountID:     accountID,
		HasAPIKey:     true,
	}, nil
}

func findAccountID(accounts []models.ExchangeAccount, index int64) (int64, error) {
	for _, acc := range accounts {
		idx, ok := acc.Index()
		if !ok || idx != index {
			continue
		}
		id, ok := acc.NumericID()
		if !ok {
			return 0, fmt.Errorf("%w: account %d has no id", models.ErrAccountsFetchFailed, index)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%w: index %d among %d accounts", models.ErrAccountNotFound, index, len(accounts))
}
