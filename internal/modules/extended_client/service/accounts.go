package service

import (
	"context"
	"net/http"
	"strconv"

	"stark_bridge/internal/models"

	"github.com/pkg/errors"
)

func l1Headers(auth models.L1Auth) map[string]string {
	return map[string]string{
		headerL1Signature:   auth.Signature,
		headerL1MessageTime: auth.Time,
	}
}

// ListAccounts: GET /user/accounts, авторизация подписью L1.
func (c *Client) ListAccounts(ctx context.Context, auth models.L1Auth) ([]models.ExchangeAccount, error) {
	resp, err := c.do(ctx, "list_accounts", http.MethodGet, c.apiBase+"/user/accounts", l1Headers(auth), nil)
	if err != nil {
		return nil, err
	}

	var accounts []models.ExchangeAccount
	if err := decodeOK("list_accounts", resp, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

type apiKeyRequest struct {
	Description string `json:"description"`
}

type apiKeyResponse struct {
	Key string `json:"key"`
}

// CreateAPIKey: POST /user/account/api-key для аккаунта accountID.
func (c *Client) CreateAPIKey(ctx context.Context, auth models.L1Auth, accountID int64, description string) (string, error) {
	headers := l1Headers(auth)
	headers[headerActiveAccount] = strconv.FormatInt(accountID, 10)

	resp, err := c.do(ctx, "create_api_key", http.MethodPost, c.apiBase+"/user/account/api-key", headers,
		apiKeyRequest{Description: description})
	if err != nil {
		return "", err
	}

	var out apiKeyResponse
	if err := decodeOK("create_api_key", resp, &out); err != nil {
		return "", err
	}
	if out.Key == "" {
		return "", errors.Wrap(models.ErrApiKeyMissing, "create_api_key")
	}
	return out.Key, nil
}

// AccountInfo: то, что нам нужно из /user/account/info.
type AccountInfo struct {
	AccountID models.FlexInt `json:"accountId"`
	L2Vault   models.FlexInt `json:"l2Vault"`
	L2Key     string         `json:"l2Key"`
}

func (c *Client) GetAccountInfo(ctx context.Context, apiKey string) (*AccountInfo, error) {
	resp, err := c.do(ctx, "account_info", http.MethodGet, c.apiBase+"/user/account/info",
		map[string]string{headerAPIKey: apiKey}, nil)
	if err != nil {
		return nil, err
	}

	var info AccountInfo
	if err := decodeOK("account_info", resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
