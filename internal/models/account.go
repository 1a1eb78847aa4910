package models

import "encoding/json"

// AccountUpsertRequest: ручная запись учётки. Пустые поля существующие значения не трогают.
type AccountUpsertRequest struct {
	WalletAddress   string  `json:"wallet_address" binding:"required"`
	AccountIndex    int64   `json:"account_index" binding:"min=0"`
	APIKey          *string `json:"api_key"`
	StarkPrivateKey *string `json:"stark_private_key"`
	StarkPublicKey  *string `json:"stark_public_key"`
	Vault           *int64  `json:"vault"`
}

func (r *AccountUpsertRequest) Patch() CredentialPatch {
	return CredentialPatch{
		APIKey:          r.APIKey,
		StarkPrivateKey: r.StarkPrivateKey,
		StarkPublicKey:  r.StarkPublicKey,
		Vault:           r.Vault,
	}
}

// AccountResponse: наружу отдаём только флаги, секреты не возвращаются.
type AccountResponse struct {
	WalletAddress string `json:"wallet_address"`
	AccountIndex  int64  `json:"account_index"`
	HasAPIKey     bool   `json:"has_api_key"`
	HasStarkKey   bool   `json:"has_stark_key"`
	HasPublicKey  bool   `json:"has_public_key"`
	HasVault      bool   `json:"has_vault"`
}

func NewAccountResponse(c *AccountCredential) AccountResponse {
	return AccountResponse{
		WalletAddress: c.WalletAddress,
		AccountIndex:  c.AccountIndex,
		HasAPIKey:     c.HasAPIKey(),
		HasStarkKey:   c.StarkPrivateKey != nil && *c.StarkPrivateKey != "",
		HasPublicKey:  c.StarkPublicKey != nil && *c.StarkPublicKey != "",
		HasVault:      c.Vault != nil,
	}
}

// OrderBuildRequest: ордер от имени (кошелёк, субаккаунт).
type OrderBuildRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	AccountIndex  int64  `json:"account_index" binding:"min=0"`
	UseMainnet    bool   `json:"use_mainnet"`
	OrderIntent
}

// OrderPlaceRequest: уже подписанное тело, отправляется как есть.
type OrderPlaceRequest struct {
	WalletAddress string          `json:"wallet_address" binding:"required"`
	AccountIndex  int64           `json:"account_index" binding:"min=0"`
	Order         json.RawMessage `json:"order" binding:"required"`
}
