package models

import "strings"

// AccountCredential: учётка пользователя для пары (кошелёк, субаккаунт).
type AccountCredential struct {
	WalletAddress   string  `json:"wallet_address"`
	AccountIndex    int64   `json:"account_index"`
	APIKey          *string `json:"api_key,omitempty"`
	StarkPrivateKey *string `json:"stark_private_key,omitempty"`
	StarkPublicKey  *string `json:"stark_public_key,omitempty"`
	Vault           *int64  `json:"vault,omitempty"`
}

// CredentialPatch: частичное обновление. nil-поля существующие значения не трогают.
type CredentialPatch struct {
	APIKey          *string
	StarkPrivateKey *string
	StarkPublicKey  *string
	Vault           *int64
}

// Apply мержит patch в запись: перезаписываются только не-nil поля.
func (p CredentialPatch) Apply(rec *AccountCredential) {
	if p.APIKey != nil {
		rec.APIKey = ptr(*p.APIKey)
	}
	if p.StarkPrivateKey != nil {
		rec.StarkPrivateKey = ptr(*p.StarkPrivateKey)
	}
	if p.StarkPublicKey != nil {
		rec.StarkPublicKey = ptr(*p.StarkPublicKey)
	}
	if p.Vault != nil {
		rec.Vault = ptr(*p.Vault)
	}
}

func (c *AccountCredential) HasAPIKey() bool {
	return c != nil && c.APIKey != nil && *c.APIKey != ""
}

func (c *AccountCredential) HasStarkKeys() bool {
	return c != nil && c.StarkPrivateKey != nil && *c.StarkPrivateKey != "" &&
		c.StarkPublicKey != nil && *c.StarkPublicKey != ""
}

// HasVault: ноль биржа не выдаёт, поэтому считаем его отсутствием.
func (c *AccountCredential) HasVault() bool {
	return c != nil && c.Vault != nil && *c.Vault != 0
}

// Clone отдаёт копию, чтобы наружу не утекали указатели из хранилища.
func (c *AccountCredential) Clone() *AccountCredential {
	if c == nil {
		return nil
	}
	out := &AccountCredential{
		WalletAddress: c.WalletAddress,
		AccountIndex:  c.AccountIndex,
	}
	CredentialPatch{
		APIKey:          c.APIKey,
		StarkPrivateKey: c.StarkPrivateKey,
		StarkPublicKey:  c.StarkPublicKey,
		Vault:           c.Vault,
	}.Apply(out)
	return out
}

// NormalizeWallet: все ключи хранилища в нижнем регистре.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

func ptr[T any](v T) *T { return &v }

// Ptr удобен в вызывающем коде для заполнения CredentialPatch.
func Ptr[T any](v T) *T { return ptr(v) }
