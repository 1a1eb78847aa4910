package service

import (
	"context"
	"fmt"

	"stark_bridge/internal/models"
)

// Store: хранилище учёток по паре (кошелёк в нижнем регистре, индекс субаккаунта).
// Upsert мержит patch атомарно для одного ключа, записи не удаляются.
type Store interface {
	Upsert(ctx context.Context, wallet string, index int64, patch models.CredentialPatch) (*models.AccountCredential, error)
	Get(ctx context.Context, wallet string, index int64) (*models.AccountCredential, error)
}

// Key нормализует адрес и проверяет индекс.
func Key(wallet string, index int64) (string, error) {
	w := models.NormalizeWallet(wallet)
	if w == "" {
		return "", fmt.Errorf("%w: empty wallet address", models.ErrInvalidAccount)
	}
	if index < 0 {
		return "", fmt.Errorf("%w: negative account index %d", models.ErrInvalidAccount, index)
	}
	return w, nil
}
