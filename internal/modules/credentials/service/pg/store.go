package pg

import (
	"context"
	"errors"
	"fmt"

	"stark_bridge/internal/models"
	"stark_bridge/internal/modules/credentials/service"
	"stark_bridge/internal/modules/credentials/service/pg/sql"
	"stark_bridge/pkg/db"

	"github.com/jackc/pgx/v5"
)

// Store: учётки в Postgres. Мерж делает один INSERT ... ON CONFLICT с COALESCE,
// поэтому конкурентные upsert одного ключа не теряют поля.
type Store struct {
	db  db.TxRunner
	sql *sql.Queries
}

func New(runner db.TxRunner) *Store {
	return &Store{
		db:  runner,
		sql: sql.New(),
	}
}

func (s *Store) Upsert(
	ctx context.Context,
	wallet string,
	index int64,
	patch models.CredentialPatch,
) (out *models.AccountCredential, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.UpsertCredential: %w", err)
		}
	}()

	w, err := service.Key(wallet, index)
	if err != nil {
		return nil, err
	}

	err = s.db.InTx(ctx, func(ctxTx context.Context, q db.Querier) error {
		row, err := s.sql.UpsertCredential(ctxTx, q, &sql.UpsertCredentialParams{
			WalletAddress:   w,
			AccountIndex:    index,
			ApiKey:          patch.APIKey,
			StarkPrivateKey: patch.StarkPrivateKey,
			StarkPublicKey:  patch.StarkPublicKey,
			Vault:           patch.Vault,
		})
		if err != nil {
			return err
		}
		out = toModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, wallet string, index int64) (out *models.AccountCredential, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.GetCredential: %w", err)
		}
	}()

	w, err := service.Key(wallet, index)
	if err != nil {
		return nil, err
	}

	row, err := s.sql.GetCredential(ctx, s.db.Querier(), &sql.GetCredentialParams{
		WalletAddress: w,
		AccountIndex:  index,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%d", models.ErrCredentialNotFound, w, index)
		}
		return nil, err
	}
	return toModel(row), nil
}

func toModel(row sql.AccountCredential) *models.AccountCredential {
	return &models.AccountCredential{
		WalletAddress:   row.WalletAddress,
		AccountIndex:    row.AccountIndex,
		APIKey:          row.ApiKey,
		StarkPrivateKey: row.StarkPrivateKey,
		StarkPublicKey:  row.StarkPublicKey,
		Vault:           row.Vault,
	}
}
