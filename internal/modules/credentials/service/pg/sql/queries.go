package sql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct{}

func New() *Queries {
	return &Queries{}
}

type AccountCredential struct {
	WalletAddress   string
	AccountIndex    int64
	ApiKey          *string
	StarkPrivateKey *string
	StarkPublicKey  *string
	Vault           *int64
}

const upsertCredential = `-- name: UpsertCredential :one
INSERT INTO account_credentials AS t (
    wallet_address, account_index, api_key, stark_private_key, stark_public_key, vault
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (wallet_address, account_index) DO UPDATE SET
    api_key           = COALESCE(EXCLUDED.api_key, t.api_key),
    stark_private_key = COALESCE(EXCLUDED.stark_private_key, t.stark_private_key),
    stark_public_key  = COALESCE(EXCLUDED.stark_public_key, t.stark_public_key),
    vault             = COALESCE(EXCLUDED.vault, t.vault),
    updated_at        = now()
RETURNING wallet_address, account_index, api_key, stark_private_key, stark_public_key, vault
`

type UpsertCredentialParams struct {
	WalletAddress   string
	AccountIndex    int64
	ApiKey          *string
	StarkPrivateKey *string
	StarkPublicKey  *string
	Vault           *int64
}

func (q *Queries) UpsertCredential(ctx context.Context, db DBTX, arg *UpsertCredentialParams) (AccountCredential, error) {
	row := db.QueryRow(ctx, upsertCredential,
		arg.WalletAddress,
		arg.AccountIndex,
		arg.ApiKey,
		arg.StarkPrivateKey,
		arg.StarkPublicKey,
		arg.Vault,
	)
	var i AccountCredential
	err := row.Scan(
		&i.WalletAddress,
		&i.AccountIndex,
		&i.ApiKey,
		&i.StarkPrivateKey,
		&i.StarkPublicKey,
		&i.Vault,
	)
	return i, err
}

const getCredential = `-- name: GetCredential :one
SELECT wallet_address, account_index, api_key, stark_private_key, stark_public_key, vault
FROM account_credentials
WHERE wallet_address = $1 AND account_index = $2
`

type GetCredentialParams struct {
	WalletAddress string
	AccountIndex  int64
}

func (q *Queries) GetCredential(ctx context.Context, db DBTX, arg *GetCredentialParams) (AccountCredential, error) {
	row := db.QueryRow(ctx, getCredential, arg.WalletAddress, arg.AccountIndex)
	var i AccountCredential
	err := row.Scan(
		&i.WalletAddress,
		&i.AccountIndex,
		&i.ApiKey,
		&i.StarkPrivateKey,
		&i.StarkPublicKey,
		&i.Vault,
	)
	return i, err
}
