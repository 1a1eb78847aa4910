package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/internal/modules/credentials/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type credentialRow struct {
	WalletAddress   string `gorm:"primaryKey;size:64"`
	AccountIndex    int64  `gorm:"primaryKey;autoIncrement:false"`
	APIKey          *string
	StarkPrivateKey *string
	StarkPublicKey  *string
	Vault           *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (credentialRow) TableName() string { return "account_credentials" }

// Store: учётки в SQLite через gorm, для одиночного инстанса без Postgres.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite пишет одним соединением, конкурентные upsert встают в очередь
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&credentialRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Upsert(
	ctx context.Context,
	wallet string,
	index int64,
	patch models.CredentialPatch,
) (out *models.AccountCredential, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("sqlite.UpsertCredential: %w", err)
		}
	}()

	w, err := service.Key(wallet, index)
	if err != nil {
		return nil, err
	}

	row := credentialRow{
		WalletAddress:   w,
		AccountIndex:    index,
		APIKey:          patch.APIKey,
		StarkPrivateKey: patch.StarkPrivateKey,
		StarkPublicKey:  patch.StarkPublicKey,
		Vault:           patch.Vault,
	}

	// обновляем только то, что пришло в patch
	cols := []string{"updated_at"}
	if patch.APIKey != nil {
		cols = append(cols, "api_key")
	}
	if patch.StarkPrivateKey != nil {
		cols = append(cols, "stark_private_key")
	}
	if patch.StarkPublicKey != nil {
		cols = append(cols, "stark_public_key")
	}
	if patch.Vault != nil {
		cols = append(cols, "vault")
	}

	var saved credentialRow
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_address"}, {Name: "account_index"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("wallet_address = ? AND account_index = ?", w, index).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return toModel(saved), nil
}

func (s *Store) Get(ctx context.Context, wallet string, index int64) (*models.AccountCredential, error) {
	w, err := service.Key(wallet, index)
	if err != nil {
		return nil, err
	}

	var row credentialRow
	err = s.db.WithContext(ctx).
		Where("wallet_address = ? AND account_index = ?", w, index).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%d", models.ErrCredentialNotFound, w, index)
		}
		return nil, fmt.Errorf("sqlite.GetCredential: %w", err)
	}
	return toModel(row), nil
}

func toModel(row credentialRow) *models.AccountCredential {
	return &models.AccountCredential{
		WalletAddress:   row.WalletAddress,
		AccountIndex:    row.AccountIndex,
		APIKey:          row.APIKey,
		StarkPrivateKey: row.StarkPrivateKey,
		StarkPublicKey:  row.StarkPublicKey,
		Vault:           row.Vault,
	}
}
