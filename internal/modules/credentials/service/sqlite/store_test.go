package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"stark_bridge/internal/models"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "creds.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqliteMergeUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, err := s.Upsert(ctx, "0xABCDEF", 0, models.CredentialPatch{
		StarkPrivateKey: models.Ptr("0x1"),
		StarkPublicKey:  models.Ptr("0x2"),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	rec, err := s.Upsert(ctx, "0xabcdef", 0, models.CredentialPatch{Vault: models.Ptr(int64(42))})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !rec.HasStarkKeys() || !rec.HasVault() || *rec.Vault != 42 {
		t.Fatalf("merge lost fields: %+v", rec)
	}
	if rec.WalletAddress != "0xabcdef" {
		t.Fatalf("wallet not lowercased: %s", rec.WalletAddress)
	}

	got, err := s.Get(ctx, "0xAbCdEf", 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.StarkPublicKey != "0x2" {
		t.Fatalf("unexpected public key %s", *got.StarkPublicKey)
	}
}

func TestSqliteGetNotFound(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get(context.Background(), "0xabc", 9); !errors.Is(err, models.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}
