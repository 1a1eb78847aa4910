package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stark_bridge/internal/models"
)

const wallet = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

func TestMemoryWalletCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.Upsert(ctx, wallet, 0, models.CredentialPatch{APIKey: models.Ptr("key-1")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rec, err := s.Get(ctx, "0xabcdef0123456789abcdef0123456789abcdef01", 0)
	if err != nil {
		t.Fatalf("get lower: %v", err)
	}
	if rec.WalletAddress != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("wallet not normalised: %s", rec.WalletAddress)
	}
	if !rec.HasAPIKey() || *rec.APIKey != "key-1" {
		t.Fatalf("unexpected api key: %+v", rec)
	}
}

func TestMemoryMergeKeepsExistingFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, _ = s.Upsert(ctx, wallet, 1, models.CredentialPatch{
		StarkPrivateKey: models.Ptr("0x1"),
		StarkPublicKey:  models.Ptr("0x2"),
		Vault:           models.Ptr(int64(42)),
	})
	rec, err := s.Upsert(ctx, wallet, 1, models.CredentialPatch{APIKey: models.Ptr("k")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !rec.HasStarkKeys() || !rec.HasVault() || *rec.Vault != 42 || !rec.HasAPIKey() {
		t.Fatalf("fields lost on merge: %+v", rec)
	}

	// пустой patch ничего не стирает
	rec, _ = s.Upsert(ctx, wallet, 1, models.CredentialPatch{})
	if !rec.HasStarkKeys() || !rec.HasAPIKey() {
		t.Fatalf("empty patch erased fields: %+v", rec)
	}
}

func TestMemoryIndexesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, _ = s.Upsert(ctx, wallet, 0, models.CredentialPatch{APIKey: models.Ptr("zero")})
	if _, err := s.Get(ctx, wallet, 1); !errors.Is(err, models.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	rec, _ := s.Upsert(ctx, wallet, 0, models.CredentialPatch{APIKey: models.Ptr("orig")})
	*rec.APIKey = "mutated"

	got, _ := s.Get(ctx, wallet, 0)
	if *got.APIKey != "orig" {
		t.Fatalf("store leaked internal pointer: %s", *got.APIKey)
	}
}

func TestMemoryConcurrentUpsertsMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Upsert(ctx, wallet, 3, models.CredentialPatch{APIKey: models.Ptr("k")})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Upsert(ctx, wallet, 3, models.CredentialPatch{Vault: models.Ptr(int64(7))})
		}()
	}
	wg.Wait()

	rec, err := s.Get(ctx, wallet, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.HasAPIKey() || !rec.HasVault() {
		t.Fatalf("concurrent merge lost a field: %+v", rec)
	}
}

func TestMemoryRejectsBadKey(t *testing.T) {
	s := NewMemory()
	if _, err := s.Upsert(context.Background(), "  ", 0, models.CredentialPatch{}); err == nil {
		t.Fatalf("empty wallet accepted")
	}
	if _, err := s.Upsert(context.Background(), wallet, -1, models.CredentialPatch{}); err == nil {
		t.Fatalf("negative index accepted")
	}
}
