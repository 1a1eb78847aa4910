package service

import (
	"context"
	"errors"
	"testing"

	"stark_bridge/internal/models"
)

func TestCreateAndPlaceRequiresAPIKey(t *testing.T) {
	f := newFixture(t, models.Ptr[int64](10002), false)

	_, _, err := f.engine.CreateAndPlace(context.Background(), &BuildRequest{WalletAddress: wallet, Intent: buyIntent()})
	if !errors.Is(err, models.ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound, got %v", err)
	}
	if len(f.active.placed) != 0 {
		t.Fatalf("nothing must be placed")
	}
}

func TestCreateAndPlaceRoutesByNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Ptr[int64](10002), true)

	if _, _, err := f.engine.CreateAndPlace(ctx, &BuildRequest{WalletAddress: wallet, Intent: buyIntent()}); err != nil {
		t.Fatal(err)
	}
	if _, order, err := f.engine.CreateAndPlace(ctx, &BuildRequest{WalletAddress: wallet, UseMainnet: true, Intent: buyIntent()}); err != nil || order == nil {
		t.Fatalf("mainnet: %v", err)
	}
	if len(f.active.placed) != 1 || len(f.mainnet.placed) != 1 {
		t.Fatalf("placed active=%d mainnet=%d", len(f.active.placed), len(f.mainnet.placed))
	}
	if _, ok := f.mainnet.placed[0].(*models.SignedOrder); !ok {
		t.Fatalf("signed order expected, got %T", f.mainnet.placed[0])
	}
}

func TestCreateAndPlaceUpstreamErrorPassesThrough(t *testing.T) {
	f := newFixture(t, models.Ptr[int64](10002), true)
	f.active.placeErr = &models.UpstreamError{Op: "place_order", Status: 422, Body: `{"error":"bad"}`}

	_, order, err := f.engine.CreateAndPlace(context.Background(), &BuildRequest{WalletAddress: wallet, Intent: buyIntent()})
	ue, ok := models.AsUpstream(err)
	if !ok || ue.Status != 422 {
		t.Fatalf("expected upstream 422, got %v", err)
	}
	if order == nil {
		t.Fatalf("signed order should still be returned")
	}
}

func TestPlaceAndPrivateUseStoredKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Ptr[int64](10002), true)

	if _, err := f.engine.Place(ctx, wallet, 0, map[string]any{"id": "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Private(ctx, wallet, 0, PathPositions, nil); err != nil {
		t.Fatal(err)
	}
	if f.active.privateHit != PathPositions {
		t.Fatalf("proxied path %q", f.active.privateHit)
	}

	if _, err := f.engine.Private(ctx, wallet, 9, PathBalance, nil); !errors.Is(err, models.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}
