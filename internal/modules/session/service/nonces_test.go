package service

import (
	"crypto/ecdsa"
	"errors"
	"os"
	"testing"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/logger"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}

func personalSign(t *testing.T, key *ecdsa.PrivateKey, msg string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	if err != nil {
		t.Fatal(err)
	}
	sig[64] += 27
	return hexutil.Encode(sig)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestStartVerify(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(key.PublicKey).Hex()
	n := NewNonces(time.Minute, nil)

	start, err := n.Start(&models.SessionStartRequest{WalletAddress: wallet})
	if err != nil {
		t.Fatal(err)
	}
	if start.Message != LoginMessage(start.Nonce, wallet) {
		t.Fatalf("message %q", start.Message)
	}

	req := &models.SessionVerifyRequest{
		WalletAddress: wallet,
		Nonce:         start.Nonce,
		Signature:     personalSign(t, key, start.Message),
	}
	resp, err := n.Verify(req)
	if err != nil || !resp.Verified {
		t.Fatalf("verify: %+v %v", resp, err)
	}

	// одноразовый
	if _, err := n.Verify(req); !errors.Is(err, models.ErrSessionNonceInvalid) {
		t.Fatalf("second verify: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(key.PublicKey).Hex()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := NewNonces(time.Minute, c.now)

	start, _ := n.Start(&models.SessionStartRequest{WalletAddress: wallet})
	c.t = c.t.Add(2 * time.Minute)

	_, err := n.Verify(&models.SessionVerifyRequest{
		WalletAddress: wallet,
		Nonce:         start.Nonce,
		Signature:     personalSign(t, key, start.Message),
	})
	if !errors.Is(err, models.ErrSessionNonceInvalid) {
		t.Fatalf("expected ErrSessionNonceInvalid, got %v", err)
	}
}

func TestVerifyWrongSigner(t *testing.T) {
	owner, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(owner.PublicKey).Hex()
	n := NewNonces(time.Minute, nil)

	start, _ := n.Start(&models.SessionStartRequest{WalletAddress: wallet})
	_, err := n.Verify(&models.SessionVerifyRequest{
		WalletAddress: wallet,
		Nonce:         start.Nonce,
		Signature:     personalSign(t, other, start.Message),
	})
	if !errors.Is(err, models.ErrInvalidSignatureFormat) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestRestartReplacesNonce(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(key.PublicKey).Hex()
	n := NewNonces(time.Minute, nil)

	first, _ := n.Start(&models.SessionStartRequest{WalletAddress: wallet})
	second, _ := n.Start(&models.SessionStartRequest{WalletAddress: wallet})

	_, err := n.Verify(&models.SessionVerifyRequest{
		WalletAddress: wallet,
		Nonce:         first.Nonce,
		Signature:     personalSign(t, key, first.Message),
	})
	if !errors.Is(err, models.ErrSessionNonceInvalid) {
		t.Fatalf("stale nonce accepted: %v", err)
	}
	if first.Nonce == second.Nonce {
		t.Fatalf("nonces must differ")
	}
}
