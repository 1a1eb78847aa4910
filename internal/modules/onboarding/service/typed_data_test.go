package service

import (
	"crypto/ecdsa"
	"os"
	"testing"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/logger"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}

var fixedNow = time.Date(2024, 7, 30, 16, 1, 2, 123000000, time.UTC)

func testBuilder() *TypedDataBuilder {
	return NewTypedDataBuilder("starknet.sepolia.extended.exchange", "https://api.starknet.sepolia.extended.exchange",
		func() time.Time { return fixedNow })
}

func signTyped(t *testing.T, key *ecdsa.PrivateKey, msg models.TypedMessage) string {
	t.Helper()
	digest, err := Digest(msg)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig)
}

func TestBuildMessages(t *testing.T) {
	wallet := "0x19e7e376e7c213b7e7e7e46cc70a5dd086daff2a"
	resp, err := testBuilder().Build(wallet, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if resp.TypedData.PrimaryType != "AccountCreation" || resp.RegistrationTypedData.PrimaryType != "AccountRegistration" {
		t.Fatalf("unexpected primary types")
	}
	if _, ok := resp.TypedData.Message["time"]; ok {
		t.Fatalf("AccountCreation must not carry time")
	}
	if resp.RegistrationTime != "2024-07-30T16:01:02Z" {
		t.Fatalf("registration time %q", resp.RegistrationTime)
	}
	if resp.RegistrationTypedData.Message["time"] != resp.RegistrationTime {
		t.Fatalf("registration message time mismatch")
	}
	if resp.RegistrationTypedData.Message["action"] != "REGISTER" ||
		resp.RegistrationTypedData.Message["host"] != "https://api.starknet.sepolia.extended.exchange" {
		t.Fatalf("unexpected registration message %+v", resp.RegistrationTypedData.Message)
	}
	if resp.TypedData.Domain["name"] != "starknet.sepolia.extended.exchange" {
		t.Fatalf("unexpected domain %+v", resp.TypedData.Domain)
	}
	if resp.CreationIssuedAt == resp.RegistrationTime {
		t.Fatalf("timestamps must be distinct values")
	}
	if len(resp.RegistrationTypedData.Types["AccountRegistration"]) != 6 {
		t.Fatalf("registration type must have 6 fields")
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	if _, err := testBuilder().Build("not-a-wallet", 0); err == nil {
		t.Fatalf("bad wallet accepted")
	}
	if _, err := testBuilder().Build("0x19e7e376e7c213b7e7e7e46cc70a5dd086daff2a", 128); err == nil {
		t.Fatalf("index outside int8 accepted")
	}
}

func TestRecoverSigner(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := testBuilder().AccountCreation(wallet, 0)
	sig := signTyped(t, key, msg)

	if err := VerifySignature(msg, sig, wallet); err != nil {
		t.Fatalf("verify: %v", err)
	}

	other := testBuilder().AccountCreation(wallet, 1)
	if err := VerifySignature(other, sig, wallet); err == nil {
		t.Fatalf("signature verified for another account index")
	}
}
