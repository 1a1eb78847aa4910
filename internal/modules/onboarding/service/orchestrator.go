package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stark_bridge/internal/models"
	credentials "stark_bridge/internal/modules/credentials/service"
	"stark_bridge/internal/notify"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/metrics"
	"stark_bridge/pkg/stark"

	"github.com/google/uuid"
)

type OnboardClient interface {
	Onboard(ctx context.Context, payload *models.OnboardingPayload) (map[string]any, error)
}

type Options struct {
	ReferralCode      string
	VerifyL1Signature bool
}

// Orchestrator: онбординг кошелька: вывод L2 ключей, регистрация на бирже, сохранение учётки.
type Orchestrator struct {
	builder  *TypedDataBuilder
	client   OnboardClient
	store    credentials.Store
	notifier notify.Notifier
	opts     Options
}

func NewOrchestrator(
	builder *TypedDataBuilder,
	client OnboardClient,
	store credentials.Store,
	notifier notify.Notifier,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		builder:  builder,
		client:   client,
		store:    store,
		notifier: notifier,
		opts:     opts,
	}
}

func (o *Orchestrator) ReferralCode() string { return o.opts.ReferralCode }

func (o *Orchestrator) Start(_ context.Context, req *models.OnboardingStartRequest) (*models.OnboardingStartResponse, error) {
	rid := requestID()
	logger.Info("[ONBOARD-START:%s] wallet=%s account=%d", rid, req.WalletAddress, req.AccountIndex)

	resp, err := o.builder.Build(req.WalletAddress, req.AccountIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrOnboardingFailed, err)
	}
	logger.Debug("[ONBOARD-START:%s] registration time=%s host=%s", rid, resp.RegistrationTime, resp.RegistrationHost)
	return resp, nil
}

// Complete выводит ключи из l1_signature, регистрирует аккаунт и только после ответа OK пишет в хранилище.
// Любая ошибка оборачивает ErrOnboardingFailed, отказ биржи дополнительно ErrOnboardingRejected.
func (o *Orchestrator) Complete(ctx context.Context, req *models.OnboardingCompleteRequest) (out *models.OnboardingCompleteResponse, err error) {
	rid := requestID()
	defer func() {
		if err != nil {
			metrics.Onboarding("failed")
			logger.Error("[ONBOARD-COMPLETE:%s] %v", rid, err)
			if !errors.Is(err, models.ErrOnboardingFailed) {
				err = fmt.Errorf("%w: %w", models.ErrOnboardingFailed, err)
			}
			return
		}
		metrics.Onboarding("ok")
	}()

	logger.Info("[ONBOARD-COMPLETE:%s] wallet=%s account=%d", rid, req.WalletAddress, req.AccountIndex)

	if err := ValidateAccount(req.WalletAddress, req.AccountIndex); err != nil {
		return nil, err
	}

	kp, err := stark.KeyPairFromEthSignature(req.L1Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidSignatureFormat, err)
	}

	if o.opts.VerifyL1Signature {
		if err := o.verify(req); err != nil {
			return nil, err
		}
	}

	walletInt, err := stark.ParseHex(req.WalletAddress)
	if err != nil {
		return nil, err
	}
	r, s, err := kp.Sign(stark.Pedersen(walletInt, kp.Public))
	if err != nil {
		return nil, err
	}

	referral := req.ReferralCode
	if referral == "" {
		referral = o.opts.ReferralCode
	}

	payload := &models.OnboardingPayload{
		L1Signature: req.RegistrationSignature,
		L2Key:       kp.PublicHex(),
		L2Signature: models.StarkSignature{R: stark.ToHex(r), S: stark.ToHex(s)},
		AccountCreation: models.AccountCreationPayload{
			AccountIndex: req.AccountIndex,
			Wallet:       req.WalletAddress,
			TosAccepted:  true,
			Time:         req.RegistrationTime,
			Action:       actionRegister,
			Host:         req.RegistrationHost,
		},
		ReferralCode: referral,
	}

	data, err := o.client.Onboard(ctx, payload)
	if err != nil {
		if ue, ok := models.AsUpstream(err); ok {
			o.notifier.Sendf("onboarding rejected: wallet=%s account=%d http=%d", req.WalletAddress, req.AccountIndex, ue.Status)
			return nil, fmt.Errorf("%w: %w: %w", models.ErrOnboardingFailed, models.ErrOnboardingRejected, err)
		}
		return nil, err
	}

	defaultAccount, _ := data["defaultAccount"].(map[string]any)
	vault, found := ExtractVault(defaultAccount)
	if !found {
		keys := make([]string, 0, len(defaultAccount))
		for k := range defaultAccount {
			keys = append(keys, k)
		}
		logger.Warn("[ONBOARD-COMPLETE:%s] no vault in response, keys=%v; will resolve on first order", rid, keys)
	}

	patch := models.CredentialPatch{
		StarkPrivateKey: models.Ptr(kp.PrivateHex()),
		StarkPublicKey:  models.Ptr(kp.PublicHex()),
	}
	if found {
		patch.Vault = models.Ptr(vault)
	}
	if _, err := o.store.Upsert(ctx, req.WalletAddress, req.AccountIndex, patch); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}

	logger.Info("[ONBOARD-COMPLETE:%s] stored wallet=%s account=%d vault=%v", rid,
		models.NormalizeWallet(req.WalletAddress), req.AccountIndex, patch.Vault != nil)
	o.notifier.Sendf("onboarded wallet=%s account=%d", models.NormalizeWallet(req.WalletAddress), req.AccountIndex)

	return &models.OnboardingCompleteResponse{
		StarkPrivateKey: kp.PrivateHex(),
		StarkPublicKey:  kp.PublicHex(),
		AccountIndex:    req.AccountIndex,
		WalletAddress:   req.WalletAddress,
		Vault:           patch.Vault,
	}, nil
}

// verify: обе L1 подписи должны принадлежать кошельку.
func (o *Orchestrator) verify(req *models.OnboardingCompleteRequest) error {
	creation := o.builder.AccountCreation(req.WalletAddress, req.AccountIndex)
	if err := VerifySignature(creation, req.L1Signature, req.WalletAddress); err != nil {
		return fmt.Errorf("%w: account creation: %w", models.ErrInvalidSignatureFormat, err)
	}
	registration := o.builder.AccountRegistration(req.WalletAddress, req.AccountIndex, req.RegistrationTime, req.RegistrationHost)
	if err := VerifySignature(registration, req.RegistrationSignature, req.WalletAddress); err != nil {
		return fmt.Errorf("%w: account registration: %w", models.ErrInvalidSignatureFormat, err)
	}
	return nil
}

var vaultFields = []string{"l2Vault", "positionId", "vault"}

// ExtractVault ищет vault по полям в порядке приоритета. Пустые и нулевые значения пропускаются.
func ExtractVault(account map[string]any) (int64, bool) {
	for _, field := range vaultFields {
		if v, ok := toInt64(account[field]); ok && v != 0 {
			return v, true
		}
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	case interface{ Int64() (int64, error) }:
		n, err := x.Int64()
		return n, err == nil
	}
	return 0, false
}

func requestID() string {
	return uuid.NewString()[:8]
}
