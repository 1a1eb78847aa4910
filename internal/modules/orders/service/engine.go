package service

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"

	"stark_bridge/internal/models"
	credentials "stark_bridge/internal/modules/credentials/service"
	extended "stark_bridge/internal/modules/extended_client/service"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/metrics"
	"stark_bridge/pkg/stark"

	"github.com/shopspring/decimal"
)

const (
	DefaultExpiry = 14 * 24 * time.Hour

	maxNonce = 1 << 31
)

var DefaultFeeRate = decimal.RequireFromString("0.0005")

type MarketSource interface {
	Get(ctx context.Context, name string) (*models.Market, error)
}

// Exchange: приватные вызовы биржи от имени аккаунта.
type Exchange interface {
	GetAccountInfo(ctx context.Context, apiKey string) (*extended.AccountInfo, error)
	PlaceOrder(ctx context.Context, apiKey string, order any) ([]byte, error)
	GetPrivate(ctx context.Context, apiKey, path string, query url.Values) ([]byte, error)
}

// Network: куда подписываем и отправляем: chain id домена и клиент этой сети.
type Network struct {
	Name     string
	ChainID  string
	Exchange Exchange
}

type Options struct {
	Expiry         time.Duration
	DefaultFeeRate decimal.Decimal
}

// Engine собирает и подписывает ордера. Метаданные рынков общие для всех сетей, домен подписи, свой.
type Engine struct {
	markets MarketSource
	store   credentials.Store
	active  Network
	mainnet Network
	opts    Options

	now   func() time.Time
	nonce func() int64
}

func NewEngine(markets MarketSource, store credentials.Store, active, mainnet Network, opts Options) *Engine {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if !opts.DefaultFeeRate.IsPositive() {
		opts.DefaultFeeRate = DefaultFeeRate
	}
	return &Engine{
		markets: markets,
		store:   store,
		active:  active,
		mainnet: mainnet,
		opts:    opts,
		now:     time.Now,
		nonce:   func() int64 { return rand.Int64N(maxNonce) },
	}
}

// WithClock и WithNonce, для тестов.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) WithNonce(nonce func() int64) *Engine {
	e.nonce = nonce
	return e
}

func (e *Engine) network(useMainnet bool) Network {
	if useMainnet {
		return e.mainnet
	}
	return e.active
}

// BuildRequest: что подписать и от чьего имени.
type BuildRequest struct {
	WalletAddress string
	AccountIndex  int64
	UseMainnet    bool
	Intent        models.OrderIntent
}

// Build собирает подписанный ордер. В сеть ничего не отправляет, кроме добора vault.
func (e *Engine) Build(ctx context.Context, req *BuildRequest) (*models.SignedOrder, error) {
	cred, err := e.store.Get(ctx, req.WalletAddress, req.AccountIndex)
	if err != nil {
		return nil, err
	}
	if !cred.HasStarkKeys() {
		return nil, models.ErrStarkKeysMissing
	}

	intent, err := e.normalizeIntent(req.Intent)
	if err != nil {
		return nil, err
	}

	net := e.network(req.UseMainnet)
	vault, err := e.resolveVault(ctx, net, cred)
	if err != nil {
		return nil, err
	}

	market, err := e.markets.Get(ctx, intent.Market)
	if err != nil {
		return nil, err
	}

	keys, err := keysFromCredential(cred)
	if err != nil {
		return nil, err
	}

	order, err := e.sign(intent, market, keys, vault, net)
	if err != nil {
		return nil, err
	}
	metrics.OrderSigned(market.Name, string(intent.Side))
	logger.Info("[ORDER-BUILD] wallet=%s account=%d market=%s side=%s qty=%s price=%s net=%s",
		cred.WalletAddress, cred.AccountIndex, order.Market, order.Side, order.Qty, order.Price, net.Name)
	return order, nil
}

// resolveVault: ноль или пусто, добираем l2Vault из /user/account/info и сохраняем.
func (e *Engine) resolveVault(ctx context.Context, net Network, cred *models.AccountCredential) (int64, error) {
	if cred.HasVault() {
		return *cred.Vault, nil
	}
	if !cred.HasAPIKey() {
		return 0, fmt.Errorf("%w: %w", models.ErrVaultUnresolved, models.ErrAPIKeyNotFound)
	}

	info, err := net.Exchange.GetAccountInfo(ctx, *cred.APIKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrVaultUnresolved, err)
	}
	if !info.L2Vault.Valid || info.L2Vault.Value <= 0 {
		return 0, fmt.Errorf("%w: account info has no l2Vault", models.ErrVaultUnresolved)
	}

	vault := info.L2Vault.Value
	if _, err := e.store.Upsert(ctx, cred.WalletAddress, cred.AccountIndex, models.CredentialPatch{Vault: &vault}); err != nil {
		return 0, fmt.Errorf("store vault: %w", err)
	}
	logger.Info("[ORDER-BUILD] wallet=%s account=%d vault resolved from account info: %d",
		cred.WalletAddress, cred.AccountIndex, vault)
	return vault, nil
}

func (e *Engine) normalizeIntent(in models.OrderIntent) (models.OrderIntent, error) {
	out := in
	if out.Market == "" {
		return out, fmt.Errorf("%w: empty market", models.ErrInvalidOrder)
	}
	if out.Side != models.SideBuy && out.Side != models.SideSell {
		return out, fmt.Errorf("%w: side %q", models.ErrInvalidOrder, in.Side)
	}
	if !out.Qty.IsPositive() || !out.Price.IsPositive() {
		return out, fmt.Errorf("%w: qty and price must be positive", models.ErrInvalidOrder)
	}

	switch out.Type {
	case "":
		out.Type = models.OrderTypeLimit
	case models.OrderTypeLimit, models.OrderTypeMarket:
	default:
		return out, fmt.Errorf("%w: type %q", models.ErrInvalidOrder, in.Type)
	}
	switch out.TimeInForce {
	case "":
		out.TimeInForce = models.TimeInForceGTT
	case models.TimeInForceGTT, models.TimeInForceIOC, models.TimeInForceFOK:
	default:
		return out, fmt.Errorf("%w: time in force %q", models.ErrInvalidOrder, in.TimeInForce)
	}
	switch out.SelfTrade {
	case "":
		out.SelfTrade = models.SelfTradeAccount
	case models.SelfTradeDisabled, models.SelfTradeAccount, models.SelfTradeClient:
	default:
		return out, fmt.Errorf("%w: self trade protection %q", models.ErrInvalidOrder, in.SelfTrade)
	}
	switch out.TpSlType {
	case "", models.TpSlTypeOrder, models.TpSlTypePosition:
	default:
		return out, fmt.Errorf("%w: tp/sl type %q", models.ErrInvalidOrder, in.TpSlType)
	}

	if out.FeeRate == nil {
		rate := e.opts.DefaultFeeRate
		out.FeeRate = &rate
	} else if out.FeeRate.IsNegative() {
		return out, fmt.Errorf("%w: negative fee rate", models.ErrInvalidOrder)
	}
	if out.ExpireAt == nil {
		exp := e.now().Add(e.opts.Expiry)
		out.ExpireAt = &exp
	}
	return out, nil
}

func keysFromCredential(cred *models.AccountCredential) (*stark.KeyPair, error) {
	priv, err := stark.ParseHex(*cred.StarkPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStarkKeysMissing, err)
	}
	keys, err := stark.KeyPairFromPrivate(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStarkKeysMissing, err)
	}
	pub, err := stark.ParseHex(*cred.StarkPublicKey)
	if err != nil || pub.Cmp(keys.Public) != 0 {
		return nil, fmt.Errorf("%w: stored public key does not match private key", models.ErrStarkKeysMissing)
	}
	return keys, nil
}

// signingContext: всё, что общее у ордера и его ног.
type signingContext struct {
	market  *models.Market
	keys    *stark.KeyPair
	domain  stark.Domain
	vault   int64
	side    models.OrderSide
	qty     decimal.Decimal
	feeRate decimal.Decimal
	nonce   int64
	expSec  int64

	synthID, collID *big.Int
}

// settle хеширует и подписывает суммы, возвращает хеш и settlement.
func (sc *signingContext) settle(a Amounts) (*big.Int, models.Settlement, error) {
	hash, err := stark.OrderMessageHash(stark.OrderParams{
		PositionID:       sc.vault,
		SyntheticID:      sc.synthID,
		SyntheticAmount:  a.Synthetic,
		CollateralID:     sc.collID,
		CollateralAmount: a.Collateral,
		FeeID:            sc.collID,
		FeeAmount:        a.Fee,
		ExpirationSec:    sc.expSec,
		Salt:             sc.nonce,
	}, sc.domain, sc.keys.Public)
	if err != nil {
		return nil, models.Settlement{}, err
	}
	r, s, err := sc.keys.Sign(hash)
	if err != nil {
		return nil, models.Settlement{}, err
	}
	return hash, models.Settlement{
		Signature:          models.StarkSignature{R: stark.ToHex(r), S: stark.ToHex(s)},
		StarkKey:           sc.keys.PublicHex(),
		CollateralPosition: strconv.FormatInt(sc.vault, 10),
	}, nil
}

// expirationSeconds: секунды с округлением вверх плюс буфер на расчёт.
func expirationSeconds(t time.Time) int64 {
	ms := t.UnixMilli()
	sec := ms / 1000
	if ms%1000 != 0 {
		sec++
	}
	return sec + int64(stark.SettlementBuffer/time.Second)
}

func (e *Engine) sign(intent models.OrderIntent, market *models.Market, keys *stark.KeyPair, vault int64, net Network) (*models.SignedOrder, error) {
	if err := market.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnknownMarket, err)
	}
	tc := market.TradingConfig

	qty := tc.RoundQty(intent.Qty)
	price := tc.RoundPrice(intent.Price)
	if !qty.IsPositive() || qty.LessThan(tc.MinOrderSize) {
		return nil, fmt.Errorf("%w: qty %s < %s", models.ErrOrderTooSmall, qty, tc.MinOrderSize)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price rounds to zero", models.ErrInvalidOrder)
	}

	tp, err := normalizeLeg(tc, intent.TakeProfit)
	if err != nil {
		return nil, err
	}
	sl, err := normalizeLeg(tc, intent.StopLoss)
	if err != nil {
		return nil, err
	}

	synthID, err := stark.ParseHex(market.L2Config.SyntheticID)
	if err != nil {
		return nil, fmt.Errorf("%w: synthetic id: %v", models.ErrUnknownMarket, err)
	}
	collID, err := stark.ParseHex(market.L2Config.CollateralID)
	if err != nil {
		return nil, fmt.Errorf("%w: collateral id: %v", models.ErrUnknownMarket, err)
	}

	sc := &signingContext{
		market:  market,
		keys:    keys,
		domain:  stark.PerpetualsDomain(net.ChainID),
		vault:   vault,
		side:    intent.Side,
		qty:     qty,
		feeRate: *intent.FeeRate,
		nonce:   e.nonce(),
		expSec:  expirationSeconds(*intent.ExpireAt),
		synthID: synthID,
		collID:  collID,
	}

	amounts := ComputeAmounts(market.L2Config, intent.Side, qty, price, sc.feeRate)
	hash, settlement, err := sc.settle(amounts)
	if err != nil {
		return nil, err
	}

	order := &models.SignedOrder{
		ID:                       hash.String(),
		Market:                   market.Name,
		Type:                     intent.Type,
		Side:                     intent.Side,
		Qty:                      qty.String(),
		Price:                    price.String(),
		ReduceOnly:               intent.ReduceOnly,
		PostOnly:                 intent.PostOnly,
		TimeInForce:              intent.TimeInForce,
		ExpiryEpochMillis:        intent.ExpireAt.UnixMilli(),
		Fee:                      sc.feeRate.String(),
		Nonce:                    strconv.FormatInt(sc.nonce, 10),
		SelfTradeProtectionLevel: intent.SelfTrade,
		CancelID:                 intent.CancelID,
		Settlement:               settlement,
		DebuggingAmounts:         amounts.Debugging(),
	}
	if intent.ExternalID != "" {
		order.ID = intent.ExternalID
	}

	if order.TakeProfit, err = e.signLeg(sc, tp); err != nil {
		return nil, err
	}
	if order.StopLoss, err = e.signLeg(sc, sl); err != nil {
		return nil, err
	}
	// без ног тип не отправляем
	if tp != nil || sl != nil {
		order.TpSlType = intent.TpSlType
		if order.TpSlType == "" {
			order.TpSlType = models.TpSlTypeOrder
		}
	}
	return order, nil
}
