package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Opposite: сторона закрывающей ноги TP/SL.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type TimeInForce string

const (
	TimeInForceGTT TimeInForce = "GTT"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

type SelfTradeProtectionLevel string

const (
	SelfTradeDisabled SelfTradeProtectionLevel = "DISABLED"
	SelfTradeAccount  SelfTradeProtectionLevel = "ACCOUNT"
	SelfTradeClient   SelfTradeProtectionLevel = "CLIENT"
)

type TriggerPriceType string

const (
	TriggerPriceLast  TriggerPriceType = "LAST"
	TriggerPriceMark  TriggerPriceType = "MARK"
	TriggerPriceIndex TriggerPriceType = "INDEX"
)

type PriceType string

const (
	PriceTypeLimit  PriceType = "LIMIT"
	PriceTypeMarket PriceType = "MARKET"
)

type TpSlType string

const (
	TpSlTypeOrder    TpSlType = "ORDER"
	TpSlTypePosition TpSlType = "POSITION"
)

// TpSlParam: параметры ноги так, как их прислал клиент. Пустые поля добиваются дефолтами.
type TpSlParam struct {
	TriggerPrice     decimal.Decimal  `json:"trigger_price"`
	TriggerPriceType TriggerPriceType `json:"trigger_price_type,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	PriceType        PriceType        `json:"price_type,omitempty"`
}

// OrderIntent: один ордер до подписи.
type OrderIntent struct {
	Market      string                   `json:"market"`
	Side        OrderSide                `json:"side"`
	Qty         decimal.Decimal          `json:"qty"`
	Price       decimal.Decimal          `json:"price"`
	Type        OrderType                `json:"type,omitempty"`
	PostOnly    bool                     `json:"post_only"`
	ReduceOnly  bool                     `json:"reduce_only"`
	TimeInForce TimeInForce              `json:"time_in_force,omitempty"`
	ExpireAt    *time.Time               `json:"expire_at,omitempty"`
	FeeRate     *decimal.Decimal         `json:"fee_rate,omitempty"`
	SelfTrade   SelfTradeProtectionLevel `json:"self_trade_protection_level,omitempty"`
	ExternalID  string                   `json:"external_id,omitempty"`
	CancelID    string                   `json:"cancel_id,omitempty"`
	TpSlType    TpSlType                 `json:"tp_sl_type,omitempty"`
	TakeProfit  *TpSlParam               `json:"take_profit,omitempty"`
	StopLoss    *TpSlParam               `json:"stop_loss,omitempty"`
}

type StarkSignature struct {
	R string `json:"r"`
	S string `json:"s"`
}

// Settlement: подписанный конверт ордера или ноги.
type Settlement struct {
	Signature          StarkSignature `json:"signature"`
	StarkKey           string         `json:"starkKey"`
	CollateralPosition string         `json:"collateralPosition"`
}

type DebuggingAmounts struct {
	CollateralAmount string `json:"collateralAmount"`
	FeeAmount        string `json:"feeAmount"`
	SyntheticAmount  string `json:"syntheticAmount"`
}

// TpSlLeg: подписанная нога в теле ордера.
type TpSlLeg struct {
	TriggerPrice     string           `json:"triggerPrice"`
	TriggerPriceType TriggerPriceType `json:"triggerPriceType"`
	Price            string           `json:"price"`
	PriceType        PriceType        `json:"priceType"`
	Settlement       Settlement       `json:"settlement"`
	DebuggingAmounts DebuggingAmounts `json:"debuggingAmounts"`
}

// SignedOrder: тело для POST /user/order.
type SignedOrder struct {
	ID                       string                   `json:"id"`
	Market                   string                   `json:"market"`
	Type                     OrderType                `json:"type"`
	Side                     OrderSide                `json:"side"`
	Qty                      string                   `json:"qty"`
	Price                    string                   `json:"price"`
	ReduceOnly               bool                     `json:"reduceOnly"`
	PostOnly                 bool                     `json:"postOnly"`
	TimeInForce              TimeInForce              `json:"timeInForce"`
	ExpiryEpochMillis        int64                    `json:"expiryEpochMillis"`
	Fee                      string                   `json:"fee"`
	Nonce                    string                   `json:"nonce"`
	SelfTradeProtectionLevel SelfTradeProtectionLevel `json:"selfTradeProtectionLevel"`
	CancelID                 string                   `json:"cancelId,omitempty"`
	Settlement               Settlement               `json:"settlement"`
	TpSlType                 TpSlType                 `json:"tpSlType,omitempty"`
	TakeProfit               *TpSlLeg                 `json:"takeProfit,omitempty"`
	StopLoss                 *TpSlLeg                 `json:"stopLoss,omitempty"`
	DebuggingAmounts         DebuggingAmounts         `json:"debuggingAmounts"`
}
