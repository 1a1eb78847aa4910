package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Market: описание рынка из /info/markets.
type Market struct {
	Name                     string        `json:"name"`
	AssetName                string        `json:"assetName"`
	AssetPrecision           int           `json:"assetPrecision"`
	CollateralAssetName      string        `json:"collateralAssetName"`
	CollateralAssetPrecision int           `json:"collateralAssetPrecision"`
	Active                   bool          `json:"active"`
	Status                   string        `json:"status,omitempty"`
	TradingConfig            TradingConfig `json:"tradingConfig"`
	L2Config                 L2Config      `json:"l2Config"`
}

// TradingConfig: правила точности и лимиты рынка.
type TradingConfig struct {
	MinOrderSize        decimal.Decimal `json:"minOrderSize"`
	MinOrderSizeChange  decimal.Decimal `json:"minOrderSizeChange"`
	MinPriceChange      decimal.Decimal `json:"minPriceChange"`
	MaxMarketOrderValue decimal.Decimal `json:"maxMarketOrderValue"`
	MaxLimitOrderValue  decimal.Decimal `json:"maxLimitOrderValue"`
	MaxPositionValue    decimal.Decimal `json:"maxPositionValue"`
	MaxLeverage         decimal.Decimal `json:"maxLeverage"`
	MaxNumOrders        FlexInt         `json:"maxNumOrders"`
	LimitPriceCap       decimal.Decimal `json:"limitPriceCap"`
	LimitPriceFloor     decimal.Decimal `json:"limitPriceFloor"`
}

// L2Config: идентификаторы активов и разрешения на стороне L2.
type L2Config struct {
	Type                 string `json:"type"`
	CollateralID         string `json:"collateralId"`
	CollateralResolution int64  `json:"collateralResolution"`
	SyntheticID          string `json:"syntheticId"`
	SyntheticResolution  int64  `json:"syntheticResolution"`
}

// Validate: без этих полей ни округлить, ни подписать ордер нельзя.
func (m *Market) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("market: empty name")
	}
	tc := m.TradingConfig
	if !tc.MinOrderSizeChange.IsPositive() || !tc.MinPriceChange.IsPositive() {
		return fmt.Errorf("market %s: non-positive size/price step", m.Name)
	}
	if m.L2Config.CollateralResolution <= 0 || m.L2Config.SyntheticResolution <= 0 {
		return fmt.Errorf("market %s: non-positive l2 resolution", m.Name)
	}
	if m.L2Config.CollateralID == "" || m.L2Config.SyntheticID == "" {
		return fmt.Errorf("market %s: missing l2 asset ids", m.Name)
	}
	return nil
}

// RoundPrice: к ближайшему шагу цены, половина вверх.
func (tc TradingConfig) RoundPrice(price decimal.Decimal) decimal.Decimal {
	return roundToStep(price, tc.MinPriceChange)
}

// RoundQty: к ближайшему шагу размера, половина вверх.
func (tc TradingConfig) RoundQty(qty decimal.Decimal) decimal.Decimal {
	return roundToStep(qty, tc.MinOrderSizeChange)
}

func roundToStep(v, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return v
	}
	steps := v.Div(step).Round(0)
	return steps.Mul(step)
}
