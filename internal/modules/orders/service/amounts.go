package service

import (
	"math/big"

	"stark_bridge/internal/models"

	"github.com/shopspring/decimal"
)

// Amounts: суммы ордера в единицах L2, уже со знаком.
type Amounts struct {
	Synthetic  *big.Int
	Collateral *big.Int
	Fee        *big.Int
}

func (a Amounts) Debugging() models.DebuggingAmounts {
	return models.DebuggingAmounts{
		CollateralAmount: a.Collateral.String(),
		FeeAmount:        a.Fee.String(),
		SyntheticAmount:  a.Synthetic.String(),
	}
}

// ComputeAmounts переводит qty/price в целые суммы L2.
// Покупка платит коллатерал (округление вверх, минус), продажа получает (вниз, плюс).
// Комиссия всегда вверх.
func ComputeAmounts(l2 models.L2Config, side models.OrderSide, qty, price, feeRate decimal.Decimal) Amounts {
	synthRes := decimal.NewFromInt(l2.SyntheticResolution)
	collRes := decimal.NewFromInt(l2.CollateralResolution)

	synthetic := qty.Mul(synthRes)
	collateral := qty.Mul(price).Mul(collRes)
	fee := feeRate.Mul(qty.Mul(price).Abs()).Mul(collRes).Ceil()

	if side == models.SideBuy {
		synthetic = synthetic.Ceil()
		collateral = collateral.Ceil().Neg()
	} else {
		synthetic = synthetic.Floor().Neg()
		collateral = collateral.Floor()
	}

	return Amounts{
		Synthetic:  synthetic.BigInt(),
		Collateral: collateral.BigInt(),
		Fee:        fee.BigInt(),
	}
}
