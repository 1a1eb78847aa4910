package service

import (
	"fmt"

	"stark_bridge/internal/models"

	"github.com/shopspring/decimal"
)

// normalizedLeg: нога после дефолтов и округления.
type normalizedLeg struct {
	TriggerPrice     decimal.Decimal
	TriggerPriceType models.TriggerPriceType
	Price            decimal.Decimal
	PriceType        models.PriceType
}

// normalizeLeg добивает параметры ноги дефолтами.
// Исполнение по рынку для условных ног биржа не принимает, поэтому всегда LIMIT.
func normalizeLeg(tc models.TradingConfig, p *models.TpSlParam) (*normalizedLeg, error) {
	if p == nil {
		return nil, nil
	}
	if !p.TriggerPrice.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive trigger price", models.ErrInvalidOrder)
	}

	leg := &normalizedLeg{
		TriggerPrice:     tc.RoundPrice(p.TriggerPrice),
		TriggerPriceType: p.TriggerPriceType,
		PriceType:        models.PriceTypeLimit,
	}
	switch leg.TriggerPriceType {
	case "":
		leg.TriggerPriceType = models.TriggerPriceLast
	case models.TriggerPriceLast, models.TriggerPriceMark, models.TriggerPriceIndex:
	default:
		return nil, fmt.Errorf("%w: trigger price type %q", models.ErrInvalidOrder, p.TriggerPriceType)
	}

	leg.Price = leg.TriggerPrice
	if p.Price != nil {
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("%w: non-positive leg price", models.ErrInvalidOrder)
		}
		leg.Price = tc.RoundPrice(*p.Price)
	}
	return leg, nil
}

// signLeg подписывает ногу в контексте родителя: та же qty, nonce, срок и vault, сторона противоположная.
func (e *Engine) signLeg(sc *signingContext, leg *normalizedLeg) (*models.TpSlLeg, error) {
	if leg == nil {
		return nil, nil
	}
	amounts := ComputeAmounts(sc.market.L2Config, sc.side.Opposite(), sc.qty, leg.Price, sc.feeRate)
	_, settlement, err := sc.settle(amounts)
	if err != nil {
		return nil, err
	}
	return &models.TpSlLeg{
		TriggerPrice:     leg.TriggerPrice.String(),
		TriggerPriceType: leg.TriggerPriceType,
		Price:            leg.Price.String(),
		PriceType:        leg.PriceType,
		Settlement:       settlement,
		DebuggingAmounts: amounts.Debugging(),
	}, nil
}
