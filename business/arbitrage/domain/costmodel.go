package domain

import (
	"github.com/shopspring/decimal"

	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/apperror"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// CostBreakdown is the itemized cost of a two-leg arbitrage trade. All
// percentages are of the trade amount; EstimatedProfit is in ADA.
type CostBreakdown struct {
	TradingFeePercent decimal.Decimal
	FixedFeePercent   decimal.Decimal
	TotalFeePercent   decimal.Decimal
	SlippagePercent   decimal.Decimal
	EstimatedProfit   decimal.Decimal
}

// CostModel computes net expected profitability for a candidate trade.
// It is a pure function set over fee structures and prices; the slippage
// estimator is pluggable.
type CostModel struct {
	estimateSlippage SlippageEstimator
}

// NewCostModel creates a CostModel with the given slippage estimator.
// A nil estimator uses DefaultSlippageEstimator.
func NewCostModel(estimator SlippageEstimator) *CostModel {
	if estimator == nil {
		estimator = DefaultSlippageEstimator
	}
	return &CostModel{estimateSlippage: estimator}
}

// Calculate computes the cost breakdown for buying at buyPrice on the
// buy venue and selling at sellPrice on the sell venue.
//
// tradeAmountADA is the capital committed in ADA. Prices are ADA per
// token. The percentage items (steps 1-4) exist for reporting and
// threshold comparison; the round-trip simulation in step 5 is the
// authoritative profit estimate.
func (m *CostModel) Calculate(
	tradeAmountADA decimal.Decimal,
	buyPrice, sellPrice decimal.Decimal,
	buyFees, sellFees venueDomain.FeeStructure,
) (*CostBreakdown, error) {
	if tradeAmountADA.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidTradeSize,
			apperror.WithContext("trade_amount", tradeAmountADA.String()))
	}
	if buyPrice.Sign() <= 0 || sellPrice.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithMessage("prices must be positive"),
			apperror.WithContext("buy_price", buyPrice.String()),
			apperror.WithContext("sell_price", sellPrice.String()))
	}

	// 1. Percentage trading fees, both legs.
	tradingFeePercent := buyFees.TradingFeePercent().Add(sellFees.TradingFeePercent())

	// 2. Fixed network + batcher fees as a percentage of trade size.
	// Fixed fees are in lovelace; convert to ADA before the ratio.
	fixedFeesADA := buyFees.FixedFeesADA().Add(sellFees.FixedFeesADA())
	fixedFeePercent := fixedFeesADA.Div(tradeAmountADA).Mul(hundred)

	// 3. Slippage heuristic.
	slippagePercent := m.estimateSlippage(tradeAmountADA)

	// 4. Total percentage cost.
	totalFeePercent := tradingFeePercent.Add(fixedFeePercent)

	// 5. Round-trip simulation.
	tokensOut := tradeAmountADA.Div(buyPrice).Mul(one.Sub(buyFees.TradingFeeRate))
	proceeds := tokensOut.Mul(sellPrice).Mul(one.Sub(sellFees.TradingFeeRate))
	estimatedProfit := proceeds.Sub(fixedFeesADA).Sub(tradeAmountADA)

	return &CostBreakdown{
		TradingFeePercent: tradingFeePercent,
		FixedFeePercent:   fixedFeePercent,
		TotalFeePercent:   totalFeePercent,
		SlippagePercent:   slippagePercent,
		EstimatedProfit:   estimatedProfit,
	}, nil
}

// GrossSpreadPercent is the raw price spread between two venues as a
// percentage of the lower price.
func GrossSpreadPercent(lowPrice, highPrice decimal.Decimal) decimal.Decimal {
	if lowPrice.Sign() <= 0 {
		return decimal.Zero
	}
	return highPrice.Sub(lowPrice).Div(lowPrice).Mul(hundred)
}
