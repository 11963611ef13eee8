package domain

import "github.com/shopspring/decimal"

// LovelacePerADA is the lovelace denomination of one ADA.
var LovelacePerADA = decimal.NewFromInt(1_000_000)

// FeeStructure describes a venue's cost of trading. One immutable
// instance per venue, loaded from configuration at startup.
type FeeStructure struct {
	// TradingFeeRate is a fraction of trade size (0.003 = 0.3%).
	TradingFeeRate decimal.Decimal
	// NetworkFeeLovelace and BatcherFeeLovelace are fixed per-transaction
	// costs in lovelace, independent of trade size.
	NetworkFeeLovelace decimal.Decimal
	BatcherFeeLovelace decimal.Decimal
}

// NewFeeStructure builds a FeeStructure from a fractional trading fee
// rate and fixed fees in lovelace.
func NewFeeStructure(tradingFeeRate decimal.Decimal, networkFeeLovelace, batcherFeeLovelace int64) FeeStructure {
	return FeeStructure{
		TradingFeeRate:     tradingFeeRate,
		NetworkFeeLovelace: decimal.NewFromInt(networkFeeLovelace),
		BatcherFeeLovelace: decimal.NewFromInt(batcherFeeLovelace),
	}
}

// FixedFeesLovelace returns network + batcher fee in lovelace.
func (f FeeStructure) FixedFeesLovelace() decimal.Decimal {
	return f.NetworkFeeLovelace.Add(f.BatcherFeeLovelace)
}

// FixedFeesADA returns network + batcher fee converted to ADA.
func (f FeeStructure) FixedFeesADA() decimal.Decimal {
	return f.FixedFeesLovelace().Div(LovelacePerADA)
}

// TradingFeePercent returns the trading fee rate expressed as a percent.
func (f FeeStructure) TradingFeePercent() decimal.Decimal {
	return f.TradingFeeRate.Mul(decimal.NewFromInt(100))
}
