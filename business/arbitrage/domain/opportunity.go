package domain

import (
	"time"

	"github.com/shopspring/decimal"

	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
)

// Opportunity is a detected arbitrage window: buy on BuyVenue at
// BuyPrice, sell on SellVenue at SellPrice. Immutable once created,
// consumed at most once by an execution attempt.
//
// Invariant: NetProfitPercent = GrossSpreadPercent - TotalFeePercent -
// SlippagePercent, and BuyVenue never equals SellVenue.
type Opportunity struct {
	Pair      venueDomain.Pair
	BuyVenue  string
	SellVenue string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal

	GrossSpreadPercent    decimal.Decimal
	TotalFeePercent       decimal.Decimal
	SlippagePercent       decimal.Decimal
	NetProfitPercent      decimal.Decimal
	EstimatedProfitAmount decimal.Decimal // ADA

	TradeAmountIn decimal.Decimal // ADA
	BuyPoolRef    string
	SellPoolRef   string
	DetectedAt    time.Time
}

// NewOpportunity assembles an Opportunity from two quotes and a cost
// breakdown, deriving the net profit from the invariant.
func NewOpportunity(
	pair venueDomain.Pair,
	buy, sell *venueDomain.Quote,
	tradeAmountIn decimal.Decimal,
	grossSpreadPercent decimal.Decimal,
	costs *CostBreakdown,
) *Opportunity {
	return &Opportunity{
		Pair:      pair,
		BuyVenue:  buy.Venue,
		SellVenue: sell.Venue,
		BuyPrice:  buy.Price,
		SellPrice: sell.Price,

		GrossSpreadPercent:    grossSpreadPercent,
		TotalFeePercent:       costs.TotalFeePercent,
		SlippagePercent:       costs.SlippagePercent,
		NetProfitPercent:      grossSpreadPercent.Sub(costs.TotalFeePercent).Sub(costs.SlippagePercent),
		EstimatedProfitAmount: costs.EstimatedProfit,

		TradeAmountIn: tradeAmountIn,
		BuyPoolRef:    buy.PoolRef,
		SellPoolRef:   sell.PoolRef,
		DetectedAt:    time.Now(),
	}
}

// Age returns how long ago the opportunity was detected.
func (o *Opportunity) Age() time.Duration {
	return time.Since(o.DetectedAt)
}
