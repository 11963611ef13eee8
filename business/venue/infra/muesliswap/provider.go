// Package muesliswap implements the venue ports against the MuesliSwap API.
package muesliswap

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/apperror"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/asset"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/circuitbreaker"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/config"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/httpclient"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/ratelimit"
)

const (
	VenueName = "muesliswap"

	tracerName = "muesliswap"
	meterName  = "muesliswap"

	poolCacheSize = 128
)

var _ app.Venue = (*Provider)(nil)

type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	swapsTotal   metric.Int64Counter
}

// Provider implements PriceSource and TradeExecutor for MuesliSwap.
type Provider struct {
	client   httpclient.Client
	fees     domain.FeeStructure
	registry *asset.Registry
	logger   logger.LoggerInterface

	cb      *circuitbreaker.CircuitBreaker[*httpclient.Response]
	limiter *ratelimit.Limiter

	poolCache *lru.Cache[string, string]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a new MuesliSwap provider.
func NewProvider(cfg config.VenueConfig, registry *asset.Registry, log logger.LoggerInterface) (*Provider, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(VenueName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	poolCache, err := lru.New[string, string](poolCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool cache: %w", err)
	}

	p := &Provider{
		client:    client,
		fees:      domain.NewFeeStructure(cfg.TradingFeeRateDecimal(), cfg.NetworkFeeLovelace, cfg.BatcherFeeLovelace),
		registry:  registry,
		logger:    log,
		cb:        circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("muesliswap-api")),
		limiter:   ratelimit.New(cfg.RequestsPerMinute),
		poolCache: poolCache,
		tracer:    otel.Tracer(tracerName),
	}

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.quotesTotal, err = meter.Int64Counter(
		"muesliswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"muesliswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"muesliswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.swapsTotal, err = meter.Int64Counter(
		"muesliswap_swaps_total",
		metric.WithDescription("Total swap submissions"),
	)
	return err
}

// Venue returns the registry name.
func (p *Provider) Venue() string {
	return VenueName
}

// FeeStructure returns the venue's fee structure.
func (p *Provider) FeeStructure() domain.FeeStructure {
	return p.fees
}

// Initialize verifies API reachability.
func (p *Provider) Initialize(ctx context.Context) error {
	resp, err := p.doGet(ctx, "/status", nil, nil)
	if err != nil {
		return apperror.New(apperror.CodeVenueConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeVenueConnectionFailed,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("status", resp.StatusCode))
	}
	return nil
}

// GetPrice returns the current price from the deepest matching pool.
func (p *Provider) GetPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "muesliswap.get_price",
		trace.WithAttributes(attribute.String("pair", pair.String())),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	pool, reserveA, reserveB, err := p.fetchDeepestPool(ctx, pair)
	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	quote := &domain.Quote{
		Venue:      VenueName,
		Pair:       pair,
		Price:      reserveB.Div(reserveA),
		ReserveA:   reserveA,
		ReserveB:   reserveB,
		PoolRef:    pool.PoolID,
		ObservedAt: time.Now(),
	}

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	span.SetAttributes(attribute.String("price", quote.Price.String()))
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "muesliswap quote",
		"pair", pair.String(),
		"price", quote.Price.String(),
		"pool", pool.PoolID,
	)

	return quote, nil
}

// GetLiquidity returns the deepest pool's reserve depth for the pair.
func (p *Provider) GetLiquidity(ctx context.Context, pair domain.Pair) (*domain.Liquidity, error) {
	pool, reserveA, reserveB, err := p.fetchDeepestPool(ctx, pair)
	if err != nil {
		return nil, err
	}

	return &domain.Liquidity{
		Venue:     VenueName,
		Pair:      pair,
		AmountA:   reserveA,
		AmountB:   reserveB,
		PoolRef:   pool.PoolID,
		FetchedAt: time.Now(),
	}, nil
}

// SubmitSwap submits a trade against the pool.
func (p *Provider) SubmitSwap(ctx context.Context, req domain.SwapRequest) (*domain.SwapReceipt, error) {
	ctx, span := p.tracer.Start(ctx, "muesliswap.submit_swap",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("asset_in", req.AssetIn),
			attribute.String("amount_in", req.AmountIn.String()),
		),
	)
	defer span.End()

	p.metrics.swapsTotal.Add(ctx, 1)

	inAsset, err := p.resolveAsset(req.AssetIn)
	if err != nil {
		return nil, err
	}
	outAsset, err := p.resolveAsset(req.AssetOut)
	if err != nil {
		return nil, err
	}

	poolID := req.PoolRef
	if poolID == "" {
		// fall back to the last pool seen for this pair
		if cached, ok := p.poolCache.Get(req.Pair.String()); ok {
			poolID = cached
		}
	}

	var result tradeResponse
	body := tradeRequest{
		PoolID:        poolID,
		InPolicyID:    inAsset.ID().PolicyID(),
		InTokenName:   inAsset.ID().AssetName(),
		OutPolicyID:   outAsset.ID().PolicyID(),
		OutTokenName:  outAsset.ID().AssetName(),
		Amount:        req.AmountIn.String(),
		MinimumAmount: req.MinAmountOut.String(),
	}

	resp, err := p.doPost(ctx, "/trade/submit", body, &result)
	if err != nil || resp.IsError() {
		span.SetStatus(codes.Error, "swap submit failed")
		return nil, apperror.New(apperror.CodeSwapSubmitFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", req.Pair.String()))
	}

	amountOut, err := decimal.NewFromString(result.ExpectedAmount)
	if err != nil {
		amountOut = decimal.Zero
	}

	span.SetAttributes(attribute.String("tx_hash", result.TxHash))
	span.SetStatus(codes.Ok, "swap submitted")

	return &domain.SwapReceipt{
		TxHash:      result.TxHash,
		Venue:       VenueName,
		AmountOut:   amountOut,
		SubmittedAt: time.Now(),
	}, nil
}

// TransactionStatus reports confirmation state for a submitted trade.
func (p *Provider) TransactionStatus(ctx context.Context, txHash string) (*domain.TxStatus, error) {
	var result tradeStatusResponse

	resp, err := p.doGet(ctx, "/trade/status", map[string]string{"txHash": txHash}, &result)
	if err != nil || resp.IsError() {
		return nil, apperror.New(apperror.CodeTxStatusFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("tx_hash", txHash))
	}

	settled := decimal.Zero
	if result.SettledAmount != "" {
		if parsed, err := decimal.NewFromString(result.SettledAmount); err == nil {
			settled = parsed
		}
	}

	return &domain.TxStatus{
		TxHash:    txHash,
		Confirmed: result.Confirmed,
		AmountOut: settled,
		CheckedAt: time.Now(),
	}, nil
}

// fetchDeepestPool queries matching pools and picks the one with the
// largest base reserve. Reserves are returned normalized and oriented to
// the requested pair direction.
func (p *Provider) fetchDeepestPool(ctx context.Context, pair domain.Pair) (*poolInfo, decimal.Decimal, decimal.Decimal, error) {
	baseAsset, err := p.resolveAsset(pair.Base)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	quoteAsset, err := p.resolveAsset(pair.Quote)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	var pools []poolInfo
	params := map[string]string{
		"base-policy-id":  baseAsset.ID().PolicyID(),
		"base-tokenname":  baseAsset.ID().AssetName(),
		"quote-policy-id": quoteAsset.ID().PolicyID(),
		"quote-tokenname": quoteAsset.ID().AssetName(),
	}

	resp, err := p.doGet(ctx, "/liquidity/pools", params, &pools)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}
	if resp.IsError() {
		return nil, decimal.Zero, decimal.Zero, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("status", resp.StatusCode))
	}
	if len(pools) == 0 {
		return nil, decimal.Zero, decimal.Zero, apperror.New(apperror.CodePoolNotFound,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}

	var best *poolInfo
	var bestA, bestB decimal.Decimal
	for i := range pools {
		pool := &pools[i]
		rawBase, err := decimal.NewFromString(pool.Base.Amount)
		if err != nil {
			continue
		}
		rawQuote, err := decimal.NewFromString(pool.Quote.Amount)
		if err != nil {
			continue
		}
		// Orient to the requested direction.
		if pool.Base.PolicyID != baseAsset.ID().PolicyID() || pool.Base.TokenName != baseAsset.ID().AssetName() {
			rawBase, rawQuote = rawQuote, rawBase
		}
		if rawBase.Sign() <= 0 || rawQuote.Sign() <= 0 {
			continue
		}
		if best == nil || rawBase.GreaterThan(bestA) {
			best = pool
			bestA = rawBase
			bestB = rawQuote
		}
	}

	if best == nil {
		return nil, decimal.Zero, decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithMessage("no pool with usable reserves"),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}

	p.poolCache.Add(pair.String(), best.PoolID)

	return best,
		bestA.Shift(-int32(baseAsset.Decimals())),
		bestB.Shift(-int32(quoteAsset.Decimals())),
		nil
}

func (p *Provider) resolveAsset(ticker string) (*asset.Asset, error) {
	a, ok := p.registry.GetByTicker(ticker)
	if !ok {
		return nil, apperror.New(apperror.CodeNotFound,
			apperror.WithMessage("unknown asset ticker"),
			apperror.WithContext("ticker", ticker))
	}
	return a, nil
}

func (p *Provider) doGet(ctx context.Context, path string, params map[string]string, result any) (*httpclient.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.cb.Execute(func() (*httpclient.Response, error) {
		req := p.client.NewRequest()
		if params != nil {
			req.SetQueryParams(params)
		}
		if result != nil {
			req.SetResult(result)
		}
		return req.Get(ctx, path)
	})
}

func (p *Provider) doPost(ctx context.Context, path string, body, result any) (*httpclient.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.cb.Execute(func() (*httpclient.Response, error) {
		req := p.client.NewRequest().SetBody(body)
		if result != nil {
			req.SetResult(result)
		}
		return req.Post(ctx, path)
	})
}
