// Package minswap implements the venue ports against the Minswap API.
package minswap

import (
	"context"
	"fmt"
	"net/http"
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
	VenueName = "minswap"

	tracerName = "minswap"
	meterName  = "minswap"

	poolCacheSize = 128
)

// Ensure Provider implements the venue ports.
var _ app.Venue = (*Provider)(nil)

// providerMetrics holds OTEL metric instruments.
type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	swapsTotal   metric.Int64Counter
}

// Provider implements PriceSource and TradeExecutor for Minswap.
type Provider struct {
	client   httpclient.Client
	fees     domain.FeeStructure
	registry *asset.Registry
	logger   logger.LoggerInterface

	cb      *circuitbreaker.CircuitBreaker[*httpclient.Response]
	limiter *ratelimit.Limiter

	// pair string -> pool ID, avoids a discovery round-trip per scan
	poolCache *lru.Cache[string, string]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a new Minswap provider.
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
		cb:        circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("minswap-api")),
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
		"minswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"minswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"minswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.swapsTotal, err = meter.Int64Counter(
		"minswap_swaps_total",
		metric.WithDescription("Total swap submissions"),
	)
	if err != nil {
		return err
	}

	return nil
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
	resp, err := p.doGet(ctx, "/health", nil, nil)
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

// GetPrice returns the current pool price for the pair.
func (p *Provider) GetPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "minswap.get_price",
		trace.WithAttributes(attribute.String("pair", pair.String())),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	pool, err := p.fetchPool(ctx, pair)
	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reserveA, reserveB, err := p.normalizeReserves(pair, pool)
	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "empty pool")
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithMessage("pool has empty reserves"),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pool", pool.PoolID))
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

	p.logger.Debug(ctx, "minswap quote",
		"pair", pair.String(),
		"price", quote.Price.String(),
		"pool", pool.PoolID,
	)

	return quote, nil
}

// GetLiquidity returns the pool's reserve depth for the pair.
func (p *Provider) GetLiquidity(ctx context.Context, pair domain.Pair) (*domain.Liquidity, error) {
	pool, err := p.fetchPool(ctx, pair)
	if err != nil {
		return nil, err
	}

	reserveA, reserveB, err := p.normalizeReserves(pair, pool)
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

// SubmitSwap submits a swap through the Minswap aggregator.
func (p *Provider) SubmitSwap(ctx context.Context, req domain.SwapRequest) (*domain.SwapReceipt, error) {
	ctx, span := p.tracer.Start(ctx, "minswap.submit_swap",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("asset_in", req.AssetIn),
			attribute.String("amount_in", req.AmountIn.String()),
		),
	)
	defer span.End()

	p.metrics.swapsTotal.Add(ctx, 1)

	assetIn, err := p.resolveUnit(req.AssetIn)
	if err != nil {
		return nil, err
	}
	assetOut, err := p.resolveUnit(req.AssetOut)
	if err != nil {
		return nil, err
	}

	var result swapResponse
	body := swapRequest{
		PoolID:       req.PoolRef,
		AssetIn:      assetIn,
		AssetOut:     assetOut,
		AmountIn:     req.AmountIn.String(),
		MinAmountOut: req.MinAmountOut.String(),
	}

	resp, err := p.doPost(ctx, "/aggregator/swap", body, &result)
	if err != nil || resp.IsError() {
		span.SetStatus(codes.Error, "swap submit failed")
		return nil, apperror.New(apperror.CodeSwapSubmitFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", req.Pair.String()))
	}

	amountOut, err := decimal.NewFromString(result.AmountOut)
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

// TransactionStatus reports confirmation state for a submitted swap.
func (p *Provider) TransactionStatus(ctx context.Context, txHash string) (*domain.TxStatus, error) {
	var result txStatusResponse

	resp, err := p.doGet(ctx, "/tx/"+txHash+"/status", nil, &result)
	if err != nil || resp.IsError() {
		return nil, apperror.New(apperror.CodeTxStatusFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("tx_hash", txHash))
	}

	amountOut := decimal.Zero
	if result.AmountOut != "" {
		if parsed, err := decimal.NewFromString(result.AmountOut); err == nil {
			amountOut = parsed
		}
	}

	return &domain.TxStatus{
		TxHash:    txHash,
		Confirmed: result.Confirmed,
		AmountOut: amountOut,
		CheckedAt: time.Now(),
	}, nil
}

// fetchPool looks up the pool for a pair, consulting the LRU cache first.
func (p *Provider) fetchPool(ctx context.Context, pair domain.Pair) (*poolResponse, error) {
	unitA, err := p.resolveUnit(pair.Base)
	if err != nil {
		return nil, err
	}
	unitB, err := p.resolveUnit(pair.Quote)
	if err != nil {
		return nil, err
	}

	var pool poolResponse
	params := map[string]string{
		"asset_a": unitA,
		"asset_b": unitB,
	}

	if poolID, ok := p.poolCache.Get(pair.String()); ok {
		resp, err := p.doGet(ctx, "/pools/v2/"+poolID, nil, &pool)
		if err == nil && !resp.IsError() {
			return &pool, nil
		}
		// cache entry went stale, fall through to discovery
		p.poolCache.Remove(pair.String())
	}

	resp, err := p.doGet(ctx, "/pools/v2/pair", params, &pool)
	if err != nil {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}
	if resp.StatusCode == http.StatusNotFound || pool.PoolID == "" {
		return nil, apperror.New(apperror.CodePoolNotFound,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("status", resp.StatusCode))
	}

	p.poolCache.Add(pair.String(), pool.PoolID)
	return &pool, nil
}

// normalizeReserves orients the pool's raw reserves to the requested pair
// direction and converts on-chain integer amounts to display units.
func (p *Provider) normalizeReserves(pair domain.Pair, pool *poolResponse) (decimal.Decimal, decimal.Decimal, error) {
	rawA, err := decimal.NewFromString(pool.ReserveA)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}
	rawB, err := decimal.NewFromString(pool.ReserveB)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}

	baseUnit, err := p.resolveUnit(pair.Base)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	// The API may list either leg first.
	if pool.AssetA != baseUnit {
		rawA, rawB = rawB, rawA
	}

	baseAsset, _ := p.registry.GetByTicker(pair.Base)
	quoteAsset, _ := p.registry.GetByTicker(pair.Quote)

	return scaleDown(rawA, baseAsset.Decimals()), scaleDown(rawB, quoteAsset.Decimals()), nil
}

// resolveUnit maps a ticker to its on-chain unit via the asset registry.
func (p *Provider) resolveUnit(ticker string) (string, error) {
	a, ok := p.registry.GetByTicker(ticker)
	if !ok {
		return "", apperror.New(apperror.CodeNotFound,
			apperror.WithMessage("unknown asset ticker"),
			apperror.WithContext("ticker", ticker))
	}
	return a.Unit(), nil
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

func scaleDown(raw decimal.Decimal, decimals uint8) decimal.Decimal {
	if decimals == 0 {
		return raw
	}
	return raw.Shift(-int32(decimals))
}
