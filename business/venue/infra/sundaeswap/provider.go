// Package sundaeswap implements the venue ports against the SundaeSwap API.
package sundaeswap

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
	VenueName = "sundaeswap"

	tracerName = "sundaeswap"
	meterName  = "sundaeswap"

	graphqlPath = "/graphql"

	poolCacheSize = 128
	// poolCacheTTL dedupes pool lookups within one scan tick (GetPrice
	// plus GetLiquidity); long enough to save a round-trip, short enough
	// that successive ticks always see fresh reserves.
	poolCacheTTL = 5 * time.Second
)

type cachedPool struct {
	pool      *poolPayload
	fetchedAt time.Time
}

var _ app.Venue = (*Provider)(nil)

type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	swapsTotal   metric.Int64Counter
}

// Provider implements PriceSource and TradeExecutor for SundaeSwap.
// Pool data comes from the stats GraphQL endpoint; orders go through the
// REST order API.
type Provider struct {
	client   httpclient.Client
	fees     domain.FeeStructure
	registry *asset.Registry
	logger   logger.LoggerInterface

	cb      *circuitbreaker.CircuitBreaker[*httpclient.Response]
	limiter *ratelimit.Limiter

	poolCache *lru.Cache[string, cachedPool]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a new SundaeSwap provider.
func NewProvider(cfg config.VenueConfig, registry *asset.Registry, log logger.LoggerInterface) (*Provider, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(VenueName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	poolCache, err := lru.New[string, cachedPool](poolCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool cache: %w", err)
	}

	p := &Provider{
		client:    client,
		fees:      domain.NewFeeStructure(cfg.TradingFeeRateDecimal(), cfg.NetworkFeeLovelace, cfg.BatcherFeeLovelace),
		registry:  registry,
		logger:    log,
		cb:        circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("sundaeswap-api")),
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
		"sundaeswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"sundaeswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"sundaeswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.swapsTotal, err = meter.Int64Counter(
		"sundaeswap_swaps_total",
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

// Initialize verifies the GraphQL endpoint answers an introspection ping.
func (p *Provider) Initialize(ctx context.Context) error {
	var result struct {
		Data map[string]any `json:"data"`
	}
	_, err := p.query(ctx, graphqlRequest{Query: `query { __typename }`}, &result)
	if err != nil {
		return apperror.New(apperror.CodeVenueConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}
	return nil
}

// GetPrice returns the current pool price for the pair.
func (p *Provider) GetPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "sundaeswap.get_price",
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
			apperror.WithContext("pool", pool.Ident))
	}

	quote := &domain.Quote{
		Venue:      VenueName,
		Pair:       pair,
		Price:      reserveB.Div(reserveA),
		ReserveA:   reserveA,
		ReserveB:   reserveB,
		PoolRef:    pool.Ident,
		ObservedAt: time.Now(),
	}

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	span.SetAttributes(attribute.String("price", quote.Price.String()))
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "sundaeswap quote",
		"pair", pair.String(),
		"price", quote.Price.String(),
		"pool", pool.Ident,
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
		PoolRef:   pool.Ident,
		FetchedAt: time.Now(),
	}, nil
}

// SubmitSwap submits a swap order against the pool ident.
func (p *Provider) SubmitSwap(ctx context.Context, req domain.SwapRequest) (*domain.SwapReceipt, error) {
	ctx, span := p.tracer.Start(ctx, "sundaeswap.submit_swap",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("asset_in", req.AssetIn),
			attribute.String("amount_in", req.AmountIn.String()),
		),
	)
	defer span.End()

	p.metrics.swapsTotal.Add(ctx, 1)

	assetIn, err := p.resolveAssetID(req.AssetIn)
	if err != nil {
		return nil, err
	}
	assetOut, err := p.resolveAssetID(req.AssetOut)
	if err != nil {
		return nil, err
	}

	var result orderResponse
	body := orderRequest{
		PoolIdent:   req.PoolRef,
		AssetIn:     assetIn,
		AssetOut:    assetOut,
		AmountIn:    req.AmountIn.String(),
		MinReceived: req.MinAmountOut.String(),
	}

	resp, err := p.doPost(ctx, "/orders/swap", body, &result)
	if err != nil || resp.IsError() {
		span.SetStatus(codes.Error, "swap submit failed")
		return nil, apperror.New(apperror.CodeSwapSubmitFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", req.Pair.String()))
	}

	amountOut, err := decimal.NewFromString(result.EstReceived)
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

// TransactionStatus reports confirmation state for a submitted order.
func (p *Provider) TransactionStatus(ctx context.Context, txHash string) (*domain.TxStatus, error) {
	var result orderStatusResponse

	resp, err := p.doGet(ctx, "/orders/"+txHash, nil, &result)
	if err != nil || resp.IsError() {
		return nil, apperror.New(apperror.CodeTxStatusFailed,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("tx_hash", txHash))
	}

	received := decimal.Zero
	if result.Received != "" {
		if parsed, err := decimal.NewFromString(result.Received); err == nil {
			received = parsed
		}
	}

	return &domain.TxStatus{
		TxHash:    txHash,
		Confirmed: result.Status == "confirmed",
		AmountOut: received,
		CheckedAt: time.Now(),
	}, nil
}

func (p *Provider) fetchPool(ctx context.Context, pair domain.Pair) (*poolPayload, error) {
	if entry, ok := p.poolCache.Get(pair.String()); ok && time.Since(entry.fetchedAt) < poolCacheTTL {
		return entry.pool, nil
	}

	assetA, err := p.resolveAssetID(pair.Base)
	if err != nil {
		return nil, err
	}
	assetB, err := p.resolveAssetID(pair.Quote)
	if err != nil {
		return nil, err
	}

	var result poolByAssetsResponse
	_, err = p.query(ctx, graphqlRequest{
		Query: poolByAssetsQuery,
		Variables: map[string]any{
			"assetA": assetA,
			"assetB": assetB,
		},
	}, &result)
	if err != nil {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}

	if len(result.Errors) > 0 {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithMessage(result.Errors[0].Message),
			apperror.WithContext("venue", VenueName))
	}
	if result.Data.PoolByPair == nil || result.Data.PoolByPair.Ident == "" {
		return nil, apperror.New(apperror.CodePoolNotFound,
			apperror.WithContext("venue", VenueName),
			apperror.WithContext("pair", pair.String()))
	}

	p.poolCache.Add(pair.String(), cachedPool{pool: result.Data.PoolByPair, fetchedAt: time.Now()})
	return result.Data.PoolByPair, nil
}

func (p *Provider) normalizeReserves(pair domain.Pair, pool *poolPayload) (decimal.Decimal, decimal.Decimal, error) {
	rawA, err := decimal.NewFromString(pool.QuantityA)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}
	rawB, err := decimal.NewFromString(pool.QuantityB)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("venue", VenueName))
	}

	baseID, err := p.resolveAssetID(pair.Base)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if pool.AssetA.AssetID != baseID {
		rawA, rawB = rawB, rawA
	}

	baseAsset, _ := p.registry.GetByTicker(pair.Base)
	quoteAsset, _ := p.registry.GetByTicker(pair.Quote)

	return rawA.Shift(-int32(baseAsset.Decimals())), rawB.Shift(-int32(quoteAsset.Decimals())), nil
}

// resolveAssetID maps a ticker to the Sundae "policy.name" asset ID form.
func (p *Provider) resolveAssetID(ticker string) (string, error) {
	a, ok := p.registry.GetByTicker(ticker)
	if !ok {
		return "", apperror.New(apperror.CodeNotFound,
			apperror.WithMessage("unknown asset ticker"),
			apperror.WithContext("ticker", ticker))
	}
	if a.IsLovelace() {
		return "ada.lovelace", nil
	}
	return a.ID().PolicyID() + "." + a.ID().AssetName(), nil
}

func (p *Provider) query(ctx context.Context, body graphqlRequest, result any) (*httpclient.Response, error) {
	return p.doPost(ctx, graphqlPath, body, result)
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
