package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Venue (DEX) error codes
const (
	CodeVenueConnectionFailed Code = "VENUE_CONNECTION_FAILED"
	CodeVenueAPIError         Code = "VENUE_API_ERROR"
	CodeVenueRateLimited      Code = "VENUE_RATE_LIMITED"
	CodePoolNotFound          Code = "POOL_NOT_FOUND"
	CodeInvalidQuote          Code = "INVALID_QUOTE"
	CodeSwapSubmitFailed      Code = "SWAP_SUBMIT_FAILED"
	CodeTxStatusFailed        Code = "TX_STATUS_FAILED"

	// Circuit breaker
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

// Arbitrage detection and execution error codes
const (
	CodeInvalidTradeSize      Code = "INVALID_TRADE_SIZE"
	CodeInvalidOpportunity    Code = "INVALID_OPPORTUNITY"
	CodeInsufficientQuotes    Code = "INSUFFICIENT_QUOTES"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeSpreadCollapsed       Code = "SPREAD_COLLAPSED"
	CodeTradeSizeExceeded     Code = "TRADE_SIZE_EXCEEDED"

	CodeAlreadyExecuting    Code = "ALREADY_EXECUTING"
	CodeBuyLegFailed        Code = "BUY_LEG_FAILED"
	CodeConfirmationTimeout Code = "CONFIRMATION_TIMEOUT"
	CodeSellLegFailed       Code = "SELL_LEG_FAILED"
	CodeEmergencyStop       Code = "EMERGENCY_STOP"

	// Ledger errors
	CodeLedgerAppendFailed Code = "LEDGER_APPEND_FAILED"
	CodeLedgerQueryFailed  Code = "LEDGER_QUERY_FAILED"
)
