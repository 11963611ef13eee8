package apperror

// messages maps error codes to default human-readable messages.
// Codes without an entry fall back to the code string itself.
var messages = map[Code]string{
	CodeRequiredField:   "a required field is missing",
	CodeInvalidInput:    "input validation failed",
	CodeInvalidState:    "operation not valid in current state",
	CodeNotFound:        "resource not found",
	CodeValidationError: "validation failed",

	CodeConfigurationError: "invalid or missing configuration",

	CodeExternalServiceError: "external service call failed",
	CodeServiceTimeout:       "external service timed out",
	CodeServiceUnavailable:   "external service unavailable",
	CodeRateLimitExceeded:    "rate limit exceeded",

	CodeInternalError: "internal error",
	CodeUnknownError:  "unknown error",

	CodeVenueConnectionFailed: "failed to connect to venue",
	CodeVenueAPIError:         "venue API returned an error",
	CodeVenueRateLimited:      "venue rate limit reached",
	CodePoolNotFound:          "no liquidity pool found for pair",
	CodeInvalidQuote:          "venue returned an invalid quote",
	CodeSwapSubmitFailed:      "swap submission failed",
	CodeTxStatusFailed:        "transaction status lookup failed",
	CodeCircuitOpen:           "circuit breaker is open",

	CodeInvalidTradeSize:      "trade size must be positive",
	CodeInvalidOpportunity:    "opportunity failed validation",
	CodeInsufficientQuotes:    "fewer than two venues quoted the pair",
	CodeInsufficientLiquidity: "pool reserves cannot absorb the trade",
	CodeSpreadCollapsed:       "spread no longer clears the profit threshold",
	CodeTradeSizeExceeded:     "trade size exceeds the configured cap",

	CodeAlreadyExecuting:    "an arbitrage execution is already in flight",
	CodeBuyLegFailed:        "buy leg submission failed",
	CodeConfirmationTimeout: "buy leg confirmation timed out; wallet state must be reconciled",
	CodeSellLegFailed:       "sell leg failed; capital is stuck in the target token",
	CodeEmergencyStop:       "emergency stop is engaged",

	CodeLedgerAppendFailed: "failed to append execution record",
	CodeLedgerQueryFailed:  "failed to query execution records",
}
