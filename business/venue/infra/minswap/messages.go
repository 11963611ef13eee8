package minswap

// poolResponse is the Minswap pool lookup payload.
type poolResponse struct {
	PoolID   string `json:"pool_id"`
	AssetA   string `json:"asset_a"`
	AssetB   string `json:"asset_b"`
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`
	LPAsset  string `json:"lp_asset"`
}

// swapRequest is the aggregator swap submission payload.
type swapRequest struct {
	PoolID       string `json:"pool_id"`
	AssetIn      string `json:"asset_in"`
	AssetOut     string `json:"asset_out"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
}

// swapResponse is the aggregator swap submission result.
type swapResponse struct {
	TxHash    string `json:"tx_hash"`
	AmountOut string `json:"amount_out"`
}

// txStatusResponse is the transaction status payload.
type txStatusResponse struct {
	TxHash    string `json:"tx_hash"`
	Confirmed bool   `json:"confirmed"`
	AmountOut string `json:"amount_out,omitempty"`
}

// errorResponse is the API error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
