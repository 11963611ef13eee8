package sundaeswap

// graphqlRequest is the query envelope for the Sundae stats API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

const poolByAssetsQuery = `
query PoolByAssets($assetA: String!, $assetB: String!) {
  poolByPair(assetA: $assetA, assetB: $assetB) {
    ident
    assetA { assetId }
    assetB { assetId }
    quantityA
    quantityB
  }
}`

type poolByAssetsResponse struct {
	Data struct {
		PoolByPair *poolPayload `json:"poolByPair"`
	} `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

type poolPayload struct {
	Ident  string `json:"ident"`
	AssetA struct {
		AssetID string `json:"assetId"`
	} `json:"assetA"`
	AssetB struct {
		AssetID string `json:"assetId"`
	} `json:"assetB"`
	QuantityA string `json:"quantityA"`
	QuantityB string `json:"quantityB"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// orderRequest is the swap order submission payload.
type orderRequest struct {
	PoolIdent   string `json:"poolIdent"`
	AssetIn     string `json:"assetIn"`
	AssetOut    string `json:"assetOut"`
	AmountIn    string `json:"amountIn"`
	MinReceived string `json:"minReceived"`
}

// orderResponse is the swap order submission result.
type orderResponse struct {
	TxHash      string `json:"txHash"`
	EstReceived string `json:"estReceived"`
}

// orderStatusResponse is the order status payload.
type orderStatusResponse struct {
	TxHash   string `json:"txHash"`
	Status   string `json:"status"` // "pending" | "confirmed" | "failed"
	Received string `json:"received,omitempty"`
}
