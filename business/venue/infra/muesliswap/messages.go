package muesliswap

// poolInfo is one entry in the MuesliSwap pool list payload. The API
// returns every matching pool; the adapter picks the deepest one.
type poolInfo struct {
	PoolID string `json:"poolId"`
	Base   struct {
		PolicyID  string `json:"policyId"`
		TokenName string `json:"tokenName"`
		Amount    string `json:"amount"`
	} `json:"base"`
	Quote struct {
		PolicyID  string `json:"policyId"`
		TokenName string `json:"tokenName"`
		Amount    string `json:"amount"`
	} `json:"quote"`
	Provider string `json:"provider"`
}

// tradeRequest is the trade submission payload.
type tradeRequest struct {
	PoolID        string `json:"poolId"`
	InPolicyID    string `json:"inPolicyId"`
	InTokenName   string `json:"inTokenName"`
	OutPolicyID   string `json:"outPolicyId"`
	OutTokenName  string `json:"outTokenName"`
	Amount        string `json:"amount"`
	MinimumAmount string `json:"minimumAmount"`
}

// tradeResponse is the trade submission result.
type tradeResponse struct {
	TxHash         string `json:"txHash"`
	ExpectedAmount string `json:"expectedAmount"`
}

// tradeStatusResponse is the trade status payload.
type tradeStatusResponse struct {
	TxHash        string `json:"txHash"`
	Confirmed     bool   `json:"confirmed"`
	SettledAmount string `json:"settledAmount,omitempty"`
}
