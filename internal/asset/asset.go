package asset

// Asset represents the metadata of a Cardano asset.
// It is a reference entity with stable identity (AssetID).
// The ticker is NOT identity - just metadata for display.
type Asset struct {
	id       AssetID
	ticker   string
	name     string
	decimals uint8
}

// NewAsset creates a new Asset with the given parameters.
func NewAsset(id AssetID, ticker string, decimals uint8) *Asset {
	if ticker == "" {
		panic("asset: empty ticker")
	}
	if decimals > 18 {
		panic("asset: suspicious decimals (>18)")
	}

	return &Asset{
		id:       id,
		ticker:   ticker,
		decimals: decimals,
	}
}

// NewAssetWithName creates a new Asset with a human-readable name.
func NewAssetWithName(id AssetID, ticker, name string, decimals uint8) *Asset {
	a := NewAsset(id, ticker, decimals)
	a.name = name
	return a
}

// ID returns the unique identifier for this asset.
func (a *Asset) ID() AssetID {
	return a.id
}

// Ticker returns the ticker symbol (e.g., "ADA", "CATSKY").
func (a *Asset) Ticker() string {
	return a.ticker
}

// Name returns the human-readable name (e.g., "Cardano", "Catsky").
func (a *Asset) Name() string {
	if a.name == "" {
		return a.ticker
	}
	return a.name
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// IsLovelace returns true if this is ADA.
func (a *Asset) IsLovelace() bool {
	return a.id.IsLovelace()
}

// Unit returns the on-chain unit string.
func (a *Asset) Unit() string {
	return a.id.Unit()
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.ticker
}

// Equals compares two Assets by their ID.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id.Equals(other.id)
}
