package asset

// Well-known mainnet policy IDs and hex asset names.
const (
	PolicyCatsky = "9b426921a21f54600711da0be1a12b026703a9bd8eb9848d08c9d921"
	PolicyMin    = "29d222ce763455e3d7a09a665ce554f00ac89d2e99a1a83d267170c6"
	PolicySundae = "9a9693a9a37912a5097918f97918d15240c92ab729a0b7c4aa144d77"
	PolicyDjed   = "8db269c3ec630e06ae29f74bc39edd1f87c819f1056206e879a1cd61"
	PolicySnek   = "279c909f348e533da5808898f87f9a14bb2c3dfbbacccd631d927a3f"

	NameCatsky = "434154534b59"
	NameMin    = "4d494e"
	NameSundae = "53554e444145"
	NameDjed   = "446a65644d6963726f555344"
	NameSnek   = "534e454b"
)

// Well-known AssetIDs
var (
	IDLovelace = NewLovelaceAssetID()
	IDCatsky   = NewTokenAssetID(PolicyCatsky, NameCatsky)
	IDMin      = NewTokenAssetID(PolicyMin, NameMin)
	IDSundae   = NewTokenAssetID(PolicySundae, NameSundae)
	IDDjed     = NewTokenAssetID(PolicyDjed, NameDjed)
	IDSnek     = NewTokenAssetID(PolicySnek, NameSnek)
)

// Well-known Assets (pre-created instances)
var (
	ADA    = NewAssetWithName(IDLovelace, "ADA", "Cardano", 6)
	CATSKY = NewAssetWithName(IDCatsky, "CATSKY", "Catsky", 0)
	MIN    = NewAssetWithName(IDMin, "MIN", "Minswap", 6)
	SUNDAE = NewAssetWithName(IDSundae, "SUNDAE", "SundaeSwap", 6)
	DJED   = NewAssetWithName(IDDjed, "DJED", "Djed StableCoin", 6)
	SNEK   = NewAssetWithName(IDSnek, "SNEK", "Snek", 0)
)

// DefaultRegistry returns a registry pre-populated with well-known assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ADA)
	r.Register(CATSKY)
	r.Register(MIN)
	r.Register(SUNDAE)
	r.Register(DJED)
	r.Register(SNEK)

	return r
}

// MustNewToken creates a native token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(policyID, assetName, ticker, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(policyID, assetName)
	return NewAssetWithName(id, ticker, name, decimals)
}
