// Package asset provides a type-safe model for Cardano native assets.
// Identity is the on-chain unit (policy ID + hex asset name), never the
// ticker symbol.
package asset

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AssetID uniquely identifies a Cardano native asset by minting policy
// and asset name. For ADA both fields are empty.
type AssetID struct {
	policyID  string // hex, 56 chars for native tokens, empty for ADA
	assetName string // hex-encoded asset name, empty allowed
}

// NewLovelaceAssetID creates the AssetID for ADA (lovelace).
func NewLovelaceAssetID() AssetID {
	return AssetID{}
}

// NewTokenAssetID creates an AssetID for a native token.
func NewTokenAssetID(policyID, assetName string) AssetID {
	if policyID == "" {
		panic("asset: token policy ID cannot be empty - use NewLovelaceAssetID for ADA")
	}
	if len(policyID) != 56 {
		panic(fmt.Sprintf("asset: invalid policy ID length %d", len(policyID)))
	}
	return AssetID{
		policyID:  strings.ToLower(policyID),
		assetName: strings.ToLower(assetName),
	}
}

// ParseAssetID parses "policyID.assetName" or "lovelace".
func ParseAssetID(s string) (AssetID, error) {
	if s == "lovelace" || s == "" {
		return NewLovelaceAssetID(), nil
	}

	policy, name, _ := strings.Cut(s, ".")
	if len(policy) != 56 {
		return AssetID{}, fmt.Errorf("asset: invalid policy ID %q", policy)
	}
	if _, err := hex.DecodeString(policy); err != nil {
		return AssetID{}, fmt.Errorf("asset: policy ID is not hex: %w", err)
	}
	if name != "" {
		if _, err := hex.DecodeString(name); err != nil {
			return AssetID{}, fmt.Errorf("asset: asset name is not hex: %w", err)
		}
	}

	return AssetID{policyID: strings.ToLower(policy), assetName: strings.ToLower(name)}, nil
}

// PolicyID returns the minting policy ID (empty for ADA).
func (id AssetID) PolicyID() string {
	return id.policyID
}

// AssetName returns the hex-encoded asset name.
func (id AssetID) AssetName() string {
	return id.assetName
}

// IsLovelace returns true if this is ADA.
func (id AssetID) IsLovelace() bool {
	return id.policyID == ""
}

// Unit returns the concatenated on-chain unit used by DEX APIs.
func (id AssetID) Unit() string {
	if id.IsLovelace() {
		return "lovelace"
	}
	return id.policyID + id.assetName
}

// String returns a human-readable representation.
func (id AssetID) String() string {
	if id.IsLovelace() {
		return "lovelace"
	}
	if id.assetName == "" {
		return id.policyID
	}
	return fmt.Sprintf("%s.%s", id.policyID, id.assetName)
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.policyID == other.policyID && id.assetName == other.assetName
}
