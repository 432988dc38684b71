package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Key prefixes for different data types
const (
	CurrencyPrefix   = "currency_"
	AccountPrefix    = "account_"
	AllowancePrefix  = "allowance_"
	CommunityPrefix  = "community_"
	MembershipPrefix = "membership_"
	ProductPrefix    = "product_"
	CurationPrefix   = "curation_"
	ProposalPrefix   = "proposal_"
	AssetPrefix      = "asset_"
	AssetIndexPrefix = "asset_by_product_"
	SettlementPrefix = "settlement_"
)

// GetCurrencyKey returns the key for a currency record
func GetCurrencyKey(currencyID string) string {
	return fmt.Sprintf("%s%s", CurrencyPrefix, currencyID)
}

// GetAccountKey returns the key for a holder's balance in a currency
func GetAccountKey(currencyID, holderID string) string {
	return fmt.Sprintf("%s%s_%s", AccountPrefix, currencyID, holderID)
}

// GetAllowanceKey returns the key for a spender's allowance on an owner's account
func GetAllowanceKey(currencyID, ownerID, spenderID string) string {
	return fmt.Sprintf("%s%s_%s_%s", AllowancePrefix, currencyID, ownerID, spenderID)
}

// GetCommunityKey returns the key for a community
func GetCommunityKey(communityID string) string {
	return fmt.Sprintf("%s%s", CommunityPrefix, communityID)
}

// GetMembershipKey returns the key for a user's membership in a community
func GetMembershipKey(communityID, userID string) string {
	return fmt.Sprintf("%s%s_%s", MembershipPrefix, communityID, userID)
}

// GetProductKey returns the key for a product
func GetProductKey(productID string) string {
	return fmt.Sprintf("%s%s", ProductPrefix, productID)
}

// GetCurationKey returns the key for a product's curation record
func GetCurationKey(productID string) string {
	return fmt.Sprintf("%s%s", CurationPrefix, productID)
}

// GetProposalKey returns the key for a rate-change proposal
func GetProposalKey(proposalID string) string {
	return fmt.Sprintf("%s%s", ProposalPrefix, proposalID)
}

// GetAssetKey returns the key for a unique asset
func GetAssetKey(assetID string) string {
	return fmt.Sprintf("%s%s", AssetPrefix, assetID)
}

// GetAssetIndexKey returns the key binding a product id to its unique asset id
func GetAssetIndexKey(productID string) string {
	return fmt.Sprintf("%s%s", AssetIndexPrefix, productID)
}

// GetSettlementKey returns the key for an account's external settlement balance
func GetSettlementKey(holderID string) string {
	return fmt.Sprintf("%s%s", SettlementPrefix, holderID)
}

// DeriveProductID derives a collision-resistant product id. The transaction id
// contributes entropy so the id is unpredictable before submission.
func DeriveProductID(txID, submitterID, communityID, metadataURI, price string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s", txID, submitterID, communityID, metadataURI, price)))
	return hex.EncodeToString(sum[:])
}

// DeriveCurrencyID derives a community currency id from the creating
// transaction and the token symbol.
func DeriveCurrencyID(txID, symbol string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", txID, symbol)))
	return hex.EncodeToString(sum[:16])
}

// DeriveProposalID derives a rate-change proposal id from the creating
// transaction.
func DeriveProposalID(txID, communityID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("rate|%s|%s", txID, communityID)))
	return hex.EncodeToString(sum[:16])
}

// DeriveAssetID derives the unique-asset id bound to an exclusive product.
func DeriveAssetID(productID string) string {
	sum := sha256.Sum256([]byte("asset:" + productID))
	return hex.EncodeToString(sum[:])
}

// GetTxTimestamp returns the deterministic transaction timestamp
// This ensures all endorsing peers return the same timestamp
func GetTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	txTimestamp, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %v", err)
	}
	return time.Unix(txTimestamp.Seconds, int64(txTimestamp.Nanos)), nil
}
