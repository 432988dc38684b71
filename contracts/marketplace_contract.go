package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// Marketplace constants: 3% resale royalty to the original author, 3%
// platform fee on community re-listing, and the activity-point floor for the
// resale path.
var (
	RoyaltyPct     = decimal.RequireFromString("0.03")
	PlatformFeePct = decimal.RequireFromString("0.03")

	ResaleActivityThreshold int64 = 10
	ActivityPerTrade        int64 = 1
)

// MarketplaceContract settles trades of approved products: listing, first
// sale and resale with royalty split, activity accrual, and the unique-asset
// hand-off for exclusive items.
type MarketplaceContract struct {
	contractapi.Contract
	Ledger    *Ledger
	Community *CommunityContract
	Assets    AssetProvider
}

func (m *MarketplaceContract) wired() error {
	if m.Ledger == nil || m.Community == nil || m.Assets == nil {
		return models.ErrNotWired
	}
	return nil
}

// ListProduct puts an approved product on the marketplace of a community.
// Exclusive products get their unique asset minted and bound on first
// listing.
func (m *MarketplaceContract) ListProduct(ctx contractapi.TransactionContextInterface, callerID, productID, communityID string) error {
	if err := m.wired(); err != nil {
		return err
	}

	product, err := loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	curation, err := loadCuration(ctx, productID)
	if err != nil {
		return err
	}
	if !curation.Finalized || !curation.Approved {
		return fmt.Errorf("%w: product %s", models.ErrNotApproved, productID)
	}
	if product.OwnerID != callerID {
		return fmt.Errorf("%w: %s does not own product %s", models.ErrUnauthorized, callerID, productID)
	}
	if _, err := m.Community.GetCommunity(ctx, communityID); err != nil {
		return err
	}

	product.Listed = true
	product.ListedCommunity = communityID
	if err := saveProduct(ctx, product); err != nil {
		return err
	}

	// Unique-asset mint runs after internal bookkeeping; any failure aborts
	// the whole transaction
	if product.Exclusive && product.AssetID == "" {
		assetID, err := m.Assets.MintAsset(ctx, product.OwnerID, product.MetadataURI, productID)
		if err != nil {
			return fmt.Errorf("%w: asset mint: %v", models.ErrTransferFailed, err)
		}
		product.AssetID = assetID
		if err := saveProduct(ctx, product); err != nil {
			return err
		}
	}

	return nil
}

// BuyProduct settles a purchase of a listed product in community currency.
// Resales route 3% of the price to the original author and 97% to the
// selling owner; first sales pay the owner in full.
func (m *MarketplaceContract) BuyProduct(ctx contractapi.TransactionContextInterface, callerID, productID, communityID string) error {
	if err := m.wired(); err != nil {
		return err
	}

	product, err := loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Listed || product.ListedCommunity != communityID {
		return fmt.Errorf("%w: product %s in community %s", models.ErrNotListed, productID, communityID)
	}

	isMember, err := m.Community.IsMember(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: %s is not a member of %s", models.ErrUnauthorized, callerID, communityID)
	}

	balance, err := m.Ledger.BalanceOf(ctx, product.CommunityID, callerID)
	if err != nil {
		return err
	}
	if balance.LessThan(product.Price) {
		return fmt.Errorf("%w: price %s, buyer holds %s", models.ErrInsufficientAmount, product.Price, balance)
	}

	sellerID := product.OwnerID

	// Royalty split on resale; shares always sum exactly to the price. An
	// author buying their own product back pays the owner in full, there is
	// no royalty leg back to themselves.
	ownerShare := product.Price
	authorShare := decimal.Zero
	if sellerID != product.AuthorID && callerID != product.AuthorID {
		authorShare = product.Price.Mul(RoyaltyPct)
		ownerShare = product.Price.Sub(authorShare)
	}

	if authorShare.IsPositive() {
		if err := m.Ledger.Transfer(ctx, product.CommunityID, callerID, product.AuthorID, authorShare); err != nil {
			return err
		}
	}
	if ownerShare.IsPositive() {
		if err := m.Ledger.Transfer(ctx, product.CommunityID, callerID, sellerID, ownerShare); err != nil {
			return err
		}
	}

	product.OwnerID = callerID
	product.Listed = false
	product.ForResale = false
	product.ListedCommunity = ""
	if err := saveProduct(ctx, product); err != nil {
		return err
	}

	if err := m.Community.accrueActivity(ctx, communityID, callerID, ActivityPerTrade); err != nil {
		return err
	}

	// Asset hand-off happens last, after all internal state is committed
	if product.Exclusive && product.AssetID != "" {
		if err := m.Assets.TransferAsset(ctx, sellerID, callerID, product.AssetID); err != nil {
			return fmt.Errorf("%w: asset transfer: %v", models.ErrTransferFailed, err)
		}
	}

	eventPayload := map[string]interface{}{
		"productId":   productID,
		"communityId": communityID,
		"sellerId":    sellerID,
		"buyerId":     callerID,
		"price":       product.Price,
		"royalty":     authorShare,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("ProductSold", eventJSON)

	return nil
}

// SellToCommunity re-lists an owned product at a new price. Gated on the
// owner's activity points; the 3% platform fee is charged to the community
// creator in community currency.
func (m *MarketplaceContract) SellToCommunity(ctx contractapi.TransactionContextInterface, callerID, productID, priceStr, communityID string) error {
	if err := m.wired(); err != nil {
		return err
	}

	product, err := loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	curation, err := loadCuration(ctx, productID)
	if err != nil {
		return err
	}
	if !curation.Finalized || !curation.Approved {
		return fmt.Errorf("%w: product %s", models.ErrNotApproved, productID)
	}
	if product.OwnerID != callerID {
		return fmt.Errorf("%w: %s does not own product %s", models.ErrUnauthorized, callerID, productID)
	}

	price, err := utils.ParseAmount(priceStr)
	if err != nil {
		return err
	}

	community, err := m.Community.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	activity, err := m.Community.GetMemberActivity(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if activity < ResaleActivityThreshold {
		return fmt.Errorf("%w: %d points, need %d", models.ErrLowActivity, activity, ResaleActivityThreshold)
	}

	fee := price.Mul(PlatformFeePct)
	if fee.IsPositive() {
		if err := m.Ledger.Transfer(ctx, communityID, community.CreatorID, TreasuryAccount, fee); err != nil {
			return err
		}
	}

	product.Price = price
	product.Listed = true
	product.ForResale = true
	product.ListedCommunity = communityID
	if err := saveProduct(ctx, product); err != nil {
		return err
	}

	return m.Community.accrueActivity(ctx, communityID, callerID, ActivityPerTrade)
}

// GetListing returns a product's current marketplace view.
func (m *MarketplaceContract) GetListing(ctx contractapi.TransactionContextInterface, productID string) (*models.Product, error) {
	return loadProduct(ctx, productID)
}
