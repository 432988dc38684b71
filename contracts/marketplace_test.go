package contracts

import (
	"errors"
	"testing"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/assert"

	"github.com/roudra323/ArtBlock-Foundry/models"
)

func TestListProductGates(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	p.fundCommunity(t, communityID, "creator", 1000)

	// Unfinalized products cannot be listed
	productID, err := p.curation.SubmitProduct(p.ctx, "creator", communityID, "ipfs://meta", "100", false)
	assert.NoError(t, err)
	err = p.marketplace.ListProduct(p.ctx, "creator", productID, communityID)
	assert.ErrorIs(t, err, models.ErrNotApproved)

	approvedID := p.approvedProduct(t, "creator", communityID, "50", false)

	// Only the owner lists
	err = p.marketplace.ListProduct(p.ctx, "stranger", approvedID, communityID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", approvedID, communityID))

	product, err := p.marketplace.GetListing(p.ctx, approvedID)
	assert.NoError(t, err)
	assert.True(t, product.Listed)
	assert.Equal(t, communityID, product.ListedCommunity)
	assert.Empty(t, product.AssetID) // general products bind no asset
}

func TestListExclusiveProductMintsAsset(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "100", true)

	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))

	product, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.NotEmpty(t, product.AssetID)

	asset, err := p.assets.GetAsset(p.ctx, product.AssetID)
	assert.NoError(t, err)
	assert.Equal(t, "creator", asset.OwnerID)
	assert.Equal(t, productID, asset.ProductID)

	boundID, err := p.assets.AssetIDOf(p.ctx, productID)
	assert.NoError(t, err)
	assert.Equal(t, product.AssetID, boundID)

	// Relisting does not mint a second asset
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))
	again, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.Equal(t, product.AssetID, again.AssetID)
}

type failingAssets struct{}

func (failingAssets) MintAsset(ctx contractapi.TransactionContextInterface, ownerID, metadataURI, productID string) (string, error) {
	return "", errors.New("provider down")
}

func (failingAssets) TransferAsset(ctx contractapi.TransactionContextInterface, fromID, toID, assetID string) error {
	return errors.New("provider down")
}

func (failingAssets) AssetIDOf(ctx contractapi.TransactionContextInterface, productID string) (string, error) {
	return "", errors.New("provider down")
}

func TestListExclusiveProductProviderFailure(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "100", true)

	p.marketplace.Assets = failingAssets{}
	err := p.marketplace.ListProduct(p.ctx, "creator", productID, communityID)
	assert.ErrorIs(t, err, models.ErrTransferFailed)
}

func TestBuyProductFirstSale(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "100", false)
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))

	// Non-members cannot buy
	p.fundCommunity(t, communityID, "outsider", 500)
	err := p.marketplace.BuyProduct(p.ctx, "outsider", productID, communityID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "buyer", communityID))

	// Insufficient community balance
	err = p.marketplace.BuyProduct(p.ctx, "buyer", productID, communityID)
	assert.ErrorIs(t, err, models.ErrInsufficientAmount)

	p.fundCommunity(t, communityID, "buyer", 500)
	sellerBefore := mustDecimal(p.balance(t, communityID, "creator"))
	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "buyer", productID, communityID))

	// First sale: full price to the owner, who is also the author
	assert.Equal(t, "400", p.balance(t, communityID, "buyer"))
	sellerAfter := mustDecimal(p.balance(t, communityID, "creator"))
	assert.Equal(t, "100", sellerAfter.Sub(sellerBefore).String())

	product, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.Equal(t, "buyer", product.OwnerID)
	assert.False(t, product.Listed)
	assert.Empty(t, product.ListedCommunity)

	// Sold products cannot be bought again without a new listing
	err = p.marketplace.BuyProduct(p.ctx, "buyer", productID, communityID)
	assert.ErrorIs(t, err, models.ErrNotListed)

	// One activity point to the buyer and the community
	activity, err := p.community.GetMemberActivity(p.ctx, communityID, "buyer")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), activity)
	community, err := p.community.GetCommunity(p.ctx, communityID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), community.ActivityPoints)
}

// Scenario: reselling an approved exclusive product at 200 routes 6 to the
// author, 194 to the selling owner, and hands the bound asset to the buyer.
func TestBuyProductResaleRoyalty(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "200", true)
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "first-buyer", communityID))
	p.fundCommunity(t, communityID, "first-buyer", 300)
	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "first-buyer", productID, communityID))

	// Owner is no longer the author: relist and resell
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "first-buyer", productID, communityID))

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "second-buyer", communityID))
	p.fundCommunity(t, communityID, "second-buyer", 300)

	authorBefore := mustDecimal(p.balance(t, communityID, "creator"))
	sellerBefore := mustDecimal(p.balance(t, communityID, "first-buyer"))

	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "second-buyer", productID, communityID))

	authorAfter := mustDecimal(p.balance(t, communityID, "creator"))
	sellerAfter := mustDecimal(p.balance(t, communityID, "first-buyer"))

	// Royalty split sums exactly to the price
	assert.Equal(t, "6", authorAfter.Sub(authorBefore).String())
	assert.Equal(t, "194", sellerAfter.Sub(sellerBefore).String())
	assert.Equal(t, "100", p.balance(t, communityID, "second-buyer"))

	// The unique asset followed the product
	product, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.Equal(t, "second-buyer", product.OwnerID)
	asset, err := p.assets.GetAsset(p.ctx, product.AssetID)
	assert.NoError(t, err)
	assert.Equal(t, "second-buyer", asset.OwnerID)

	p.checkConservation(t, communityID,
		"creator", "first-buyer", "second-buyer", "upvoter", EscrowAccount, TreasuryAccount)
}

// An author buying their own product back from a later owner pays the owner
// in full; no royalty leg runs back to the author.
func TestBuyProductAuthorBuyBack(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "200", true)
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "collector", communityID))
	p.fundCommunity(t, communityID, "collector", 300)
	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "collector", productID, communityID))

	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "collector", productID, communityID))

	authorBefore := mustDecimal(p.balance(t, communityID, "creator"))
	sellerBefore := mustDecimal(p.balance(t, communityID, "collector"))

	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "creator", productID, communityID))

	authorAfter := mustDecimal(p.balance(t, communityID, "creator"))
	sellerAfter := mustDecimal(p.balance(t, communityID, "collector"))
	assert.Equal(t, "-200", authorAfter.Sub(authorBefore).String())
	assert.Equal(t, "200", sellerAfter.Sub(sellerBefore).String())

	product, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.Equal(t, "creator", product.OwnerID)
	asset, err := p.assets.GetAsset(p.ctx, product.AssetID)
	assert.NoError(t, err)
	assert.Equal(t, "creator", asset.OwnerID)

	p.checkConservation(t, communityID,
		"creator", "collector", "upvoter", EscrowAccount, TreasuryAccount)
}

func TestSellToCommunity(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")
	productID := p.approvedProduct(t, "creator", communityID, "100", false)

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "owner2", communityID))
	p.fundCommunity(t, communityID, "owner2", 300)
	assert.NoError(t, p.marketplace.ListProduct(p.ctx, "creator", productID, communityID))
	assert.NoError(t, p.marketplace.BuyProduct(p.ctx, "owner2", productID, communityID))

	// One trade = one activity point, below the resale floor
	err := p.marketplace.SellToCommunity(p.ctx, "owner2", productID, "200", communityID)
	assert.ErrorIs(t, err, models.ErrLowActivity)

	assert.NoError(t, p.community.accrueActivity(p.ctx, communityID, "owner2", 9))

	creatorBefore := mustDecimal(p.balance(t, communityID, "creator"))
	assert.NoError(t, p.marketplace.SellToCommunity(p.ctx, "owner2", productID, "200", communityID))

	// 3% platform fee on the new price, charged to the community creator
	creatorAfter := mustDecimal(p.balance(t, communityID, "creator"))
	assert.Equal(t, "-6", creatorAfter.Sub(creatorBefore).String())
	assert.Equal(t, "6", p.balance(t, communityID, TreasuryAccount))

	product, err := p.marketplace.GetListing(p.ctx, productID)
	assert.NoError(t, err)
	assert.True(t, product.Listed)
	assert.True(t, product.ForResale)
	assert.Equal(t, "200", product.Price.String())
}
