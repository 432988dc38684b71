package contracts

import (
	"testing"
	"time"

	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/roudra323/ArtBlock-Foundry/models"
)

// MockTransactionContext is a mock transaction context
type MockTransactionContext struct {
	contractapi.TransactionContext
	stub *shimtest.MockStub
}

func (m *MockTransactionContext) GetStub() shim.ChaincodeStubInterface {
	return m.stub
}

func NewMockContext() *MockTransactionContext {
	return &MockTransactionContext{
		stub: shimtest.NewMockStub("mockStub", nil),
	}
}

// Warp advances the mock transaction clock. Only valid inside a transaction.
func (m *MockTransactionContext) Warp(d time.Duration) {
	m.stub.TxTimestamp = &timestamp.Timestamp{
		Seconds: m.stub.TxTimestamp.GetSeconds() + int64(d/time.Second),
	}
}

// platform bundles every engine wired the way main.go wires them.
type platform struct {
	ctx         *MockTransactionContext
	ledger      *Ledger
	pricing     *PricingEngine
	token       *TokenContract
	community   *CommunityContract
	curation    *CurationContract
	marketplace *MarketplaceContract
	governance  *GovernanceContract
	assets      *UniqueAssetContract
}

func newPlatform(t testing.TB) *platform {
	t.Helper()

	ledger := new(Ledger)
	pricing := new(PricingEngine)
	community := &CommunityContract{Ledger: ledger, Pricing: pricing}
	assets := new(UniqueAssetContract)

	p := &platform{
		ctx:         NewMockContext(),
		ledger:      ledger,
		pricing:     pricing,
		token:       &TokenContract{Ledger: ledger, Pricing: pricing},
		community:   community,
		curation:    &CurationContract{Ledger: ledger, Pricing: pricing, Community: community},
		marketplace: &MarketplaceContract{Ledger: ledger, Community: community, Assets: assets},
		governance:  &GovernanceContract{Ledger: ledger, Pricing: pricing, Community: community},
		assets:      assets,
	}

	p.ctx.stub.MockTransactionStart("setupTx")
	err := p.token.InitPlatform(p.ctx)
	p.ctx.stub.MockTransactionEnd("setupTx")
	assert.NoError(t, err)

	return p
}

// fund mints platform currency straight into a holder's account.
func (p *platform) fund(t testing.TB, holderID string, amount int64) {
	t.Helper()
	err := p.ledger.Mint(p.ctx, PlatformCurrencyID, holderID, decimal.NewFromInt(amount), TokenAuthority)
	assert.NoError(t, err)
}

// fundCommunity mints community currency straight into a holder's account.
func (p *platform) fundCommunity(t testing.TB, communityID, holderID string, amount int64) {
	t.Helper()
	err := p.ledger.Mint(p.ctx, communityID, holderID, decimal.NewFromInt(amount), CommunityAuthority)
	assert.NoError(t, err)
}

// createCommunity funds the creator and registers a community.
func (p *platform) createCommunity(t testing.TB, creatorID string) string {
	t.Helper()
	p.fund(t, creatorID, 1000)
	communityID, err := p.community.CreateCommunity(p.ctx, creatorID, "Sketchbook", "Daily sketches", "SketchCoin", "SKC")
	assert.NoError(t, err)
	return communityID
}

// approvedProduct submits a product, upvotes it and finalizes past the
// voting window, leaving it approved and returning its id.
func (p *platform) approvedProduct(t testing.TB, creatorID, communityID, priceStr string, exclusive bool) string {
	t.Helper()

	p.fundCommunity(t, communityID, creatorID, 1000)
	productID, err := p.curation.SubmitProduct(p.ctx, creatorID, communityID, "ipfs://meta", priceStr, exclusive)
	assert.NoError(t, err)

	p.fundCommunity(t, communityID, "upvoter", 100)
	assert.NoError(t, p.curation.VoteOnProduct(p.ctx, "upvoter", productID, true))

	p.ctx.Warp(VotingWindow + time.Second)
	assert.NoError(t, p.curation.FinalizeCuration(p.ctx, productID))

	return productID
}

// balance reads a holder's balance as a string, failing the test on error.
func (p *platform) balance(t testing.TB, currencyID, holderID string) string {
	t.Helper()
	b, err := p.ledger.BalanceOf(p.ctx, currencyID, holderID)
	assert.NoError(t, err)
	return b.String()
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// checkConservation asserts totalSupply == sum(balances) over the named
// holders for one currency.
func (p *platform) checkConservation(t testing.TB, currencyID string, holders ...string) {
	t.Helper()

	supply, err := p.ledger.TotalSupply(p.ctx, currencyID)
	assert.NoError(t, err)

	sum := decimal.Zero
	for _, holder := range holders {
		b, err := p.ledger.BalanceOf(p.ctx, currencyID, holder)
		assert.NoError(t, err)
		sum = sum.Add(b)
	}
	assert.True(t, supply.Equal(sum), "supply %s != sum of balances %s", supply, sum)
}

func TestRejectsCallsBeforeWiring(t *testing.T) {
	ctx := NewMockContext()

	unwired := new(TokenContract)
	err := unwired.BuyPlatformTokens(ctx, "alice", "1", "1")
	assert.ErrorIs(t, err, models.ErrNotWired)

	unwiredCommunity := new(CommunityContract)
	_, err = unwiredCommunity.CreateCommunity(ctx, "alice", "a", "b", "c", "d")
	assert.ErrorIs(t, err, models.ErrNotWired)

	unwiredMarketplace := new(MarketplaceContract)
	err = unwiredMarketplace.BuyProduct(ctx, "alice", "p", "c")
	assert.ErrorIs(t, err, models.ErrNotWired)
}
