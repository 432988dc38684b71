package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roudra323/ArtBlock-Foundry/models"
)

func TestCreateCommunity(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")

	community, err := p.community.GetCommunity(p.ctx, communityID)
	assert.NoError(t, err)
	assert.Equal(t, "creator", community.CreatorID)
	assert.Equal(t, int64(1), community.MemberCount)
	assert.Equal(t, "1", community.BaseRate.String())

	// Community currency created alongside, zero supply
	currency, err := p.ledger.GetCurrency(p.ctx, communityID)
	assert.NoError(t, err)
	assert.Equal(t, "SKC", currency.Symbol)
	assert.True(t, currency.TotalSupply.IsZero())
	assert.Equal(t, CommunityAuthority, currency.Authority)

	// Fee moved to the treasury, not burned
	assert.Equal(t, "0", p.balance(t, PlatformCurrencyID, "creator"))
	assert.Equal(t, "1000", p.balance(t, PlatformCurrencyID, TreasuryAccount))
	p.checkConservation(t, PlatformCurrencyID, "creator", TreasuryAccount)

	// Creator is auto-joined
	isMember, err := p.community.IsMember(p.ctx, communityID, "creator")
	assert.NoError(t, err)
	assert.True(t, isMember)
}

// Scenario: a caller holding less than the creation fee cannot create a
// community.
func TestCreateCommunityInsufficientFee(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	p.fund(t, "pauper", 999)

	_, err := p.community.CreateCommunity(p.ctx, "pauper", "Art", "desc", "ArtCoin", "ART")
	assert.ErrorIs(t, err, models.ErrInsufficientAmount)
	assert.Equal(t, "999", p.balance(t, PlatformCurrencyID, "pauper"))
}

func TestJoinCommunity(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")

	err := p.community.JoinCommunity(p.ctx, "alice", communityID)
	assert.NoError(t, err)

	community, err := p.community.GetCommunity(p.ctx, communityID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), community.MemberCount)

	// Joining twice fails
	err = p.community.JoinCommunity(p.ctx, "alice", communityID)
	assert.ErrorIs(t, err, models.ErrAlreadyMember)

	// Unknown community fails
	err = p.community.JoinCommunity(p.ctx, "alice", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBuyCommunityTokens(t *testing.T) {
	p := newPlatform(t)

	p.ctx.stub.MockTransactionStart("txID1")
	defer p.ctx.stub.MockTransactionEnd("txID1")

	communityID := p.createCommunity(t, "creator")

	// Non-members cannot buy
	p.fund(t, "outsider", 100)
	err := p.community.BuyCommunityTokens(p.ctx, "outsider", communityID, "10", "10")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	assert.NoError(t, p.community.JoinCommunity(p.ctx, "alice", communityID))
	p.fund(t, "alice", 100)

	// Base rate 1, no activity: 10 tokens cost exactly 10
	err = p.community.BuyCommunityTokens(p.ctx, "alice", communityID, "10", "9")
	assert.ErrorIs(t, err, models.ErrInsufficientAmount)

	err = p.community.BuyCommunityTokens(p.ctx, "alice", communityID, "10", "10")
	assert.NoError(t, err)
	assert.Equal(t, "10", p.balance(t, communityID, "alice"))
	assert.Equal(t, "90", p.balance(t, PlatformCurrencyID, "alice"))

	p.checkConservation(t, communityID, "alice")
}
