package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a fungible currency managed by the ledger: the single
// platform currency plus one currency per community.
type Currency struct {
	CurrencyID  string          `json:"currencyId"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    int             `json:"decimals"`
	TotalSupply decimal.Decimal `json:"totalSupply"`
	Authority   string          `json:"authority"` // engine allowed to mint/burn
	CreatedAt   time.Time       `json:"createdAt"`
}

// Account records a holder's balance in one currency.
type Account struct {
	CurrencyID string          `json:"currencyId"`
	HolderID   string          `json:"holderId"`
	Balance    decimal.Decimal `json:"balance"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Allowance records how much a spender may move out of an owner's account.
type Allowance struct {
	CurrencyID string          `json:"currencyId"`
	OwnerID    string          `json:"ownerId"`
	SpenderID  string          `json:"spenderId"`
	Amount     decimal.Decimal `json:"amount"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Community represents a creator community. Its id doubles as the id of the
// community currency created alongside it.
type Community struct {
	CommunityID    string          `json:"communityId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	CreatorID      string          `json:"creatorId"`
	MemberCount    int64           `json:"memberCount"`
	ActivityPoints int64           `json:"activityPoints"` // aggregate, monotonic
	BaseRate       decimal.Decimal `json:"baseRate"`
	LastRateChange time.Time       `json:"lastRateChange,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Membership marks a user as joined to a community and carries the per-user
// activity counter used for rate discounts and resale gating.
type Membership struct {
	CommunityID    string    `json:"communityId"`
	UserID         string    `json:"userId"`
	ActivityPoints int64     `json:"activityPoints"` // monotonic
	JoinedAt       time.Time `json:"joinedAt"`
}

// Product is a creator-submitted item moving through curation and the
// marketplace. Ownership and listing fields mutate; the rest is immutable.
type Product struct {
	ProductID       string          `json:"productId"`
	CommunityID     string          `json:"communityId"`
	MetadataURI     string          `json:"metadataUri"` // opaque blob
	Price           decimal.Decimal `json:"price"`
	Exclusive       bool            `json:"exclusive"`
	AuthorID        string          `json:"authorId"`
	OwnerID         string          `json:"ownerId"`
	Listed          bool            `json:"listed"`
	ForResale       bool            `json:"forResale"`
	ListedCommunity string          `json:"listedCommunity,omitempty"`
	AssetID         string          `json:"assetId,omitempty"` // bound unique asset, exclusive only
	CreatedAt       time.Time       `json:"createdAt"`
}

// Curation tracks the stake-and-vote lifecycle of one product.
type Curation struct {
	ProductID      string          `json:"productId"`
	Stake          decimal.Decimal `json:"stake"`
	StakeReturned  bool            `json:"stakeReturned"` // flips exactly once
	UpvoteWeight   decimal.Decimal `json:"upvoteWeight"`
	DownvoteWeight decimal.Decimal `json:"downvoteWeight"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	Finalized      bool            `json:"finalized"`
	Approved       bool            `json:"approved"`
}

// RateChangeProposal is a governance proposal to change a community's base
// exchange rate. Immutable once finalized.
type RateChangeProposal struct {
	ProposalID   string          `json:"proposalId"`
	CommunityID  string          `json:"communityId"`
	ProposerID   string          `json:"proposerId"`
	ProposedRate decimal.Decimal `json:"proposedRate"`
	Rationale    string          `json:"rationale"`
	VotingEndsAt time.Time       `json:"votingEndsAt"`
	Voters       map[string]bool `json:"voters"`
	VotesFor     decimal.Decimal `json:"votesFor"`
	VotesAgainst decimal.Decimal `json:"votesAgainst"`
	Finalized    bool            `json:"finalized"`
	Accepted     bool            `json:"accepted"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SettlementBalance tracks external settlement funds held for an account,
// credited when platform tokens are bought through the bonding curve.
type SettlementBalance struct {
	HolderID  string          `json:"holderId"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UniqueAsset is the non-fungible record minted for exclusive products.
type UniqueAsset struct {
	AssetID     string    `json:"assetId"`
	ProductID   string    `json:"productId"`
	OwnerID     string    `json:"ownerId"`
	MetadataURI string    `json:"metadataUri"`
	MintedAt    time.Time `json:"mintedAt"`
}
