package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// CommunityCreationFee is the platform-currency fee debited on community
// creation, transferred to the platform treasury.
var CommunityCreationFee = decimal.NewFromInt(1000)

// CommunityContract manages communities, memberships, activity counters and
// community-token purchases.
type CommunityContract struct {
	contractapi.Contract
	Ledger  *Ledger
	Pricing *PricingEngine
}

func (c *CommunityContract) wired() error {
	if c.Ledger == nil || c.Pricing == nil {
		return models.ErrNotWired
	}
	return nil
}

// CreateCommunity registers a new community and its currency. The creator
// pays the creation fee and is auto-joined as the first member.
func (c *CommunityContract) CreateCommunity(ctx contractapi.TransactionContextInterface, callerID, name, description, tokenName, tokenSymbol string) (string, error) {
	if err := c.wired(); err != nil {
		return "", err
	}

	balance, err := c.Ledger.BalanceOf(ctx, PlatformCurrencyID, callerID)
	if err != nil {
		return "", err
	}
	if balance.LessThan(CommunityCreationFee) {
		return "", fmt.Errorf("%w: creation fee is %s, caller holds %s", models.ErrInsufficientAmount, CommunityCreationFee, balance)
	}

	// Fee is transferred to the treasury, not burned
	if err := c.Ledger.Transfer(ctx, PlatformCurrencyID, callerID, TreasuryAccount, CommunityCreationFee); err != nil {
		return "", err
	}

	communityID := utils.DeriveCurrencyID(ctx.GetStub().GetTxID(), tokenSymbol)
	if err := c.Ledger.CreateCurrency(ctx, communityID, tokenName, tokenSymbol, CommunityAuthority); err != nil {
		return "", err
	}

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return "", err
	}

	community := models.Community{
		CommunityID: communityID,
		Name:        name,
		Description: description,
		CreatorID:   callerID,
		MemberCount: 1,
		BaseRate:    decimal.NewFromInt(1),
		CreatedAt:   timestamp,
	}
	if err := c.saveCommunity(ctx, &community); err != nil {
		return "", err
	}

	membership := models.Membership{
		CommunityID: communityID,
		UserID:      callerID,
		JoinedAt:    timestamp,
	}
	if err := c.saveMembership(ctx, &membership); err != nil {
		return "", err
	}

	eventPayload := map[string]interface{}{
		"communityId": communityID,
		"name":        name,
		"creatorId":   callerID,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("CommunityCreated", eventJSON)

	return communityID, nil
}

// JoinCommunity records the caller as a member of an existing community.
func (c *CommunityContract) JoinCommunity(ctx contractapi.TransactionContextInterface, callerID, communityID string) error {
	if err := c.wired(); err != nil {
		return err
	}

	community, err := c.loadCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	existing, err := c.loadMembership(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s in community %s", models.ErrAlreadyMember, callerID, communityID)
	}

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	membership := models.Membership{
		CommunityID: communityID,
		UserID:      callerID,
		JoinedAt:    timestamp,
	}
	if err := c.saveMembership(ctx, &membership); err != nil {
		return err
	}

	community.MemberCount++
	if err := c.saveCommunity(ctx, community); err != nil {
		return err
	}

	eventPayload := map[string]interface{}{
		"communityId": communityID,
		"userId":      callerID,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("MemberJoined", eventJSON)

	return nil
}

// BuyCommunityTokens exchanges platform currency for community tokens at the
// caller's activity-adjusted rate. The payment must equal the cost exactly.
func (c *CommunityContract) BuyCommunityTokens(ctx contractapi.TransactionContextInterface, callerID, communityID, amountStr, paymentStr string) error {
	if err := c.wired(); err != nil {
		return err
	}

	amount, err := utils.ParseAmount(amountStr)
	if err != nil {
		return err
	}
	payment, err := utils.ParseAmount(paymentStr)
	if err != nil {
		return err
	}

	community, err := c.loadCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	membership, err := c.loadMembership(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if membership == nil {
		return fmt.Errorf("%w: %s is not a member of %s", models.ErrUnauthorized, callerID, communityID)
	}

	rate := c.Pricing.EffectiveRate(community.BaseRate, community.ActivityPoints, membership.ActivityPoints)
	cost := c.Pricing.CommunityTokenCost(amount, rate)
	if !payment.Equal(cost) {
		return fmt.Errorf("%w: payment %s, cost %s", models.ErrInsufficientAmount, payment, cost)
	}

	if err := c.Ledger.Transfer(ctx, PlatformCurrencyID, callerID, TreasuryAccount, payment); err != nil {
		return err
	}
	return c.Ledger.Mint(ctx, communityID, callerID, amount, CommunityAuthority)
}

// GetCommunity retrieves a community by id.
func (c *CommunityContract) GetCommunity(ctx contractapi.TransactionContextInterface, communityID string) (*models.Community, error) {
	return c.loadCommunity(ctx, communityID)
}

// IsMember reports whether a user has joined a community.
func (c *CommunityContract) IsMember(ctx contractapi.TransactionContextInterface, communityID, userID string) (bool, error) {
	membership, err := c.loadMembership(ctx, communityID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

// GetMemberActivity returns a member's activity points in a community.
func (c *CommunityContract) GetMemberActivity(ctx contractapi.TransactionContextInterface, communityID, userID string) (int64, error) {
	membership, err := c.loadMembership(ctx, communityID, userID)
	if err != nil {
		return 0, err
	}
	if membership == nil {
		return 0, fmt.Errorf("%w: %s is not a member of %s", models.ErrNotFound, userID, communityID)
	}
	return membership.ActivityPoints, nil
}

// accrueActivity bumps both the member's counter and the community aggregate.
// Counters only ever increase.
func (c *CommunityContract) accrueActivity(ctx contractapi.TransactionContextInterface, communityID, userID string, points int64) error {
	community, err := c.loadCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	membership, err := c.loadMembership(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return fmt.Errorf("%w: %s is not a member of %s", models.ErrNotFound, userID, communityID)
	}

	membership.ActivityPoints += points
	if err := c.saveMembership(ctx, membership); err != nil {
		return err
	}

	community.ActivityPoints += points
	return c.saveCommunity(ctx, community)
}

func (c *CommunityContract) loadCommunity(ctx contractapi.TransactionContextInterface, communityID string) (*models.Community, error) {
	communityJSON, err := ctx.GetStub().GetState(utils.GetCommunityKey(communityID))
	if err != nil {
		return nil, fmt.Errorf("failed to read community: %v", err)
	}
	if communityJSON == nil {
		return nil, fmt.Errorf("%w: community %s", models.ErrNotFound, communityID)
	}

	var community models.Community
	if err := json.Unmarshal(communityJSON, &community); err != nil {
		return nil, fmt.Errorf("failed to unmarshal community: %v", err)
	}
	return &community, nil
}

func (c *CommunityContract) saveCommunity(ctx contractapi.TransactionContextInterface, community *models.Community) error {
	communityJSON, err := json.Marshal(community)
	if err != nil {
		return fmt.Errorf("failed to marshal community: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetCommunityKey(community.CommunityID), communityJSON)
}

// loadMembership returns nil without error when the user never joined.
func (c *CommunityContract) loadMembership(ctx contractapi.TransactionContextInterface, communityID, userID string) (*models.Membership, error) {
	membershipJSON, err := ctx.GetStub().GetState(utils.GetMembershipKey(communityID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read membership: %v", err)
	}
	if membershipJSON == nil {
		return nil, nil
	}

	var membership models.Membership
	if err := json.Unmarshal(membershipJSON, &membership); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership: %v", err)
	}
	return &membership, nil
}

func (c *CommunityContract) saveMembership(ctx contractapi.TransactionContextInterface, membership *models.Membership) error {
	membershipJSON, err := json.Marshal(membership)
	if err != nil {
		return fmt.Errorf("failed to marshal membership: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetMembershipKey(membership.CommunityID, membership.UserID), membershipJSON)
}
