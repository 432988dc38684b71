package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// Governance constants: proposed rates must stay inside [MinRate, MaxRate],
// proposals vote for 3 days, accepted changes lock the community for 30 days,
// and acceptance needs 60% of the cast weight.
var (
	MinRate = decimal.RequireFromString("0.1")
	MaxRate = decimal.NewFromInt(10)

	RateVotingWindow   = 3 * 24 * time.Hour
	RateChangeCooldown = 30 * 24 * time.Hour

	RateApprovalThreshold = decimal.RequireFromString("0.6")
)

// GovernanceContract runs community rate-change proposals: one vote per
// caller, weighted like product votes, finalized against a 60% threshold.
type GovernanceContract struct {
	contractapi.Contract
	Ledger    *Ledger
	Pricing   *PricingEngine
	Community *CommunityContract
}

func (g *GovernanceContract) wired() error {
	if g.Ledger == nil || g.Pricing == nil || g.Community == nil {
		return models.ErrNotWired
	}
	return nil
}

// ProposeRateChange opens a proposal to change a community's base exchange
// rate. Member-only, rate-bounded, and blocked inside the cooldown window
// after the last accepted change.
func (g *GovernanceContract) ProposeRateChange(ctx contractapi.TransactionContextInterface, callerID, communityID, rateStr, rationale string) (string, error) {
	if err := g.wired(); err != nil {
		return "", err
	}

	community, err := g.Community.GetCommunity(ctx, communityID)
	if err != nil {
		return "", err
	}
	isMember, err := g.Community.IsMember(ctx, communityID, callerID)
	if err != nil {
		return "", err
	}
	if !isMember {
		return "", fmt.Errorf("%w: %s is not a member of %s", models.ErrUnauthorized, callerID, communityID)
	}

	now, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return "", err
	}
	if !community.LastRateChange.IsZero() {
		cooldownEnds := community.LastRateChange.Add(RateChangeCooldown)
		if now.Before(cooldownEnds) {
			return "", fmt.Errorf("%w: next change allowed at %s", models.ErrRateChangeTooSoon, cooldownEnds.UTC().Format(time.RFC3339))
		}
	}

	rate, err := utils.ParseRate(rateStr)
	if err != nil {
		return "", err
	}
	if rate.LessThan(MinRate) || rate.GreaterThan(MaxRate) {
		return "", fmt.Errorf("%w: %s outside [%s, %s]", models.ErrInvalidRate, rate, MinRate, MaxRate)
	}

	proposalID := utils.DeriveProposalID(ctx.GetStub().GetTxID(), communityID)
	existing, err := ctx.GetStub().GetState(utils.GetProposalKey(proposalID))
	if err != nil {
		return "", fmt.Errorf("failed to read proposal: %v", err)
	}
	if existing != nil {
		return "", fmt.Errorf("%w: proposal %s", models.ErrAlreadyExists, proposalID)
	}

	proposal := models.RateChangeProposal{
		ProposalID:   proposalID,
		CommunityID:  communityID,
		ProposerID:   callerID,
		ProposedRate: rate,
		Rationale:    rationale,
		VotingEndsAt: now.Add(RateVotingWindow),
		Voters:       map[string]bool{},
		VotesFor:     decimal.Zero,
		VotesAgainst: decimal.Zero,
		CreatedAt:    now,
	}
	if err := g.saveProposal(ctx, &proposal); err != nil {
		return "", err
	}

	return proposal.ProposalID, nil
}

// VoteOnRateChange casts the caller's weighted vote. One vote per caller per
// proposal, only before the deadline.
func (g *GovernanceContract) VoteOnRateChange(ctx contractapi.TransactionContextInterface, callerID, proposalID string, support bool) error {
	if err := g.wired(); err != nil {
		return err
	}

	proposal, err := g.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.Finalized {
		return fmt.Errorf("%w: proposal %s", models.ErrAlreadyApproved, proposalID)
	}

	now, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}
	if !now.Before(proposal.VotingEndsAt) {
		return fmt.Errorf("%w: proposal %s closed at %s", models.ErrVotingEnded, proposalID, proposal.VotingEndsAt.UTC().Format(time.RFC3339))
	}
	if proposal.Voters[callerID] {
		return fmt.Errorf("%w: %s on proposal %s", models.ErrAlreadyVoted, callerID, proposalID)
	}

	communityBalance, err := g.Ledger.BalanceOf(ctx, proposal.CommunityID, callerID)
	if err != nil {
		return err
	}
	platformBalance, err := g.Ledger.BalanceOf(ctx, PlatformCurrencyID, callerID)
	if err != nil {
		return err
	}

	weight := g.Pricing.VoteWeight(communityBalance, platformBalance)
	if support {
		proposal.VotesFor = proposal.VotesFor.Add(weight)
	} else {
		proposal.VotesAgainst = proposal.VotesAgainst.Add(weight)
	}
	proposal.Voters[callerID] = true

	return g.saveProposal(ctx, proposal)
}

// FinalizeRateChange closes a proposal after its deadline. Acceptance needs
// votes-for to reach 60% of the cast weight; on success the community's base
// rate is updated and the cooldown clock resets.
func (g *GovernanceContract) FinalizeRateChange(ctx contractapi.TransactionContextInterface, proposalID string) error {
	if err := g.wired(); err != nil {
		return err
	}

	proposal, err := g.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.Finalized {
		return fmt.Errorf("%w: proposal %s", models.ErrAlreadyApproved, proposalID)
	}

	now, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}
	if now.Before(proposal.VotingEndsAt) {
		return fmt.Errorf("%w: proposal %s closes at %s", models.ErrVotingOngoing, proposalID, proposal.VotingEndsAt.UTC().Format(time.RFC3339))
	}

	total := proposal.VotesFor.Add(proposal.VotesAgainst)
	if total.IsZero() || proposal.VotesFor.LessThan(total.Mul(RateApprovalThreshold)) {
		return fmt.Errorf("%w: %s for of %s cast", models.ErrThresholdNotMet, proposal.VotesFor, total)
	}

	proposal.Finalized = true
	proposal.Accepted = true
	if err := g.saveProposal(ctx, proposal); err != nil {
		return err
	}

	community, err := g.Community.GetCommunity(ctx, proposal.CommunityID)
	if err != nil {
		return err
	}
	community.BaseRate = proposal.ProposedRate
	community.LastRateChange = now
	if err := g.Community.saveCommunity(ctx, community); err != nil {
		return err
	}

	eventPayload := map[string]interface{}{
		"proposalId":  proposalID,
		"communityId": proposal.CommunityID,
		"newRate":     proposal.ProposedRate,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("RateChangeAccepted", eventJSON)

	return nil
}

// GetProposal retrieves a rate-change proposal by id.
func (g *GovernanceContract) GetProposal(ctx contractapi.TransactionContextInterface, proposalID string) (*models.RateChangeProposal, error) {
	proposalJSON, err := ctx.GetStub().GetState(utils.GetProposalKey(proposalID))
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal: %v", err)
	}
	if proposalJSON == nil {
		return nil, fmt.Errorf("%w: proposal %s", models.ErrNotFound, proposalID)
	}

	var proposal models.RateChangeProposal
	if err := json.Unmarshal(proposalJSON, &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal: %v", err)
	}
	return &proposal, nil
}

func (g *GovernanceContract) saveProposal(ctx contractapi.TransactionContextInterface, proposal *models.RateChangeProposal) error {
	proposalJSON, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetProposalKey(proposal.ProposalID), proposalJSON)
}
