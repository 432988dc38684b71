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

// Curation constants. The voting window is fixed at 7 days; stakes are 30% of
// the declared price for exclusive products and 15% for general ones. A
// rejected product gets half its stake back.
var (
	VotingWindow = 7 * 24 * time.Hour

	ExclusiveStakePct = decimal.RequireFromString("0.30")
	GeneralStakePct   = decimal.RequireFromString("0.15")
	RejectedRefundPct = decimal.RequireFromString("0.5")
)

// CurationContract runs the stake-and-vote pipeline that decides whether a
// submitted product becomes tradeable.
type CurationContract struct {
	contractapi.Contract
	Ledger    *Ledger
	Pricing   *PricingEngine
	Community *CommunityContract
}

func (cu *CurationContract) wired() error {
	if cu.Ledger == nil || cu.Pricing == nil || cu.Community == nil {
		return models.ErrNotWired
	}
	return nil
}

// SubmitProduct creates a product and its curation record, escrowing the
// submitter's stake in community currency. Only the community creator may
// submit.
func (cu *CurationContract) SubmitProduct(ctx contractapi.TransactionContextInterface, callerID, communityID, metadataURI, priceStr string, isExclusive bool) (string, error) {
	if err := cu.wired(); err != nil {
		return "", err
	}

	community, err := cu.Community.GetCommunity(ctx, communityID)
	if err != nil {
		return "", err
	}
	if community.CreatorID != callerID {
		return "", fmt.Errorf("%w: only the community creator can submit products", models.ErrUnauthorized)
	}

	price, err := utils.ParseAmount(priceStr)
	if err != nil {
		return "", err
	}

	productID := utils.DeriveProductID(ctx.GetStub().GetTxID(), callerID, communityID, metadataURI, price.String())
	existing, err := ctx.GetStub().GetState(utils.GetProductKey(productID))
	if err != nil {
		return "", fmt.Errorf("failed to read product: %v", err)
	}
	if existing != nil {
		return "", fmt.Errorf("%w: product %s", models.ErrAlreadyExists, productID)
	}

	stakePct := GeneralStakePct
	if isExclusive {
		stakePct = ExclusiveStakePct
	}
	stake := price.Mul(stakePct)

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return "", err
	}

	product := models.Product{
		ProductID:   productID,
		CommunityID: communityID,
		MetadataURI: metadataURI,
		Price:       price,
		Exclusive:   isExclusive,
		AuthorID:    callerID,
		OwnerID:     callerID,
		CreatedAt:   timestamp,
	}
	if err := saveProduct(ctx, &product); err != nil {
		return "", err
	}

	curation := models.Curation{
		ProductID:      productID,
		Stake:          stake,
		UpvoteWeight:   decimal.Zero,
		DownvoteWeight: decimal.Zero,
		SubmittedAt:    timestamp,
	}
	if err := saveCuration(ctx, &curation); err != nil {
		return "", err
	}

	// Escrow the stake after the records exist
	if stake.IsPositive() {
		if err := cu.Ledger.Transfer(ctx, communityID, callerID, EscrowAccount, stake); err != nil {
			return "", err
		}
	}

	eventPayload := map[string]interface{}{
		"productId":   productID,
		"communityId": communityID,
		"authorId":    callerID,
		"price":       price,
		"exclusive":   isExclusive,
		"stake":       stake,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("ProductSubmitted", eventJSON)

	return productID, nil
}

// VoteOnProduct accumulates the caller's vote weight for or against a
// product. Weight is 60% community balance + 40% platform balance, read live
// at vote time. Product votes do not track a has-voted set.
func (cu *CurationContract) VoteOnProduct(ctx contractapi.TransactionContextInterface, callerID, productID string, isUpvote bool) error {
	if err := cu.wired(); err != nil {
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
	if curation.Finalized {
		return fmt.Errorf("%w: product %s", models.ErrAlreadyApproved, productID)
	}

	communityBalance, err := cu.Ledger.BalanceOf(ctx, product.CommunityID, callerID)
	if err != nil {
		return err
	}
	platformBalance, err := cu.Ledger.BalanceOf(ctx, PlatformCurrencyID, callerID)
	if err != nil {
		return err
	}

	weight := cu.Pricing.VoteWeight(communityBalance, platformBalance)
	if isUpvote {
		curation.UpvoteWeight = curation.UpvoteWeight.Add(weight)
	} else {
		curation.DownvoteWeight = curation.DownvoteWeight.Add(weight)
	}
	if err := saveCuration(ctx, curation); err != nil {
		return err
	}

	eventPayload := map[string]interface{}{
		"productId": productID,
		"voterId":   callerID,
		"upvote":    isUpvote,
		"weight":    weight,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("VoteCast", eventJSON)

	return nil
}

// FinalizeCuration closes voting once the window has elapsed and settles the
// stake exactly once: approved products return the full stake to the current
// owner, rejected products return half and forfeit the rest to the treasury.
func (cu *CurationContract) FinalizeCuration(ctx contractapi.TransactionContextInterface, productID string) error {
	if err := cu.wired(); err != nil {
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
	if curation.Finalized || curation.StakeReturned {
		return fmt.Errorf("%w: product %s", models.ErrAlreadyApproved, productID)
	}

	now, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}
	deadline := curation.SubmittedAt.Add(VotingWindow)
	if now.Before(deadline) {
		return fmt.Errorf("%w: voting closes at %s", models.ErrVotingOngoing, deadline.UTC().Format(time.RFC3339))
	}

	curation.Approved = curation.UpvoteWeight.GreaterThan(curation.DownvoteWeight)
	curation.Finalized = true
	curation.StakeReturned = true
	if err := saveCuration(ctx, curation); err != nil {
		return err
	}

	// Settle the escrow after the record is marked settled
	if curation.Stake.IsPositive() {
		if curation.Approved {
			if err := cu.Ledger.Transfer(ctx, product.CommunityID, EscrowAccount, product.OwnerID, curation.Stake); err != nil {
				return err
			}
		} else {
			refund := curation.Stake.Mul(RejectedRefundPct)
			forfeit := curation.Stake.Sub(refund)
			if refund.IsPositive() {
				if err := cu.Ledger.Transfer(ctx, product.CommunityID, EscrowAccount, product.OwnerID, refund); err != nil {
					return err
				}
			}
			if forfeit.IsPositive() {
				if err := cu.Ledger.Transfer(ctx, product.CommunityID, EscrowAccount, TreasuryAccount, forfeit); err != nil {
					return err
				}
			}
		}
	}

	eventPayload := map[string]interface{}{
		"productId":      productID,
		"approved":       curation.Approved,
		"upvoteWeight":   curation.UpvoteWeight,
		"downvoteWeight": curation.DownvoteWeight,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("ProductFinalized", eventJSON)

	return nil
}

// GetProduct retrieves a product by id.
func (cu *CurationContract) GetProduct(ctx contractapi.TransactionContextInterface, productID string) (*models.Product, error) {
	return loadProduct(ctx, productID)
}

// GetCuration retrieves a product's curation record.
func (cu *CurationContract) GetCuration(ctx contractapi.TransactionContextInterface, productID string) (*models.Curation, error) {
	return loadCuration(ctx, productID)
}

// GetProductsByCommunity lists every product submitted to a community.
func (cu *CurationContract) GetProductsByCommunity(ctx contractapi.TransactionContextInterface, communityID string) ([]*models.Product, error) {
	return listProductsByCommunity(ctx, communityID)
}
