package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// TokenContract is the public fungible-token surface of the platform: the
// bonding-curve purchase path plus the standard transfer/approve operations
// for every currency on the ledger.
type TokenContract struct {
	contractapi.Contract
	Ledger  *Ledger
	Pricing *PricingEngine
}

func (t *TokenContract) wired() error {
	if t.Ledger == nil || t.Pricing == nil {
		return models.ErrNotWired
	}
	return nil
}

// InitPlatform creates the platform currency. Called once at deployment.
func (t *TokenContract) InitPlatform(ctx contractapi.TransactionContextInterface) error {
	if err := t.wired(); err != nil {
		return err
	}
	return t.Ledger.CreateCurrency(ctx, PlatformCurrencyID, "ArtBlock", "ARTB", TokenAuthority)
}

// BuyPlatformTokens mints platform tokens to the buyer against an external
// settlement payment. The payment must equal the bonding-curve cost exactly:
// no overpayment refund, no underpayment tolerance.
func (t *TokenContract) BuyPlatformTokens(ctx contractapi.TransactionContextInterface, buyerID, amountStr, paymentStr string) error {
	if err := t.wired(); err != nil {
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

	supply, err := t.Ledger.TotalSupply(ctx, PlatformCurrencyID)
	if err != nil {
		return err
	}

	cost := t.Pricing.TotalCost(supply, amount)
	if !payment.Equal(cost) {
		return fmt.Errorf("%w: payment %s, cost %s", models.ErrInsufficientAmount, payment, cost)
	}

	if err := t.Ledger.Mint(ctx, PlatformCurrencyID, buyerID, amount, TokenAuthority); err != nil {
		return err
	}
	if err := t.creditSettlement(ctx, TreasuryAccount, payment); err != nil {
		return err
	}

	eventPayload := map[string]interface{}{
		"buyerId": buyerID,
		"amount":  amount,
		"cost":    cost,
	}
	eventJSON, _ := json.Marshal(eventPayload)
	ctx.GetStub().SetEvent("TokensPurchased", eventJSON)

	return nil
}

// Transfer moves tokens from the caller to another holder.
func (t *TokenContract) Transfer(ctx contractapi.TransactionContextInterface, currencyID, fromID, toID, amountStr string) error {
	if err := t.wired(); err != nil {
		return err
	}
	amount, err := utils.ParseAmount(amountStr)
	if err != nil {
		return err
	}
	return t.Ledger.Transfer(ctx, currencyID, fromID, toID, amount)
}

// Approve grants a spender an allowance on the owner's account.
func (t *TokenContract) Approve(ctx contractapi.TransactionContextInterface, currencyID, ownerID, spenderID, amountStr string) error {
	if err := t.wired(); err != nil {
		return err
	}
	amount, err := utils.ParseAllowance(amountStr)
	if err != nil {
		return err
	}
	return t.Ledger.Approve(ctx, currencyID, ownerID, spenderID, amount)
}

// TransferFrom spends a previously approved allowance.
func (t *TokenContract) TransferFrom(ctx contractapi.TransactionContextInterface, currencyID, spenderID, ownerID, toID, amountStr string) error {
	if err := t.wired(); err != nil {
		return err
	}
	amount, err := utils.ParseAmount(amountStr)
	if err != nil {
		return err
	}
	return t.Ledger.TransferFrom(ctx, currencyID, spenderID, ownerID, toID, amount)
}

// BalanceOf returns a holder's balance as a decimal string.
func (t *TokenContract) BalanceOf(ctx contractapi.TransactionContextInterface, currencyID, holderID string) (string, error) {
	if err := t.wired(); err != nil {
		return "", err
	}
	balance, err := t.Ledger.BalanceOf(ctx, currencyID, holderID)
	if err != nil {
		return "", err
	}
	return balance.String(), nil
}

// TotalSupply returns a currency's circulating supply as a decimal string.
func (t *TokenContract) TotalSupply(ctx contractapi.TransactionContextInterface, currencyID string) (string, error) {
	if err := t.wired(); err != nil {
		return "", err
	}
	supply, err := t.Ledger.TotalSupply(ctx, currencyID)
	if err != nil {
		return "", err
	}
	return supply.String(), nil
}

// Allowance returns a spender's remaining allowance as a decimal string.
func (t *TokenContract) Allowance(ctx contractapi.TransactionContextInterface, currencyID, ownerID, spenderID string) (string, error) {
	if err := t.wired(); err != nil {
		return "", err
	}
	allowance, err := t.Ledger.Allowance(ctx, currencyID, ownerID, spenderID)
	if err != nil {
		return "", err
	}
	return allowance.String(), nil
}

// SettlementBalanceOf returns the external settlement funds held for an
// account, typically the platform treasury.
func (t *TokenContract) SettlementBalanceOf(ctx contractapi.TransactionContextInterface, holderID string) (string, error) {
	balance, err := t.loadSettlement(ctx, holderID)
	if err != nil {
		return "", err
	}
	return balance.Balance.String(), nil
}

func (t *TokenContract) loadSettlement(ctx contractapi.TransactionContextInterface, holderID string) (*models.SettlementBalance, error) {
	settlementJSON, err := ctx.GetStub().GetState(utils.GetSettlementKey(holderID))
	if err != nil {
		return nil, fmt.Errorf("failed to read settlement balance: %v", err)
	}
	if settlementJSON == nil {
		return &models.SettlementBalance{HolderID: holderID, Balance: decimal.Zero}, nil
	}

	var balance models.SettlementBalance
	if err := json.Unmarshal(settlementJSON, &balance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement balance: %v", err)
	}
	return &balance, nil
}

func (t *TokenContract) creditSettlement(ctx contractapi.TransactionContextInterface, holderID string, amount decimal.Decimal) error {
	balance, err := t.loadSettlement(ctx, holderID)
	if err != nil {
		return err
	}
	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	balance.Balance = balance.Balance.Add(amount)
	balance.UpdatedAt = timestamp

	settlementJSON, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement balance: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetSettlementKey(holderID), settlementJSON)
}
