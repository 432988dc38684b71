package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// Engine authority names and well-known ledger accounts.
const (
	TokenAuthority     = "token-engine"
	CommunityAuthority = "community-engine"

	PlatformCurrencyID = "ARTB"

	TreasuryAccount = "platform-treasury"
	EscrowAccount   = "curation-escrow"
)

// Ledger owns all currency and balance state. It is not registered as a
// chaincode contract itself; the engine contracts hold a shared reference and
// every balance mutation in the system goes through it.
type Ledger struct{}

// CreateCurrency registers a new currency with zero supply.
func (l *Ledger) CreateCurrency(ctx contractapi.TransactionContextInterface, currencyID, name, symbol, authority string) error {
	existing, err := ctx.GetStub().GetState(utils.GetCurrencyKey(currencyID))
	if err != nil {
		return fmt.Errorf("failed to read currency: %v", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: currency %s", models.ErrAlreadyExists, currencyID)
	}

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	currency := models.Currency{
		CurrencyID:  currencyID,
		Name:        name,
		Symbol:      symbol,
		Decimals:    utils.TokenDecimals,
		TotalSupply: decimal.Zero,
		Authority:   authority,
		CreatedAt:   timestamp,
	}
	return l.saveCurrency(ctx, &currency)
}

// GetCurrency retrieves a currency record.
func (l *Ledger) GetCurrency(ctx contractapi.TransactionContextInterface, currencyID string) (*models.Currency, error) {
	currencyJSON, err := ctx.GetStub().GetState(utils.GetCurrencyKey(currencyID))
	if err != nil {
		return nil, fmt.Errorf("failed to read currency: %v", err)
	}
	if currencyJSON == nil {
		return nil, fmt.Errorf("%w: currency %s", models.ErrNotFound, currencyID)
	}

	var currency models.Currency
	if err := json.Unmarshal(currencyJSON, &currency); err != nil {
		return nil, fmt.Errorf("failed to unmarshal currency: %v", err)
	}
	return &currency, nil
}

// Mint creates new units in a holder's account. Restricted to the currency's
// authority.
func (l *Ledger) Mint(ctx contractapi.TransactionContextInterface, currencyID, toID string, amount decimal.Decimal, authority string) error {
	currency, err := l.GetCurrency(ctx, currencyID)
	if err != nil {
		return err
	}
	if currency.Authority != authority {
		return fmt.Errorf("%w: %s cannot mint %s", models.ErrUnauthorized, authority, currencyID)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: mint amount must be positive", models.ErrInvalidAmount)
	}

	account, err := l.loadAccount(ctx, currencyID, toID)
	if err != nil {
		return err
	}
	account.Balance = account.Balance.Add(amount)
	if err := l.saveAccount(ctx, account); err != nil {
		return err
	}

	currency.TotalSupply = currency.TotalSupply.Add(amount)
	return l.saveCurrency(ctx, currency)
}

// Burn destroys units from a holder's account. Restricted to the currency's
// authority.
func (l *Ledger) Burn(ctx contractapi.TransactionContextInterface, currencyID, fromID string, amount decimal.Decimal, authority string) error {
	currency, err := l.GetCurrency(ctx, currencyID)
	if err != nil {
		return err
	}
	if currency.Authority != authority {
		return fmt.Errorf("%w: %s cannot burn %s", models.ErrUnauthorized, authority, currencyID)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: burn amount must be positive", models.ErrInvalidAmount)
	}

	account, err := l.loadAccount(ctx, currencyID, fromID)
	if err != nil {
		return err
	}
	if account.Balance.LessThan(amount) {
		return fmt.Errorf("%w: burn %s from %s", models.ErrInsufficientAmount, amount, fromID)
	}
	account.Balance = account.Balance.Sub(amount)
	if err := l.saveAccount(ctx, account); err != nil {
		return err
	}

	currency.TotalSupply = currency.TotalSupply.Sub(amount)
	return l.saveCurrency(ctx, currency)
}

// Transfer moves units between two holders of the same currency.
func (l *Ledger) Transfer(ctx contractapi.TransactionContextInterface, currencyID, fromID, toID string, amount decimal.Decimal) error {
	if _, err := l.GetCurrency(ctx, currencyID); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive", models.ErrInvalidAmount)
	}
	if fromID == toID {
		return fmt.Errorf("%w: self transfer", models.ErrInvalidAmount)
	}

	sender, err := l.loadAccount(ctx, currencyID, fromID)
	if err != nil {
		return err
	}
	if sender.Balance.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", models.ErrInsufficientAmount, fromID, sender.Balance, amount)
	}

	receiver, err := l.loadAccount(ctx, currencyID, toID)
	if err != nil {
		return err
	}

	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)

	if err := l.saveAccount(ctx, sender); err != nil {
		return err
	}
	return l.saveAccount(ctx, receiver)
}

// Approve sets a spender's allowance on the owner's account, replacing any
// prior value.
func (l *Ledger) Approve(ctx contractapi.TransactionContextInterface, currencyID, ownerID, spenderID string, amount decimal.Decimal) error {
	if _, err := l.GetCurrency(ctx, currencyID); err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: allowance must not be negative", models.ErrInvalidAmount)
	}

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	allowance := models.Allowance{
		CurrencyID: currencyID,
		OwnerID:    ownerID,
		SpenderID:  spenderID,
		Amount:     amount,
		UpdatedAt:  timestamp,
	}
	allowanceJSON, err := json.Marshal(allowance)
	if err != nil {
		return fmt.Errorf("failed to marshal allowance: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetAllowanceKey(currencyID, ownerID, spenderID), allowanceJSON)
}

// Allowance returns the spender's remaining allowance on the owner's account.
func (l *Ledger) Allowance(ctx contractapi.TransactionContextInterface, currencyID, ownerID, spenderID string) (decimal.Decimal, error) {
	allowanceJSON, err := ctx.GetStub().GetState(utils.GetAllowanceKey(currencyID, ownerID, spenderID))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read allowance: %v", err)
	}
	if allowanceJSON == nil {
		return decimal.Zero, nil
	}

	var allowance models.Allowance
	if err := json.Unmarshal(allowanceJSON, &allowance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to unmarshal allowance: %v", err)
	}
	return allowance.Amount, nil
}

// TransferFrom moves units out of the owner's account on the strength of a
// prior approval, decrementing the spender's allowance.
func (l *Ledger) TransferFrom(ctx contractapi.TransactionContextInterface, currencyID, spenderID, ownerID, toID string, amount decimal.Decimal) error {
	allowance, err := l.Allowance(ctx, currencyID, ownerID, spenderID)
	if err != nil {
		return err
	}
	if allowance.LessThan(amount) {
		return fmt.Errorf("%w: %s allowed %s, needs %s", models.ErrInsufficientAllowance, spenderID, allowance, amount)
	}

	if err := l.Transfer(ctx, currencyID, ownerID, toID, amount); err != nil {
		return err
	}
	return l.Approve(ctx, currencyID, ownerID, spenderID, allowance.Sub(amount))
}

// BalanceOf returns a holder's balance, zero for unknown accounts.
func (l *Ledger) BalanceOf(ctx contractapi.TransactionContextInterface, currencyID, holderID string) (decimal.Decimal, error) {
	account, err := l.loadAccount(ctx, currencyID, holderID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// TotalSupply returns the circulating supply of a currency.
func (l *Ledger) TotalSupply(ctx contractapi.TransactionContextInterface, currencyID string) (decimal.Decimal, error) {
	currency, err := l.GetCurrency(ctx, currencyID)
	if err != nil {
		return decimal.Zero, err
	}
	return currency.TotalSupply, nil
}

func (l *Ledger) loadAccount(ctx contractapi.TransactionContextInterface, currencyID, holderID string) (*models.Account, error) {
	accountJSON, err := ctx.GetStub().GetState(utils.GetAccountKey(currencyID, holderID))
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %v", err)
	}
	if accountJSON == nil {
		// Accounts spring into existence at zero balance
		return &models.Account{
			CurrencyID: currencyID,
			HolderID:   holderID,
			Balance:    decimal.Zero,
		}, nil
	}

	var account models.Account
	if err := json.Unmarshal(accountJSON, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %v", err)
	}
	return &account, nil
}

func (l *Ledger) saveAccount(ctx contractapi.TransactionContextInterface, account *models.Account) error {
	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return err
	}
	account.UpdatedAt = timestamp

	accountJSON, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetAccountKey(account.CurrencyID, account.HolderID), accountJSON)
}

func (l *Ledger) saveCurrency(ctx contractapi.TransactionContextInterface, currency *models.Currency) error {
	currencyJSON, err := json.Marshal(currency)
	if err != nil {
		return fmt.Errorf("failed to marshal currency: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetCurrencyKey(currency.CurrencyID), currencyJSON)
}
