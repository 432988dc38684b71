package contracts

import (
	"github.com/shopspring/decimal"
)

// Pricing constants. The bonding curve exponent is fixed at 1: price grows
// linearly with circulating supply.
var (
	PlatformBaseRate = decimal.RequireFromString("0.5")

	communityVoteWeight = decimal.RequireFromString("0.6")
	platformVoteWeight  = decimal.RequireFromString("0.4")

	activityRateDivisor = decimal.NewFromInt(1000)
	discountDivisor     = decimal.NewFromInt(100)
)

// PricingEngine computes platform-token prices along the bonding curve and
// activity-adjusted community exchange rates. Stateless; all inputs are read
// from the ledger by the calling engine.
type PricingEngine struct{}

// PricePerUnit returns the platform-currency unit price at the given
// circulating supply. Zero supply prices as supply one so the curve never
// yields a zero price.
func (p *PricingEngine) PricePerUnit(supply decimal.Decimal) decimal.Decimal {
	if supply.IsZero() {
		supply = decimal.NewFromInt(1)
	}
	return PlatformBaseRate.Mul(supply)
}

// TotalCost returns the exact settlement payment required to buy amount units
// at the given supply. No refunds, no tolerance: callers must pay this value.
func (p *PricingEngine) TotalCost(supply, amount decimal.Decimal) decimal.Decimal {
	return p.PricePerUnit(supply).Mul(amount)
}

// EffectiveRate returns the community-token exchange rate for one user:
// baseRate * (1 + communityPoints/1000 - userPoints/100), clamped so the
// rate never drops below baseRate.
func (p *PricingEngine) EffectiveRate(baseRate decimal.Decimal, communityPoints, userPoints int64) decimal.Decimal {
	increase := decimal.NewFromInt(communityPoints).Div(activityRateDivisor)
	discount := decimal.NewFromInt(userPoints).Div(discountDivisor)

	adjustment := decimal.NewFromInt(1).Add(increase).Sub(discount)
	if adjustment.LessThan(decimal.NewFromInt(1)) {
		adjustment = decimal.NewFromInt(1)
	}
	return baseRate.Mul(adjustment)
}

// CommunityTokenCost returns the platform-currency cost of buying amount
// community tokens at the given effective rate.
func (p *PricingEngine) CommunityTokenCost(amount, effectiveRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(effectiveRate)
}

// VoteWeight combines a voter's community and platform balances into a single
// vote weight: 60% community, 40% platform. Balances are read live at vote
// time, not snapshotted.
func (p *PricingEngine) VoteWeight(communityBalance, platformBalance decimal.Decimal) decimal.Decimal {
	return communityVoteWeight.Mul(communityBalance).Add(platformVoteWeight.Mul(platformBalance))
}
