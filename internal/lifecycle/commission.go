package lifecycle

import "TalentHive/internal/apperr"

// Breakdown splits an escrow amount between the platform and the freelancer.
// All values are minor currency units.
type Breakdown struct {
	Amount             int64 `json:"amount"`
	PlatformCommission int64 `json:"platform_commission"`
	FreelancerAmount   int64 `json:"freelancer_amount"`
}

// ComputeBreakdown applies a commission rate given in basis points, rounding
// the commission half up to the nearest minor unit.
func ComputeBreakdown(amount, commissionBPS int64) (Breakdown, error) {
	const op = "escrow.breakdown"
	if amount <= 0 {
		return Breakdown{}, apperr.Validation(op, "amount must be positive")
	}
	if commissionBPS < 0 || commissionBPS > 10000 {
		return Breakdown{}, apperr.Validation(op, "commission rate out of range: %d bps", commissionBPS)
	}
	commission := (amount*commissionBPS + 5000) / 10000
	return Breakdown{
		Amount:             amount,
		PlatformCommission: commission,
		FreelancerAmount:   amount - commission,
	}, nil
}
