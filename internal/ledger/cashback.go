// Package ledger holds the pure functions of the transaction consistency
// engine: cashback arithmetic, billing-cycle tagging, and the derivation of
// conceptual monetary lines from a transaction intent. Nothing in this
// package touches the database; the services layer feeds it resolved ids and
// persists the results.
package ledger

import "math"

// Cashback is the result of splitting an original amount into the portion
// given back and the net amount actually settled.
type Cashback struct {
	Given int64 `json:"given"`
	Net   int64 `json:"net"`
}

// ComputeCashback computes the cashback given away and the net settlement
// for an original amount, a percentage share (a ratio in [0,1]) and a fixed
// share. Inputs are clamped rather than rejected: manual entry is lenient by
// design. The cashback given is capped at the original amount so the net can
// never go negative.
//
// Create and update must both go through this function so re-editing a
// transaction with identical inputs reproduces the same net amount.
func ComputeCashback(originalAmount int64, sharePercent float64, shareFixed int64) Cashback {
	if originalAmount < 0 {
		originalAmount = 0
	}
	if sharePercent < 0 {
		sharePercent = 0
	} else if sharePercent > 1 {
		sharePercent = 1
	}

	given := int64(math.Round(float64(originalAmount)*sharePercent)) + shareFixed
	if given < 0 {
		given = 0
	}
	if given > originalAmount {
		given = originalAmount
	}

	return Cashback{Given: given, Net: originalAmount - given}
}
