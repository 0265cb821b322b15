package ledger

import (
	"time"

	"moneta/internal/models"
)

const cycleTagLayout = "2006-01-02"

// ResolveCycleTag maps an account's billing configuration and a transaction
// date to the canonical statement-cycle tag, the YYYY-MM-DD of the cycle
// start. It returns "" for anything that is not a credit card with a
// configured statement day.
//
// The tag is computed once at write time and stored with the transaction.
// It is never recomputed afterwards: if the account's statement day changes
// later, historical transactions keep the cycle they were written under.
func ResolveCycleTag(account *models.Account, occurredAt time.Time) string {
	if account == nil || account.Type != models.AccountTypeCreditCard {
		return ""
	}
	if account.StatementDay == nil {
		return ""
	}
	day := *account.StatementDay
	if day < 1 || day > 31 {
		return ""
	}

	year, month, _ := occurredAt.Date()
	if occurredAt.Day() < day {
		// Before this month's statement day the transaction belongs to the
		// cycle that started last month.
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}

	start := time.Date(year, month, clampToMonth(year, month, day), 0, 0, 0, 0, occurredAt.Location())
	return start.Format(cycleTagLayout)
}

// clampToMonth caps a statement day at the last day of the given month, so
// day 31 resolves to Feb 28/29 rather than rolling into March.
func clampToMonth(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
