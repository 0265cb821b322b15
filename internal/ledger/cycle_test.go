package ledger

import (
	"testing"
	"time"

	"moneta/internal/models"
)

func creditCard(statementDay int) *models.Account {
	return &models.Account{
		Type:         models.AccountTypeCreditCard,
		StatementDay: &statementDay,
	}
}

func TestResolveCycleTag(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		account    *models.Account
		occurredAt time.Time
		want       string
	}{
		{
			name:       "nil account",
			account:    nil,
			occurredAt: date(2026, time.March, 15),
			want:       "",
		},
		{
			name:       "non credit card account",
			account:    &models.Account{Type: models.AccountTypeBank},
			occurredAt: date(2026, time.March, 15),
			want:       "",
		},
		{
			name:       "credit card without statement day",
			account:    &models.Account{Type: models.AccountTypeCreditCard},
			occurredAt: date(2026, time.March, 15),
			want:       "",
		},
		{
			name:       "on statement day starts the new cycle",
			account:    creditCard(10),
			occurredAt: date(2026, time.March, 10),
			want:       "2026-03-10",
		},
		{
			name:       "after statement day stays in this month's cycle",
			account:    creditCard(10),
			occurredAt: date(2026, time.March, 25),
			want:       "2026-03-10",
		},
		{
			name:       "before statement day falls into last month's cycle",
			account:    creditCard(10),
			occurredAt: date(2026, time.March, 5),
			want:       "2026-02-10",
		},
		{
			name:       "january wraps into previous year",
			account:    creditCard(10),
			occurredAt: date(2026, time.January, 5),
			want:       "2025-12-10",
		},
		{
			name:       "statement day clamped to end of february",
			account:    creditCard(31),
			occurredAt: date(2026, time.March, 15),
			want:       "2026-02-28",
		},
		{
			name:       "statement day clamped in leap year",
			account:    creditCard(31),
			occurredAt: date(2028, time.March, 15),
			want:       "2028-02-29",
		},
		{
			name:       "statement day out of range",
			account:    creditCard(40),
			occurredAt: date(2026, time.March, 15),
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCycleTag(tt.account, tt.occurredAt)
			if got != tt.want {
				t.Errorf("ResolveCycleTag() = %q, want %q", got, tt.want)
			}
		})
	}
}
