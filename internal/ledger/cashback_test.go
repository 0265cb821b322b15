package ledger

import "testing"

func TestComputeCashback(t *testing.T) {
	tests := []struct {
		name           string
		originalAmount int64
		sharePercent   float64
		shareFixed     int64
		wantGiven      int64
		wantNet        int64
	}{
		{
			name:           "no cashback terms",
			originalAmount: 1000000,
			wantGiven:      0,
			wantNet:        1000000,
		},
		{
			name:           "percent share only",
			originalAmount: 1000000,
			sharePercent:   0.1,
			wantGiven:      100000,
			wantNet:        900000,
		},
		{
			name:           "fixed share only",
			originalAmount: 1000000,
			shareFixed:     25000,
			wantGiven:      25000,
			wantNet:        975000,
		},
		{
			name:           "percent and fixed combined",
			originalAmount: 1000000,
			sharePercent:   0.1,
			shareFixed:     25000,
			wantGiven:      125000,
			wantNet:        875000,
		},
		{
			name:           "percent rounds half away from zero",
			originalAmount: 999,
			sharePercent:   0.5,
			wantGiven:      500,
			wantNet:        499,
		},
		{
			name:           "given capped at original amount",
			originalAmount: 1000,
			sharePercent:   0.5,
			shareFixed:     900,
			wantGiven:      1000,
			wantNet:        0,
		},
		{
			name:           "percent above one clamps to full amount",
			originalAmount: 1000,
			sharePercent:   3.5,
			wantGiven:      1000,
			wantNet:        0,
		},
		{
			name:           "negative percent clamps to zero",
			originalAmount: 1000,
			sharePercent:   -0.2,
			wantGiven:      0,
			wantNet:        1000,
		},
		{
			name:           "negative fixed cannot push given negative",
			originalAmount: 1000,
			shareFixed:     -500,
			wantGiven:      0,
			wantNet:        1000,
		},
		{
			name:           "negative original treated as zero",
			originalAmount: -100,
			sharePercent:   0.1,
			wantGiven:      0,
			wantNet:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCashback(tt.originalAmount, tt.sharePercent, tt.shareFixed)
			if got.Given != tt.wantGiven {
				t.Errorf("Given = %d, want %d", got.Given, tt.wantGiven)
			}
			if got.Net != tt.wantNet {
				t.Errorf("Net = %d, want %d", got.Net, tt.wantNet)
			}
			if got.Given+got.Net > tt.originalAmount && tt.originalAmount > 0 {
				t.Errorf("Given+Net = %d exceeds original %d", got.Given+got.Net, tt.originalAmount)
			}
		})
	}
}

func TestComputeCashbackDeterministic(t *testing.T) {
	first := ComputeCashback(123457, 0.175, 999)
	second := ComputeCashback(123457, 0.175, 999)
	if first != second {
		t.Errorf("same inputs produced different results: %+v vs %+v", first, second)
	}
}
