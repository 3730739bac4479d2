package entity

import (
	"testing"
	"time"
)

func TestSignal_IsDue(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	realized := 0.5

	tests := []struct {
		name string
		sig  Signal
		now  time.Time
		want bool
	}{
		{"horizon not elapsed", Signal{CreatedDate: created, HorizonDays: 10}, created.AddDate(0, 0, 9), false},
		{"horizon elapsed exactly", Signal{CreatedDate: created, HorizonDays: 10}, created.AddDate(0, 0, 10), true},
		{"already realized", Signal{CreatedDate: created, HorizonDays: 10, RealizedExcessReturn: &realized}, created.AddDate(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.sig.IsDue(tt.now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}
