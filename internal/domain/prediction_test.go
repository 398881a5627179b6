package domain_test

import (
	"testing"
	"time"

	"github.com/pravino/tapcore/internal/domain"
)

func TestPrediction_Resolve(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		direction domain.PredictionDirection
		submit    string
		locked    string
		wantWon   bool
	}{
		{"higher and price rose", domain.PredictHigher, "95000", "95200", true},
		{"higher and price fell", domain.PredictHigher, "95000", "94800", false},
		{"lower and price fell", domain.PredictLower, "95000", "94800", true},
		{"lower and price rose", domain.PredictLower, "95000", "95200", false},
		{"unchanged price wins for nobody higher", domain.PredictHigher, "95000", "95000", false},
		{"unchanged price wins for nobody lower", domain.PredictLower, "95000", "95000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Prediction{
				Direction:     tt.direction,
				PriceAtSubmit: d(tt.submit),
			}

			p.Resolve(d(tt.locked), now)

			if !p.Resolved {
				t.Error("prediction not marked resolved")
			}
			if p.Won != tt.wantWon {
				t.Errorf("Won = %v, want %v", p.Won, tt.wantWon)
			}
			if p.ResolvedAt == nil || !p.ResolvedAt.Equal(now) {
				t.Error("ResolvedAt not set")
			}
		})
	}
}
