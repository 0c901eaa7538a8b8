package strategy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JP-Fernando/trading-tool/internal/strategy"
)

func TestCheckSignals(t *testing.T) {
	nan := math.NaN()

	cases := []struct {
		name                       string
		rsi, price, upper, lower   float64
		want                       int
	}{
		{"buy on oversold break", 25.0, 95.0, 110.0, 96.0, strategy.SignalBuy},
		{"sell on overbought break", 75.0, 115.0, 110.0, 96.0, strategy.SignalSell},
		{"hold inside bands", 50.0, 100.0, 110.0, 96.0, strategy.SignalHold},
		{"hold when rsi disagrees", 50.0, 95.0, 110.0, 96.0, strategy.SignalHold},
		{"hold when price disagrees", 25.0, 100.0, 110.0, 96.0, strategy.SignalHold},
		{"hold on unavailable rsi", nan, 95.0, 110.0, 96.0, strategy.SignalHold},
		{"hold on unavailable bands", 25.0, 95.0, nan, nan, strategy.SignalHold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := strategy.CheckSignals(tc.rsi, tc.price, tc.upper, tc.lower)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectorCustomThresholds(t *testing.T) {
	det := strategy.NewDetector(strategy.Config{
		RSIOversold:   50.0,
		RSIOverbought: 60.0,
	})

	snap := strategy.Snapshot{
		Price:   95.0,
		RSI:     45.0, // oversold only under the widened threshold
		BBUpper: 110.0,
		BBLower: 96.0,
	}
	assert.Equal(t, strategy.SignalBuy, det.Evaluate(snap))

	snap.RSI = 61.0
	snap.Price = 115.0
	assert.Equal(t, strategy.SignalSell, det.Evaluate(snap))
}

func TestDetectorMACDConditionANDCombined(t *testing.T) {
	det := strategy.NewDetector(strategy.Config{UseMACD: true})

	snap := strategy.Snapshot{
		Price:      95.0,
		RSI:        25.0,
		BBUpper:    110.0,
		BBLower:    96.0,
		MACD:       -1.0,
		MACDSignal: -0.5, // bearish: MACD below its signal line
	}
	assert.Equal(t, strategy.SignalHold, det.Evaluate(snap))

	snap.MACD = -0.2 // crosses above
	assert.Equal(t, strategy.SignalBuy, det.Evaluate(snap))

	// Unavailable MACD values hold regardless of the base rule.
	snap.MACD = math.NaN()
	assert.Equal(t, strategy.SignalHold, det.Evaluate(snap))
}

func TestDetectorEMATrendCondition(t *testing.T) {
	det := strategy.NewDetector(strategy.Config{UseEMATrend: true})

	snap := strategy.Snapshot{
		Price:   95.0,
		RSI:     25.0,
		BBUpper: 110.0,
		BBLower: 96.0,
		EMA:     98.0, // price below trend: buy filtered out
	}
	assert.Equal(t, strategy.SignalHold, det.Evaluate(snap))

	snap.EMA = 90.0
	assert.Equal(t, strategy.SignalBuy, det.Evaluate(snap))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "BUY", strategy.ActionString(strategy.SignalBuy))
	assert.Equal(t, "SELL", strategy.ActionString(strategy.SignalSell))
	assert.Equal(t, "HOLD", strategy.ActionString(strategy.SignalHold))
}
