// Package strategy turns the latest indicator values into a directional
// trading signal.
package strategy

import (
	"github.com/JP-Fernando/trading-tool/internal/indicator"
)

// Signal classification values.
const (
	SignalBuy  = 1
	SignalSell = -1
	SignalHold = 0
)

// ActionString names a signal for diagnostics.
func ActionString(signal int) string {
	switch signal {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Default RSI thresholds.
const (
	DefaultRSIOversold   = 30.0
	DefaultRSIOverbought = 70.0
)

// CheckSignals is the base decision rule: BUY when price breaks below the
// lower Bollinger band while RSI is oversold, SELL on the mirrored upper
// break, HOLD otherwise. Unavailable inputs always hold.
func CheckSignals(rsiLast, priceLast, bbUpper, bbLower float64) int {
	if !indicator.IsAvailable(rsiLast) || !indicator.IsAvailable(bbUpper) || !indicator.IsAvailable(bbLower) {
		return SignalHold
	}
	if rsiLast < DefaultRSIOversold && priceLast < bbLower {
		return SignalBuy
	}
	if rsiLast > DefaultRSIOverbought && priceLast > bbUpper {
		return SignalSell
	}
	return SignalHold
}

// EmissionPolicy controls when a detected signal is reported.
type EmissionPolicy uint8

const (
	// EmitOnDetection reports every non-hold evaluation, repeats included,
	// while the condition persists.
	EmitOnDetection EmissionPolicy = iota
	// EmitOnTransition reports only when the classification changes to a
	// new non-hold value.
	EmitOnTransition
)

// Config tunes the detector. Optional conditions are AND-combined with the
// base rule, mirroring the composite batch signal generator.
type Config struct {
	RSIOversold   float64
	RSIOverbought float64
	UseMACD       bool
	UseEMATrend   bool
}

// DefaultConfig returns the base rule with conventional thresholds.
func DefaultConfig() Config {
	return Config{
		RSIOversold:   DefaultRSIOversold,
		RSIOverbought: DefaultRSIOverbought,
	}
}

// Snapshot carries the most recent value of each indicator the detector
// may consult. Fields for disabled conditions are ignored.
type Snapshot struct {
	Price      float64
	RSI        float64
	BBUpper    float64
	BBLower    float64
	EMA        float64
	MACD       float64
	MACDSignal float64
}

// Detector is a pure decision function over indicator snapshots.
type Detector struct {
	cfg Config
}

// NewDetector builds a detector; zero thresholds fall back to defaults.
func NewDetector(cfg Config) *Detector {
	if cfg.RSIOversold == 0 {
		cfg.RSIOversold = DefaultRSIOversold
	}
	if cfg.RSIOverbought == 0 {
		cfg.RSIOverbought = DefaultRSIOverbought
	}
	return &Detector{cfg: cfg}
}

// Evaluate classifies the snapshot as BUY, SELL or HOLD.
func (d *Detector) Evaluate(s Snapshot) int {
	if !indicator.IsAvailable(s.RSI) || !indicator.IsAvailable(s.BBUpper) || !indicator.IsAvailable(s.BBLower) {
		return SignalHold
	}

	buy := s.RSI < d.cfg.RSIOversold && s.Price < s.BBLower
	sell := s.RSI > d.cfg.RSIOverbought && s.Price > s.BBUpper

	if d.cfg.UseMACD {
		if !indicator.IsAvailable(s.MACD) || !indicator.IsAvailable(s.MACDSignal) {
			return SignalHold
		}
		buy = buy && s.MACD > s.MACDSignal
		sell = sell && s.MACD < s.MACDSignal
	}
	if d.cfg.UseEMATrend {
		if !indicator.IsAvailable(s.EMA) {
			return SignalHold
		}
		buy = buy && s.Price > s.EMA
		sell = sell && s.Price < s.EMA
	}

	switch {
	case buy:
		return SignalBuy
	case sell:
		return SignalSell
	default:
		return SignalHold
	}
}
