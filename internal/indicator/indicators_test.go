package indicator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func countAvailable(vals []float64) int {
	n := 0
	for _, v := range vals {
		if IsAvailable(v) {
			n++
		}
	}
	return n
}

func TestSMAKnownValues(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)

	require.Len(t, got, 5)
	assert.False(t, IsAvailable(got[0]))
	assert.False(t, IsAvailable(got[1]))
	assert.InDelta(t, 2.0, got[2], tolerance)
	assert.InDelta(t, 3.0, got[3], tolerance)
	assert.InDelta(t, 4.0, got[4], tolerance)
}

func TestSMAInsufficientHistory(t *testing.T) {
	got := SMA([]float64{1, 2}, 3)
	assert.Equal(t, 0, countAvailable(got))

	got = SMA(nil, 3)
	assert.Empty(t, got)

	got = SMA([]float64{1, 2, 3}, 0)
	assert.Equal(t, 0, countAvailable(got))
}

func TestEMASeededWithSimpleAverage(t *testing.T) {
	got := EMA([]float64{1, 2, 3, 4}, 2)

	require.Len(t, got, 4)
	assert.False(t, IsAvailable(got[0]))
	// Seed = mean(1, 2); alpha = 2/3.
	assert.InDelta(t, 1.5, got[1], tolerance)
	assert.InDelta(t, 2.5, got[2], tolerance)
	assert.InDelta(t, 3.5, got[3], tolerance)
}

func TestEMAConstantSeries(t *testing.T) {
	got := EMA([]float64{7, 7, 7, 7, 7}, 3)
	for i := 2; i < len(got); i++ {
		assert.InDelta(t, 7.0, got[i], tolerance)
	}
}

func TestRSIRequiresWindowPlusOne(t *testing.T) {
	window := 14
	got := RSI(make([]float64, window), window)
	assert.Equal(t, 0, countAvailable(got))

	prices := make([]float64, window+1)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}
	got = RSI(prices, window)
	assert.Equal(t, 1, countAvailable(got))
	assert.True(t, IsAvailable(got[window]))
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	for i := range up {
		up[i] = 100.0 + float64(i)
		down[i] = 100.0 - float64(i)
	}

	rsiUp := RSI(up, 14)
	assert.InDelta(t, 100.0, rsiUp[len(rsiUp)-1], tolerance)

	rsiDown := RSI(down, 14)
	assert.InDelta(t, 0.0, rsiDown[len(rsiDown)-1], tolerance)
}

func TestRSIKnownSequence(t *testing.T) {
	// window=2 keeps the hand computation small:
	// diffs: +1, -1, +1 -> seed gains=0.5, losses=0.5 -> RSI=50
	// next: gain=1: avgGain=1*0.5+0.5*0.5=0.75, avgLoss=0.25 -> RSI=75
	prices := []float64{10, 11, 10, 11}
	got := RSI(prices, 2)

	assert.InDelta(t, 50.0, got[2], tolerance)
	assert.InDelta(t, 75.0, got[3], tolerance)
}

func TestBollingerBandsConstantSeries(t *testing.T) {
	prices := []float64{100, 100, 100, 100, 100}
	upper, middle, lower := BollingerBands(prices, 3, 2.0)

	for i := 2; i < len(prices); i++ {
		assert.InDelta(t, 100.0, middle[i], tolerance)
		assert.InDelta(t, 100.0, upper[i], tolerance)
		assert.InDelta(t, 100.0, lower[i], tolerance)
	}
	assert.False(t, IsAvailable(upper[0]))
	assert.False(t, IsAvailable(upper[1]))
}

func TestBollingerBandsKnownValues(t *testing.T) {
	upper, middle, lower := BollingerBands([]float64{1, 2, 3}, 3, 2.0)

	// mean=2, population variance=2/3
	sd := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, 2.0, middle[2], tolerance)
	assert.InDelta(t, 2.0+2.0*sd, upper[2], tolerance)
	assert.InDelta(t, 2.0-2.0*sd, lower[2], tolerance)
}

func TestBollingerBandsSlidingMatchesDirect(t *testing.T) {
	// The O(n) sliding computation must agree with computing directly on
	// the trailing window alone.
	rng := rand.New(rand.NewSource(7))
	prices := make([]float64, 300)
	for i := range prices {
		prices[i] = 100.0 + rng.NormFloat64()
	}

	const window = 20
	upper, middle, lower := BollingerBands(prices, window, 2.0)

	tail := prices[len(prices)-window:]
	u2, m2, l2 := BollingerBands(tail, window, 2.0)

	assert.InDelta(t, m2[window-1], middle[len(prices)-1], 1e-6)
	assert.InDelta(t, u2[window-1], upper[len(prices)-1], 1e-6)
	assert.InDelta(t, l2[window-1], lower[len(prices)-1], 1e-6)
}

func TestMACDAlignment(t *testing.T) {
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}

	macd, signal := MACD(prices, 2, 3, 2)

	// MACD defined from slow-1, signal from slow+signal-2.
	assert.False(t, IsAvailable(macd[1]))
	assert.True(t, IsAvailable(macd[2]))
	assert.False(t, IsAvailable(signal[2]))
	assert.True(t, IsAvailable(signal[3]))

	// MACD equals the difference of the public EMAs where defined.
	fastEMA := EMA(prices, 2)
	slowEMA := EMA(prices, 3)
	for i := 2; i < len(prices); i++ {
		assert.InDelta(t, fastEMA[i]-slowEMA[i], macd[i], tolerance)
	}
}

func TestMACDConstantSeriesIsZero(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 250.0
	}

	macd, signal := MACD(prices, 12, 26, 9)

	assert.InDelta(t, 0.0, macd[len(macd)-1], tolerance)
	assert.InDelta(t, 0.0, signal[len(signal)-1], tolerance)
	assert.False(t, IsAvailable(macd[24]))
	assert.True(t, IsAvailable(macd[25]))
	assert.False(t, IsAvailable(signal[32]))
	assert.True(t, IsAvailable(signal[33]))
}

func TestMACDShortInput(t *testing.T) {
	macd, signal := MACD([]float64{1, 2, 3}, 12, 26, 9)
	assert.Equal(t, 0, countAvailable(macd))
	assert.Equal(t, 0, countAvailable(signal))
}

func TestIndicatorsNeverMutateInput(t *testing.T) {
	prices := []float64{5, 4, 3, 2, 1, 2, 3, 4, 5}
	clone := append([]float64(nil), prices...)

	SMA(prices, 3)
	EMA(prices, 3)
	RSI(prices, 3)
	BollingerBands(prices, 3, 2.0)
	MACD(prices, 2, 3, 2)

	assert.Equal(t, clone, prices)
}

func BenchmarkRSI(b *testing.B) {
	b.ReportAllocs()
	prices := make([]float64, 200)
	for i := range prices {
		prices[i] = 100.0 + math.Sin(float64(i)/10.0)
	}
	for i := 0; i < b.N; i++ {
		RSI(prices, 14)
	}
}
