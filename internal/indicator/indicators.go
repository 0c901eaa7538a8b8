// Package indicator provides stateless batch indicator functions over an
// ordered sequence of closing prices. Outputs are aligned to the input
// length; entries whose lookback is not yet satisfied hold a sentinel
// "unavailable" value instead of failing.
package indicator

import (
	"math"
)

// Unavailable is the sentinel for entries without enough history.
func Unavailable() float64 {
	return math.NaN()
}

// IsAvailable reports whether a value carries real indicator output.
func IsAvailable(v float64) bool {
	return !math.IsNaN(v)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average with an O(n) sliding sum.
func SMA(prices []float64, window int) []float64 {
	size := len(prices)
	result := nanSlice(size)
	if window <= 0 || size < window {
		return result
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += prices[i]
	}
	result[window-1] = sum / float64(window)

	for i := window; i < size; i++ {
		sum += prices[i] - prices[i-window]
		result[i] = sum / float64(window)
	}
	return result
}

// EMA computes an exponential moving average seeded with the simple
// average of the first window values, so the first defined entry sits at
// index window-1.
func EMA(prices []float64, window int) []float64 {
	size := len(prices)
	result := nanSlice(size)
	if window <= 0 || size < window {
		return result
	}

	seed := 0.0
	for i := 0; i < window; i++ {
		seed += prices[i]
	}
	result[window-1] = seed / float64(window)

	alpha := 2.0 / (float64(window) + 1.0)
	for i := window; i < size; i++ {
		result[i] = prices[i]*alpha + result[i-1]*(1.0-alpha)
	}
	return result
}

// RSI computes the Relative Strength Index with Wilder smoothing
// (alpha = 1/window). Requires window+1 prices; earlier entries are
// unavailable. A lossless stretch pins the oscillator at 100.
func RSI(prices []float64, window int) []float64 {
	size := len(prices)
	result := nanSlice(size)
	if window <= 0 || size <= window {
		return result
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= window; i++ {
		diff := prices[i] - prices[i-1]
		if diff >= 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	calc := func(gain, loss float64) float64 {
		if loss == 0 {
			return 100.0
		}
		return 100.0 - (100.0 / (1.0 + gain/loss))
	}

	result[window] = calc(avgGain, avgLoss)

	alpha := 1.0 / float64(window)
	for i := window + 1; i < size; i++ {
		diff := prices[i] - prices[i-1]
		gain := math.Max(0, diff)
		loss := math.Max(0, -diff)
		avgGain = gain*alpha + avgGain*(1.0-alpha)
		avgLoss = loss*alpha + avgLoss*(1.0-alpha)
		result[i] = calc(avgGain, avgLoss)
	}
	return result
}

// BollingerBands computes moving average +- k standard deviations,
// returning upper/middle/lower bands via sliding sum and sum-of-squares.
func BollingerBands(prices []float64, window int, k float64) (upper, middle, lower []float64) {
	size := len(prices)
	upper = nanSlice(size)
	middle = nanSlice(size)
	lower = nanSlice(size)
	if window <= 0 || size < window {
		return upper, middle, lower
	}

	sum, sumSq := 0.0, 0.0
	for i := 0; i < window; i++ {
		sum += prices[i]
		sumSq += prices[i] * prices[i]
	}

	bands := func(idx int) {
		mean := sum / float64(window)
		variance := (sumSq - (sum * sum / float64(window))) / float64(window)
		// Clamp float noise that can push a zero variance slightly negative.
		stdDev := math.Sqrt(math.Max(0, variance))

		middle[idx] = mean
		upper[idx] = mean + k*stdDev
		lower[idx] = mean - k*stdDev
	}

	bands(window - 1)
	for i := window; i < size; i++ {
		sum += prices[i] - prices[i-window]
		sumSq += prices[i]*prices[i] - prices[i-window]*prices[i-window]
		bands(i)
	}
	return upper, middle, lower
}

// MACD computes the fast-minus-slow EMA difference and its signal line.
// The MACD line is defined once the slow EMA is (index slow-1); the signal
// line needs a further signalWindow values and is seeded with their simple
// average.
func MACD(prices []float64, fast, slow, signalWindow int) (macd, signal []float64) {
	size := len(prices)
	macd = nanSlice(size)
	signal = nanSlice(size)
	if fast <= 0 || slow <= 0 || signalWindow <= 0 {
		return macd, signal
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	start := fast
	if slow > fast {
		start = slow
	}
	start-- // first index where both EMAs are defined
	if start >= size {
		return macd, signal
	}

	for i := start; i < size; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	sigStart := start + signalWindow - 1
	if sigStart >= size {
		return macd, signal
	}

	seed := 0.0
	for i := start; i <= sigStart; i++ {
		seed += macd[i]
	}
	signal[sigStart] = seed / float64(signalWindow)

	alpha := 2.0 / (float64(signalWindow) + 1.0)
	for i := sigStart + 1; i < size; i++ {
		signal[i] = macd[i]*alpha + signal[i-1]*(1.0-alpha)
	}
	return macd, signal
}
