// Package market ingests live ticks across many symbols through a fixed
// worker pool, maintains rolling price history per symbol, and raises
// buy/sell signals through the diagnostic callback.
package market

import (
	"errors"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"github.com/JP-Fernando/trading-tool/internal/diag"
	"github.com/JP-Fernando/trading-tool/internal/indicator"
	"github.com/JP-Fernando/trading-tool/internal/metrics"
	"github.com/JP-Fernando/trading-tool/internal/strategy"
)

// ErrSymbolNotFound is returned for last-price queries on unknown symbols.
var ErrSymbolNotFound = errors.New("market: symbol not found")

const (
	// DefaultBufferCapacity covers the longest default lookback with room
	// to spare.
	DefaultBufferCapacity = 200

	defaultTaskBacklog = 256
)

// IndicatorConfig selects the windows recomputed on every update.
type IndicatorConfig struct {
	RSIWindow  int
	BBWindow   int
	BBK        float64
	EMAWindow  int // consulted only when the detector's EMA trend is on
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultIndicatorConfig mirrors the conventional 14/20/26 windows.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		RSIWindow:  14,
		BBWindow:   20,
		BBK:        2.0,
		EMAWindow:  20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithBufferCapacity overrides the rolling window size. Capacity is raised
// to the minimum history the configured indicators need.
func WithBufferCapacity(capacity int) Option {
	return func(m *Manager) {
		if capacity > 0 {
			m.capacity = capacity
		}
	}
}

// WithIndicatorConfig overrides the indicator windows.
func WithIndicatorConfig(cfg IndicatorConfig) Option {
	return func(m *Manager) { m.indicators = cfg }
}

// WithDetector replaces the default signal detector.
func WithDetector(det *strategy.Detector, cfg strategy.Config) Option {
	return func(m *Manager) {
		m.detector = det
		m.detectorCfg = cfg
	}
}

// WithEmissionPolicy selects repeat or transition-only signal reporting.
func WithEmissionPolicy(p strategy.EmissionPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

type task struct {
	symbol string
	price  float64
}

type worker struct {
	tasks   chan task
	buffers map[string]*symbolBuffer
}

// Manager owns the worker pool and per-symbol state. Symbols are sharded
// to workers by hash, so updates for one symbol are FIFO-serialized while
// distinct symbols proceed in parallel.
type Manager struct {
	capacity    int
	indicators  IndicatorConfig
	detector    *strategy.Detector
	detectorCfg strategy.Config
	policy      strategy.EmissionPolicy
	minHistory  int

	workers []*worker
	wg      sync.WaitGroup

	// closeMu lets UpdateTick run concurrently (read side) while Close
	// takes the write side exactly once.
	closeMu sync.RWMutex
	closed  bool

	lastPrices sync.Map // symbol -> *atomic.Uint64 (float64 bits)
}

// NewManager starts numWorkers goroutines. numWorkers below 1 is raised
// to 1.
func NewManager(numWorkers int, opts ...Option) *Manager {
	if numWorkers < 1 {
		numWorkers = 1
	}

	m := &Manager{
		capacity:    DefaultBufferCapacity,
		indicators:  DefaultIndicatorConfig(),
		detector:    strategy.NewDetector(strategy.DefaultConfig()),
		detectorCfg: strategy.DefaultConfig(),
		policy:      strategy.EmitOnDetection,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.minHistory = m.requiredHistory()
	if m.capacity < m.minHistory {
		m.capacity = m.minHistory
	}

	m.workers = make([]*worker, numWorkers)
	for i := range m.workers {
		w := &worker{
			tasks:   make(chan task, defaultTaskBacklog),
			buffers: make(map[string]*symbolBuffer),
		}
		m.workers[i] = w
		m.wg.Add(1)
		go m.workerLoop(w)
	}
	return m
}

// requiredHistory is the shortest buffer that satisfies every enabled
// indicator window.
func (m *Manager) requiredHistory() int {
	need := m.indicators.BBWindow
	if rsi := m.indicators.RSIWindow + 1; rsi > need {
		need = rsi
	}
	if m.detectorCfg.UseMACD {
		if macd := m.indicators.MACDSlow + m.indicators.MACDSignal; macd > need {
			need = macd
		}
	}
	if m.detectorCfg.UseEMATrend {
		if m.indicators.EMAWindow > need {
			need = m.indicators.EMAWindow
		}
	}
	return need
}

// UpdateTick dispatches a price update to the worker owning the symbol.
// Safe for concurrent use; updates after Close are dropped.
func (m *Manager) UpdateTick(symbol string, price float64) {
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return
	}
	m.workers[m.shard(symbol)].tasks <- task{symbol: symbol, price: price}
}

// GetLastPrice returns the most recently committed price for the symbol.
// It never blocks on indicator computation; the read is a single atomic
// load and is eventually consistent with in-flight updates.
func (m *Manager) GetLastPrice(symbol string) (float64, error) {
	v, ok := m.lastPrices.Load(symbol)
	if !ok {
		return 0, ErrSymbolNotFound
	}
	return math.Float64frombits(v.(*atomic.Uint64).Load()), nil
}

// Close stops intake, drains queued updates and joins the workers.
// Started updates always complete their buffer mutation.
func (m *Manager) Close() {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return
	}
	m.closed = true
	for _, w := range m.workers {
		close(w.tasks)
	}
	m.closeMu.Unlock()

	m.wg.Wait()
}

func (m *Manager) shard(symbol string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return int(h.Sum32() % uint32(len(m.workers)))
}

func (m *Manager) workerLoop(w *worker) {
	defer m.wg.Done()
	for t := range w.tasks {
		m.process(w, t)
	}
}

// process runs entirely on the owning worker. A panic in indicator or
// detector code is reported and must not kill the pool.
func (m *Manager) process(w *worker, t task) {
	defer func() {
		if r := recover(); r != nil {
			diag.Logf(diag.LevelError, "tick processing failed: symbol=%s: %v", t.symbol, r)
		}
	}()

	buf, ok := w.buffers[t.symbol]
	if !ok {
		buf = newSymbolBuffer(m.capacity)
		w.buffers[t.symbol] = buf
	}
	buf.push(t.price)
	m.publishLastPrice(t.symbol, t.price)
	metrics.TicksTotal.WithLabelValues(t.symbol).Inc()

	if buf.len() < m.minHistory {
		return
	}

	prices := buf.snapshot()
	last := len(prices) - 1

	rsi := indicator.RSI(prices, m.indicators.RSIWindow)
	upper, _, lower := indicator.BollingerBands(prices, m.indicators.BBWindow, m.indicators.BBK)

	snap := strategy.Snapshot{
		Price:   prices[last],
		RSI:     rsi[last],
		BBUpper: upper[last],
		BBLower: lower[last],
	}
	if m.detectorCfg.UseMACD {
		macd, signalLine := indicator.MACD(prices, m.indicators.MACDFast, m.indicators.MACDSlow, m.indicators.MACDSignal)
		snap.MACD = macd[last]
		snap.MACDSignal = signalLine[last]
	}
	if m.detectorCfg.UseEMATrend {
		ema := indicator.EMA(prices, m.indicators.EMAWindow)
		snap.EMA = ema[last]
	}

	signal := m.detector.Evaluate(snap)
	emit := signal != strategy.SignalHold
	if m.policy == strategy.EmitOnTransition {
		emit = emit && signal != buf.lastSignal
	}
	buf.lastSignal = signal

	if emit {
		action := strategy.ActionString(signal)
		metrics.SignalsTotal.WithLabelValues(t.symbol, action).Inc()
		diag.Logf(diag.LevelSignal, "symbol=%s price=%.4f action=%s", t.symbol, t.price, action)
	}
}

func (m *Manager) publishLastPrice(symbol string, price float64) {
	bits := math.Float64bits(price)
	if v, ok := m.lastPrices.Load(symbol); ok {
		v.(*atomic.Uint64).Store(bits)
		return
	}
	slot := &atomic.Uint64{}
	slot.Store(bits)
	actual, loaded := m.lastPrices.LoadOrStore(symbol, slot)
	if loaded {
		actual.(*atomic.Uint64).Store(bits)
	}
}
