package backtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/JP-Fernando/trading-tool/internal/event"
)

var (
	// ErrInvalidOrder marks an order with a non-positive quantity or an
	// unknown side. The order is rejected before any model runs.
	ErrInvalidOrder = errors.New("backtest: invalid order")

	// ErrNoMarketData marks an order processed before any tick was seen for
	// its symbol. The order is dropped; callers resubmit after data arrives.
	ErrNoMarketData = errors.New("backtest: no market data for symbol")

	// ErrSlippageModel marks a panic raised by the caller-supplied slippage
	// model. The order is rejected and queue processing continues.
	ErrSlippageModel = errors.New("backtest: slippage model failure")
)

// simulatedExchange tags every fill produced by the execution engine.
const simulatedExchange = "SIMULATED"

// SlippageInput is what a slippage model sees for one order.
type SlippageInput struct {
	Symbol             string
	Side               event.Side
	MidPrice           float64
	Quantity           float64
	AvailableLiquidity float64
}

// SlippageModel converts a reference mid price into an execution price.
// Models must be pure: same input, same output, or backtest determinism
// is lost.
type SlippageModel func(SlippageInput) float64

// NoSlippage fills at the mid price.
func NoSlippage(in SlippageInput) float64 {
	return in.MidPrice
}

// CommissionPolicy computes the fee charged on a fill.
type CommissionPolicy func(qty, price float64) float64

// ZeroCommission charges nothing. This is the default.
func ZeroCommission(qty, price float64) float64 {
	return 0
}

// BasisPointCommission charges bps basis points of notional, computed with
// decimal arithmetic so repeated runs round identically.
func BasisPointCommission(bps int64) CommissionPolicy {
	rate := decimal.New(bps, -4)
	return func(qty, price float64) float64 {
		notional := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price))
		fee, _ := notional.Mul(rate).Float64()
		return fee
	}
}

// ExecutionOption configures an ExecutionEngine.
type ExecutionOption func(*ExecutionEngine)

// WithCommission replaces the default zero commission policy.
func WithCommission(p CommissionPolicy) ExecutionOption {
	return func(e *ExecutionEngine) {
		if p != nil {
			e.commission = p
		}
	}
}

// ExecutionEngine converts orders into fills against the latest tick per
// symbol. It never touches the event queue; its only side effect is the
// fill record.
type ExecutionEngine struct {
	model      SlippageModel
	commission CommissionPolicy

	mu        sync.Mutex
	lastTicks map[string]event.Tick
	fills     []event.Fill
}

// NewExecutionEngine creates an execution engine around a slippage model.
// A nil model fills at mid price.
func NewExecutionEngine(model SlippageModel, opts ...ExecutionOption) *ExecutionEngine {
	if model == nil {
		model = NoSlippage
	}
	e := &ExecutionEngine{
		model:      model,
		commission: ZeroCommission,
		lastTicks:  make(map[string]event.Tick),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnTick records the latest known tick for the symbol.
func (e *ExecutionEngine) OnTick(t event.Tick) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastTicks[t.Symbol] = t
}

// OnOrder matches a submitted order against the latest tick for its symbol
// and records the resulting fill. Full fill, no partials, no size queueing.
func (e *ExecutionEngine) OnOrder(o event.Order) (event.Fill, error) {
	if o.Quantity <= 0 || !o.Side.Valid() {
		return event.Fill{}, fmt.Errorf("%w: id=%d qty=%v side=%s", ErrInvalidOrder, o.ID, o.Quantity, o.Side)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tick, ok := e.lastTicks[o.Symbol]
	if !ok {
		return event.Fill{}, fmt.Errorf("%w: id=%d symbol=%s", ErrNoMarketData, o.ID, o.Symbol)
	}

	mid := tick.MidPrice()
	fillPrice, err := e.executionPrice(o, tick, mid)
	if err != nil {
		return event.Fill{}, err
	}

	fill := event.Fill{
		OrderID:        o.ID,
		Timestamp:      tick.Timestamp,
		Symbol:         o.Symbol,
		Side:           o.Side,
		FilledQuantity: o.Quantity,
		FillPrice:      fillPrice,
		Commission:     e.commission(o.Quantity, fillPrice),
		Slippage:       fillPrice - mid,
		Exchange:       simulatedExchange,
	}
	e.fills = append(e.fills, fill)
	return fill, nil
}

// executionPrice runs the injected model and caps limit orders at their
// limit price. A panicking model surfaces as a rejected order instead of
// unwinding into the run loop.
func (e *ExecutionEngine) executionPrice(o event.Order, tick event.Tick, mid float64) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: id=%d: %v", ErrSlippageModel, o.ID, r)
		}
	}()

	price = e.model(SlippageInput{
		Symbol:             o.Symbol,
		Side:               o.Side,
		MidPrice:           mid,
		Quantity:           o.Quantity,
		AvailableLiquidity: tick.BidSize + tick.AskSize,
	})

	if !o.IsMarket() {
		if o.Side == event.Buy && price > o.LimitPrice {
			price = o.LimitPrice
		}
		if o.Side == event.Sell && price < o.LimitPrice {
			price = o.LimitPrice
		}
	}
	return price, nil
}

// GetFills returns a copy of the fill history in processing order.
func (e *ExecutionEngine) GetFills() []event.Fill {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]event.Fill, len(e.fills))
	copy(result, e.fills)
	return result
}
