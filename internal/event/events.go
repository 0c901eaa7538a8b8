package event

import (
	"github.com/JP-Fernando/trading-tool/pkg/quant"
)

// Kind defines the type of event.
type Kind uint8

const (
	KindTick Kind = iota + 1
	KindOrder
	KindFill
)

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "TICK"
	case KindOrder:
		return "ORDER"
	case KindFill:
		return "FILL"
	default:
		return "UNKNOWN"
	}
}

// Side is the direction of an order or fill.
type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the side is one of the two known directions.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Status is the lifecycle state of an order.
type Status uint8

const (
	Submitted Status = iota + 1
	Filled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "SUBMITTED"
	case Filled:
		return "FILLED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for everything the backtest queue carries.
type Event interface {
	Ts() quant.TimeStamp
	Kind() Kind
}

// Tick is a snapshot of top-of-book state for one symbol at an instant.
// Immutable once constructed.
type Tick struct {
	Timestamp quant.TimeStamp `json:"ts"`
	Symbol    string          `json:"symbol"`
	Bid       float64         `json:"bid"`
	Ask       float64         `json:"ask"`
	BidSize   float64         `json:"bid_size"`
	AskSize   float64         `json:"ask_size"`
	Last      float64         `json:"last"`
	Volume    float64         `json:"volume"`
}

func (t Tick) Ts() quant.TimeStamp { return t.Timestamp }
func (t Tick) Kind() Kind          { return KindTick }

// MidPrice is the reference price for fills when no trade price exists.
func (t Tick) MidPrice() float64 {
	return (t.Bid + t.Ask) * 0.5
}

// Order is a trading instruction. IDs are caller-assigned and must be
// unique within a single backtest run.
type Order struct {
	ID         uint64          `json:"order_id"`
	Timestamp  quant.TimeStamp `json:"ts"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   float64         `json:"qty"`
	LimitPrice float64         `json:"limit_price"` // 0 for market orders
	Status     Status          `json:"status"`
	StrategyID string          `json:"strategy_id"`
}

func (o Order) Ts() quant.TimeStamp { return o.Timestamp }
func (o Order) Kind() Kind          { return KindOrder }

// IsMarket reports whether the order executes at the prevailing price.
func (o Order) IsMarket() bool {
	return o.LimitPrice == 0
}

// Fill is the realized execution result of an Order. Produced exactly once
// per matched order; Timestamp is the timestamp of the tick it matched.
type Fill struct {
	OrderID        uint64          `json:"order_id"`
	Timestamp      quant.TimeStamp `json:"ts"`
	Symbol         string          `json:"symbol"`
	Side           Side            `json:"side"`
	FilledQuantity float64         `json:"filled_qty"`
	FillPrice      float64         `json:"fill_price"`
	Commission     float64         `json:"commission"`
	Slippage       float64         `json:"slippage"` // signed, price units
	Exchange       string          `json:"exchange"`
}

func (f Fill) Ts() quant.TimeStamp { return f.Timestamp }
func (f Fill) Kind() Kind          { return KindFill }
