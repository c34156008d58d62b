package gateway

// Ticker is the normalized market snapshot handed to facade callers.
// Missing price fields stay nil rather than zero.
type Ticker struct {
	Symbol    string   `json:"symbol"`
	Timestamp int64    `json:"timestamp"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Last      *float64 `json:"last"`
}

// Market is minimal on purpose: the backends guarantee nothing beyond
// the pair itself, and fabricating precision/limit data would invite
// downstream code to rely on constraints nobody enforces.
type Market struct {
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Active bool   `json:"active"`
}

// Order is the unified CCXT-style order shape. The paper service's "oid"
// key maps onto ID.
type Order struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Filled    float64 `json:"filled"`
	Remaining float64 `json:"remaining"`
	Cost      float64 `json:"cost"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// BalanceTotals is one asset's row in a Balance.
type BalanceTotals struct {
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// Balance maps asset code to totals, CCXT style.
type Balance struct {
	Timestamp int64                    `json:"timestamp"`
	Assets    map[string]BalanceTotals `json:"assets"`
}

// OHLCV is one candle in CCXT's [timestamp, open, high, low, close,
// volume] convention.
type OHLCV struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// OrderBookLevel is one price level of an order book side.
type OrderBookLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// OrderBook is a depth snapshot, bids and asks best-first.
type OrderBook struct {
	Symbol    string           `json:"symbol"`
	Timestamp int64            `json:"timestamp"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
}

// Trade is one public trade print.
type Trade struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

// Position is a derivatives position row.
type Position struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Contracts     float64 `json:"contracts"`
	EntryPrice    float64 `json:"entry_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// OrdersFilter narrows FetchOrders listings; zero values match all.
type OrdersFilter struct {
	Symbol string
	Status string
	Side   string
	Tail   int
}
