// Package replay implements a deterministic in-memory trading backend.
// It advances a pre-recorded, per-symbol timeline of price snapshots and
// simulates immediate order fills against a seeded balance ledger, so
// strategy tests can run reproducibly without network I/O.
package replay

// Ticker is a single timestamped price record for one symbol. Last, Bid
// and Ask are pointers because recorded data may omit any of them; a nil
// field is "not observed", which is distinct from zero.
type Ticker struct {
	Symbol    string   `json:"symbol"`
	Timestamp int64    `json:"timestamp"`
	Last      *float64 `json:"last"`
	Bid       *float64 `json:"bid,omitempty"`
	Ask       *float64 `json:"ask,omitempty"`
}

// Order is the wire shape of a simulated order. Every order fills
// immediately and in full: there is no open or partially-filled state,
// which keeps replay timelines independent of any matching algorithm.
type Order struct {
	OID       string  `json:"oid"`
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

const (
	SideBuy  = "buy"
	SideSell = "sell"

	TypeMarket = "market"
	TypeLimit  = "limit"

	StatusFilled   = "filled"
	StatusCanceled = "canceled"
)

// AssetBalance is one ledger row. Total is always Free+Used, derived at
// read time and never stored separately.
type AssetBalance struct {
	Asset string  `json:"asset"`
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// BalanceSnapshot is the read model for the whole ledger.
type BalanceSnapshot struct {
	Timestamp int64          `json:"timestamp"`
	Assets    []AssetBalance `json:"assets"`
}

// OrderRequest carries the payload of a create/can_execute call.
type OrderRequest struct {
	Symbol string   `json:"symbol"`
	Side   string   `json:"side"`
	Type   string   `json:"type"`
	Amount float64  `json:"amount"`
	Price  *float64 `json:"price,omitempty"`
}

// OrderFilter narrows order listings. Zero values match everything;
// Tail > 0 keeps only the N most recently created orders.
type OrderFilter struct {
	Symbol string
	Status string
	Side   string
	Tail   int
}
