package gateway

import "context"

const (
	ModeReplay = "replay"
	ModePaper  = "paper"
	ModeProd   = "prod"
)

// Adapter is the backend-neutral operation set the facade delegates to.
// The paper adapter serves it from a Backend (in-memory engine or remote
// REST service); the Binance adapter serves it from the live exchange.
type Adapter interface {
	Mode() string

	FetchMarkets(ctx context.Context) ([]Market, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
	FetchTickers(ctx context.Context) (map[string]Ticker, error)

	FetchBalance(ctx context.Context) (Balance, error)
	// Deposit and Withdraw mutate the paper account's ledger directly;
	// live exchanges return ErrNotSupported (funding moves through the
	// exchange's own channels, not this gateway).
	Deposit(ctx context.Context, asset string, amount float64) (BalanceTotals, error)
	Withdraw(ctx context.Context, asset string, amount float64) (BalanceTotals, error)

	CreateOrder(ctx context.Context, symbol, orderType, side string, amount float64, price *float64) (Order, error)
	// CancelOrder and FetchOrder accept an optional symbol hint; the
	// paper backends identify orders by id alone, live exchanges need
	// the pair as well.
	CancelOrder(ctx context.Context, id, symbol string) (Order, error)
	FetchOrder(ctx context.Context, id, symbol string) (Order, error)
	FetchOrders(ctx context.Context, filter OrdersFilter) ([]Order, error)
	CanExecuteOrder(ctx context.Context, symbol, orderType, side string, amount float64, price *float64) (bool, error)

	// AdvanceReplay moves simulated time forward; only replay-capable
	// backends implement it, others return ErrNotSupported.
	AdvanceReplay(ctx context.Context, req AdvanceRequest) (int64, error)

	Close() error
}
