package gateway

import (
	"context"
	"fmt"
	"sync"

	"mockx/internal/pkg/symbol"
)

// Gateway is the CCXT-shaped facade. It normalizes symbols through an
// explicitly injected mapper, gates feature access through the mode's
// capability table, and otherwise delegates straight to the adapter —
// business logic belongs to the backend, not here.
type Gateway struct {
	adapter Adapter
	mapper  *symbol.Mapper
	has     map[string]bool

	mu      sync.Mutex
	markets map[string]Market
}

// New builds a facade over the given adapter. A nil mapper gets an
// alias-free default so callers without custom mappings need no setup.
func New(adapter Adapter, mapper *symbol.Mapper) *Gateway {
	if mapper == nil {
		mapper = symbol.NewMapper(nil)
	}
	return &Gateway{
		adapter: adapter,
		mapper:  mapper,
		has:     capabilitiesFor(adapter.Mode()),
	}
}

func (g *Gateway) Mode() string { return g.adapter.Mode() }

// Has reports feature availability, CCXT's "has" dict.
func (g *Gateway) Has() map[string]bool {
	out := make(map[string]bool, len(g.has))
	for k, v := range g.has {
		out[k] = v
	}
	return out
}

// LoadMarkets fetches and caches the market table. Reload forces a
// refresh.
func (g *Gateway) LoadMarkets(ctx context.Context, reload bool) (map[string]Market, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.markets != nil && !reload {
		return copyMarkets(g.markets), nil
	}
	list, err := g.adapter.FetchMarkets(ctx)
	if err != nil {
		return nil, err
	}
	g.markets = make(map[string]Market, len(list))
	for _, m := range list {
		g.markets[m.Symbol] = m
	}
	return copyMarkets(g.markets), nil
}

func (g *Gateway) FetchMarkets(ctx context.Context) (map[string]Market, error) {
	return g.LoadMarkets(ctx, false)
}

func (g *Gateway) FetchTicker(ctx context.Context, sym string) (Ticker, error) {
	if err := requireSupport("fetchTicker", g.Mode()); err != nil {
		return Ticker{}, err
	}
	return g.adapter.FetchTicker(ctx, g.mapper.Normalize(sym))
}

// FetchTickers returns all tickers, optionally filtered client-side so
// one backend round-trip covers any subset.
func (g *Gateway) FetchTickers(ctx context.Context, symbols ...string) (map[string]Ticker, error) {
	if err := requireSupport("fetchTickers", g.Mode()); err != nil {
		return nil, err
	}
	all, err := g.adapter.FetchTickers(ctx)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[g.mapper.Normalize(s)] = true
	}
	out := make(map[string]Ticker)
	for sym, t := range all {
		if want[sym] {
			out[sym] = t
		}
	}
	return out, nil
}

// The candle/depth/trade/position surface exists so strategies written
// against the full CCXT shape compile and get a typed ErrNotSupported
// at runtime; no current backend serves these.

func (g *Gateway) FetchOHLCV(ctx context.Context, sym, timeframe string, since *int64, limit int) ([]OHLCV, error) {
	if err := requireSupport("fetchOHLCV", g.Mode()); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: fetchOHLCV", ErrNotSupported)
}

func (g *Gateway) FetchOrderBook(ctx context.Context, sym string, limit int) (OrderBook, error) {
	if err := requireSupport("fetchOrderBook", g.Mode()); err != nil {
		return OrderBook{}, err
	}
	return OrderBook{}, fmt.Errorf("%w: fetchOrderBook", ErrNotSupported)
}

func (g *Gateway) FetchTrades(ctx context.Context, sym string, since *int64, limit int) ([]Trade, error) {
	if err := requireSupport("fetchTrades", g.Mode()); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: fetchTrades", ErrNotSupported)
}

func (g *Gateway) FetchPositions(ctx context.Context, symbols ...string) ([]Position, error) {
	if err := requireSupport("fetchPositions", g.Mode()); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: fetchPositions", ErrNotSupported)
}

func (g *Gateway) FetchBalance(ctx context.Context) (Balance, error) {
	if err := requireSupport("fetchBalance", g.Mode()); err != nil {
		return Balance{}, err
	}
	return g.adapter.FetchBalance(ctx)
}

// Deposit credits a paper account's asset balance and returns the
// updated row. Outside CCXT's standard surface, like the paper
// service's own deposit endpoint.
func (g *Gateway) Deposit(ctx context.Context, asset string, amount float64) (BalanceTotals, error) {
	if err := requireSupport("deposit", g.Mode()); err != nil {
		return BalanceTotals{}, err
	}
	return g.adapter.Deposit(ctx, asset, amount)
}

// Withdraw debits a paper account's asset balance; it fails with
// ErrInsufficientFunds when the free amount cannot cover it.
func (g *Gateway) Withdraw(ctx context.Context, asset string, amount float64) (BalanceTotals, error) {
	if err := requireSupport("withdraw", g.Mode()); err != nil {
		return BalanceTotals{}, err
	}
	return g.adapter.Withdraw(ctx, asset, amount)
}

func (g *Gateway) CreateOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) (Order, error) {
	if err := requireSupport("createOrder", g.Mode()); err != nil {
		return Order{}, err
	}
	return g.adapter.CreateOrder(ctx, g.mapper.Normalize(sym), orderType, side, amount, price)
}

func (g *Gateway) CreateMarketOrder(ctx context.Context, sym, side string, amount float64) (Order, error) {
	return g.CreateOrder(ctx, sym, "market", side, amount, nil)
}

func (g *Gateway) CreateLimitOrder(ctx context.Context, sym, side string, amount, price float64) (Order, error) {
	return g.CreateOrder(ctx, sym, "limit", side, amount, &price)
}

// CancelOrder cancels by id. The symbol hint may be empty for paper
// backends; live exchanges require it.
func (g *Gateway) CancelOrder(ctx context.Context, id, sym string) (Order, error) {
	if err := requireSupport("cancelOrder", g.Mode()); err != nil {
		return Order{}, err
	}
	if sym != "" {
		sym = g.mapper.Normalize(sym)
	}
	return g.adapter.CancelOrder(ctx, id, sym)
}

func (g *Gateway) FetchOrder(ctx context.Context, id, sym string) (Order, error) {
	if err := requireSupport("fetchOrder", g.Mode()); err != nil {
		return Order{}, err
	}
	if sym != "" {
		sym = g.mapper.Normalize(sym)
	}
	return g.adapter.FetchOrder(ctx, id, sym)
}

func (g *Gateway) FetchOrders(ctx context.Context, filter OrdersFilter) ([]Order, error) {
	if err := requireSupport("fetchOrders", g.Mode()); err != nil {
		return nil, err
	}
	if filter.Symbol != "" {
		filter.Symbol = g.mapper.Normalize(filter.Symbol)
	}
	return g.adapter.FetchOrders(ctx, filter)
}

func (g *Gateway) FetchOpenOrders(ctx context.Context, sym string) ([]Order, error) {
	return g.FetchOrders(ctx, OrdersFilter{Symbol: sym, Status: "open"})
}

// CanExecuteOrder dry-runs an order against current balances. It returns
// ErrInsufficientFunds (rather than just false) when the balance cannot
// support the order, so callers branch on the same error type a real
// CreateOrder would produce.
func (g *Gateway) CanExecuteOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) error {
	if err := requireSupport("canExecuteOrder", g.Mode()); err != nil {
		return err
	}
	ok, err := g.adapter.CanExecuteOrder(ctx, g.mapper.Normalize(sym), orderType, side, amount, price)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

// Advance moves replay time by N steps; zero steps just reads the
// current replay timestamp. Replay-capable modes only.
func (g *Gateway) Advance(ctx context.Context, steps int) (int64, error) {
	if err := requireSupport("advanceReplay", g.Mode()); err != nil {
		return 0, err
	}
	return g.adapter.AdvanceReplay(ctx, AdvanceRequest{Steps: &steps})
}

// AdvanceTo jumps replay time to an absolute timestamp.
func (g *Gateway) AdvanceTo(ctx context.Context, ts int64) (int64, error) {
	if err := requireSupport("advanceReplay", g.Mode()); err != nil {
		return 0, err
	}
	return g.adapter.AdvanceReplay(ctx, AdvanceRequest{ToTimestamp: &ts})
}

func (g *Gateway) Close() error {
	return g.adapter.Close()
}

func copyMarkets(src map[string]Market) map[string]Market {
	out := make(map[string]Market, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
