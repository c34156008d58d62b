package replay

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mockx/internal/logger"
	"mockx/internal/pkg/symbol"
)

// Options control engine behavior beyond the seed data.
type Options struct {
	// Strict makes operations on unknown symbols fail with ErrNotFound
	// instead of degrading to placeholder data.
	Strict bool
	// AutoAdvance steps every timeline once before each all-tickers read,
	// so a caller can drive the replay just by polling.
	AutoAdvance bool
	// ReverseOnCancel undoes a fill's ledger effects when the order is
	// canceled. Off by default: the recorded fill already "happened", and
	// canceling it is a pure status change.
	ReverseOnCancel bool
}

// Engine is the deterministic replay backend. All mutable state (cursors,
// ledger, order store) sits behind one mutex because an order fill
// touches the ledger and the order store together; finer locking would
// allow interleavings that break that atomicity.
type Engine struct {
	mu        sync.Mutex
	timelines map[string]*timeline
	symbols   []string
	ledger    *ledger
	orders    map[string]*Order
	orderSeq  []string
	oidNext   int64
	opts      Options
	log       *slog.Logger
}

// NewEngine groups the dataset's tickers per symbol, sorts each timeline
// and seeds the ledger. The session id only tags log lines so parallel
// engines in one process can be told apart.
func NewEngine(ds Dataset, opts Options) *Engine {
	bySymbol := make(map[string][]Ticker)
	for _, t := range ds.Tickers {
		sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if sym == "" {
			continue
		}
		t.Symbol = sym
		bySymbol[sym] = append(bySymbol[sym], t)
	}
	timelines := make(map[string]*timeline, len(bySymbol))
	symbols := make([]string, 0, len(bySymbol))
	for sym, ticks := range bySymbol {
		timelines[sym] = newTimeline(ticks)
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return &Engine{
		timelines: timelines,
		symbols:   symbols,
		ledger:    newLedger(ds.InitialBalances),
		orders:    make(map[string]*Order),
		opts:      opts,
		log:       logger.With("session", uuid.NewString()[:8]),
	}
}

// ---------------------------------------------------------------------
// Time control
// ---------------------------------------------------------------------

// Advance steps every symbol's cursor forward, clamping at each
// timeline's last snapshot. Zero or negative steps move nothing; the
// call just reports the current replay timestamp.
func (e *Engine) Advance(steps int) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tl := range e.timelines {
		tl.step(steps)
	}
	return e.currentTimestampLocked()
}

// AdvanceTo jumps every symbol to the rightmost snapshot at or before ts.
// Symbols whose first snapshot is later than ts keep their cursor.
func (e *Engine) AdvanceTo(ts int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tl := range e.timelines {
		tl.seek(ts)
	}
	return e.currentTimestampLocked()
}

// CurrentTimestamp is the replay's logical wall clock: the maximum
// timestamp across all symbols' current snapshots. Symbols tick at
// different rates, so the max is the only timestamp every cursor has
// reached or passed.
func (e *Engine) CurrentTimestamp() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTimestampLocked()
}

func (e *Engine) currentTimestampLocked() int64 {
	var ts int64
	for _, tl := range e.timelines {
		if cur, ok := tl.current(); ok && cur.Timestamp > ts {
			ts = cur.Timestamp
		}
	}
	return ts
}

// ---------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------

// Tickers returns the current snapshot of every symbol, ordered by
// symbol. With AutoAdvance set, the replay steps once first.
func (e *Engine) Tickers() []Ticker {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.AutoAdvance {
		for _, tl := range e.timelines {
			tl.step(1)
		}
	}
	out := make([]Ticker, 0, len(e.symbols))
	for _, sym := range e.symbols {
		if cur, ok := e.timelines[sym].current(); ok {
			out = append(out, cur)
		}
	}
	return out
}

// Ticker returns the current snapshot for one symbol. Unknown symbols
// fail in strict mode and degrade to an empty-priced placeholder
// otherwise.
func (e *Engine) Ticker(sym string) (Ticker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sym = strings.ToUpper(strings.TrimSpace(sym))
	tl, ok := e.timelines[sym]
	if !ok || tl.empty() {
		if e.opts.Strict {
			return Ticker{}, fmt.Errorf("%w: unknown symbol %s", ErrNotFound, sym)
		}
		return Ticker{Symbol: sym, Timestamp: e.currentTimestampLocked()}, nil
	}
	cur, _ := tl.current()
	return cur, nil
}

// ---------------------------------------------------------------------
// Balance
// ---------------------------------------------------------------------

func (e *Engine) Balance() BalanceSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return BalanceSnapshot{
		Timestamp: e.currentTimestampLocked(),
		Assets:    e.ledger.snapshot(),
	}
}

// BalanceFor never fails: an unseen asset reads as a zeroed row.
func (e *Engine) BalanceFor(asset string) AssetBalance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.get(strings.ToUpper(strings.TrimSpace(asset)))
}

// Deposit credits an asset's free balance and returns the updated row.
func (e *Engine) Deposit(asset string, amount float64) (AssetBalance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return AssetBalance{}, fmt.Errorf("%w: empty asset", ErrNotFound)
	}
	if amount <= 0 {
		return AssetBalance{}, fmt.Errorf("deposit amount must be positive, got %v", amount)
	}
	e.ledger.creditFree(asset, decimal.NewFromFloat(amount))
	e.log.Debug("deposit", "asset", asset, "amount", amount)
	return e.ledger.get(asset), nil
}

// Withdraw debits an asset's free balance. It fails without mutating
// anything when the free amount cannot cover the withdrawal.
func (e *Engine) Withdraw(asset string, amount float64) (AssetBalance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return AssetBalance{}, fmt.Errorf("%w: empty asset", ErrNotFound)
	}
	if amount <= 0 {
		return AssetBalance{}, fmt.Errorf("withdrawal amount must be positive, got %v", amount)
	}
	qty := decimal.NewFromFloat(amount)
	if !e.ledger.hasFree(asset, qty) {
		return AssetBalance{}, fmt.Errorf("%w: not enough %s", ErrInsufficientFunds, asset)
	}
	e.ledger.debitFree(asset, qty)
	e.log.Debug("withdrawal", "asset", asset, "amount", amount)
	return e.ledger.get(asset), nil
}

// ---------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------

// CreateOrder resolves a fill price, verifies the paying side's balance
// and applies the fill atomically: validation happens before either
// ledger leg is touched, so a rejection leaves no partial debit. The
// order is recorded directly in filled status; this engine has no
// pending state.
func (e *Engine) CreateOrder(req OrderRequest) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sym := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if e.opts.Strict {
		if _, ok := e.timelines[sym]; !ok {
			return Order{}, fmt.Errorf("%w: unknown symbol %s", ErrNotFound, sym)
		}
	}
	pair := symbol.Parse(sym)
	base, quote := pair.Base, pair.Quote
	if base == "" || quote == "" {
		return Order{}, fmt.Errorf("%w: symbol %q is not a BASE/QUOTE pair", ErrNotFound, req.Symbol)
	}

	price := e.resolvePriceLocked(sym, req.Price)
	amount := decimal.NewFromFloat(req.Amount)
	cost := amount.Mul(price)

	switch req.Side {
	case SideBuy:
		if !e.ledger.hasFree(quote, cost) {
			return Order{}, fmt.Errorf("%w: not enough %s", ErrInsufficientFunds, quote)
		}
		e.ledger.debitFree(quote, cost)
		e.ledger.creditFree(base, amount)
	case SideSell:
		if !e.ledger.hasFree(base, amount) {
			return Order{}, fmt.Errorf("%w: not enough %s", ErrInsufficientFunds, base)
		}
		e.ledger.debitFree(base, amount)
		e.ledger.creditFree(quote, cost)
	default:
		return Order{}, fmt.Errorf("invalid order side %q", req.Side)
	}

	e.oidNext++
	oid := strconv.FormatInt(e.oidNext, 10)
	now := e.currentTimestampLocked()
	if now == 0 {
		now = time.Now().UnixMilli()
	}
	priceF, _ := price.Float64()
	costF, _ := cost.Float64()
	order := Order{
		OID:       oid,
		Symbol:    sym,
		Side:      req.Side,
		Type:      req.Type,
		Status:    StatusFilled,
		Price:     priceF,
		Amount:    req.Amount,
		Filled:    req.Amount,
		Remaining: 0,
		Cost:      costF,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.orders[oid] = &order
	e.orderSeq = append(e.orderSeq, oid)
	e.log.Debug("order filled", "oid", oid, "symbol", sym, "side", req.Side, "price", priceF, "cost", costF)
	return order, nil
}

// CancelOrder flips the order to canceled and stamps the simulated time.
// The original fill's balance effects stay applied unless the engine was
// built with ReverseOnCancel; a reversal happens at most once, and only
// when the reversing legs are themselves affordable.
func (e *Engine) CancelOrder(oid string) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	order, ok := e.orders[oid]
	if !ok {
		return Order{}, fmt.Errorf("%w: order %s", ErrNotFound, oid)
	}
	if e.opts.ReverseOnCancel && order.Status == StatusFilled {
		if err := e.reverseFillLocked(order); err != nil {
			return Order{}, err
		}
	}
	order.Status = StatusCanceled
	order.UpdatedAt = e.currentTimestampLocked()
	return *order, nil
}

func (e *Engine) reverseFillLocked(order *Order) error {
	pair := symbol.Parse(order.Symbol)
	amount := decimal.NewFromFloat(order.Amount)
	cost := decimal.NewFromFloat(order.Cost)
	switch order.Side {
	case SideBuy:
		if !e.ledger.hasFree(pair.Base, amount) {
			return fmt.Errorf("%w: cannot reverse fill, %s already spent", ErrInsufficientFunds, pair.Base)
		}
		e.ledger.debitFree(pair.Base, amount)
		e.ledger.creditFree(pair.Quote, cost)
	case SideSell:
		if !e.ledger.hasFree(pair.Quote, cost) {
			return fmt.Errorf("%w: cannot reverse fill, %s already spent", ErrInsufficientFunds, pair.Quote)
		}
		e.ledger.debitFree(pair.Quote, cost)
		e.ledger.creditFree(pair.Base, amount)
	}
	return nil
}

// CanExecute is the side-effect-free twin of CreateOrder: same price
// resolution, same balance check, no mutation.
func (e *Engine) CanExecute(req OrderRequest) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sym := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if e.opts.Strict {
		if _, ok := e.timelines[sym]; !ok {
			return false, fmt.Errorf("%w: unknown symbol %s", ErrNotFound, sym)
		}
	}
	pair := symbol.Parse(sym)
	if pair.Base == "" || pair.Quote == "" {
		return false, fmt.Errorf("%w: symbol %q is not a BASE/QUOTE pair", ErrNotFound, req.Symbol)
	}
	price := e.resolvePriceLocked(sym, req.Price)
	amount := decimal.NewFromFloat(req.Amount)
	switch req.Side {
	case SideBuy:
		return e.ledger.hasFree(pair.Quote, amount.Mul(price)), nil
	case SideSell:
		return e.ledger.hasFree(pair.Base, amount), nil
	default:
		return false, fmt.Errorf("invalid order side %q", req.Side)
	}
}

// Order looks up a single order by id.
func (e *Engine) Order(oid string) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	order, ok := e.orders[oid]
	if !ok {
		return Order{}, fmt.Errorf("%w: order %s", ErrNotFound, oid)
	}
	return *order, nil
}

// Orders lists orders in creation sequence, filtered.
func (e *Engine) Orders(f OrderFilter) []Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	symFilter := strings.ToUpper(strings.TrimSpace(f.Symbol))
	out := make([]Order, 0, len(e.orderSeq))
	for _, oid := range e.orderSeq {
		o := e.orders[oid]
		if symFilter != "" && o.Symbol != symFilter {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Side != "" && o.Side != f.Side {
			continue
		}
		out = append(out, *o)
	}
	if f.Tail > 0 && len(out) > f.Tail {
		out = out[len(out)-f.Tail:]
	}
	return out
}

// ---------------------------------------------------------------------
// Price resolution
// ---------------------------------------------------------------------

// resolvePriceLocked picks a fill price by strict priority: an explicit
// price wins outright, then the current snapshot's last, then the
// bid/ask midpoint when both sides exist. The 0.0 fallback means the
// seed data carried no usable price at this cursor; that is a data
// quality problem, not a free asset, so it gets logged.
func (e *Engine) resolvePriceLocked(sym string, explicit *float64) decimal.Decimal {
	if explicit != nil {
		return decimal.NewFromFloat(*explicit)
	}
	tl, ok := e.timelines[sym]
	if !ok || tl.empty() {
		e.log.Warn("price resolution fell back to 0.0", "symbol", sym, "reason", "no timeline data")
		return decimal.Zero
	}
	cur, _ := tl.current()
	if cur.Last != nil {
		return decimal.NewFromFloat(*cur.Last)
	}
	if cur.Bid != nil && cur.Ask != nil {
		bid := decimal.NewFromFloat(*cur.Bid)
		ask := decimal.NewFromFloat(*cur.Ask)
		return bid.Add(ask).Div(decimal.NewFromInt(2))
	}
	e.log.Warn("price resolution fell back to 0.0", "symbol", sym, "reason", "snapshot has no last or bid/ask", "timestamp", cur.Timestamp)
	return decimal.Zero
}
