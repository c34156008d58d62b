package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"mockx/internal/pkg/symbol"
)

// PaperAdapter serves the Adapter operations from any Backend. Because
// both backends speak the same JSON shapes, a single parsing layer
// covers the in-memory engine and the remote paper service.
type PaperAdapter struct {
	backend Backend
	mode    string
}

// NewReplayAdapter wraps the in-process replay engine backend.
func NewReplayAdapter(backend *EngineBackend) *PaperAdapter {
	return &PaperAdapter{backend: backend, mode: ModeReplay}
}

// NewPaperAdapter wraps a REST backend pointing at a remote paper
// service.
func NewPaperAdapter(backend Backend) *PaperAdapter {
	return &PaperAdapter{backend: backend, mode: ModePaper}
}

func (a *PaperAdapter) Mode() string { return a.mode }

func (a *PaperAdapter) FetchMarkets(ctx context.Context) ([]Market, error) {
	raw, err := a.backend.Get(ctx, "/tickers", nil)
	if err != nil {
		return nil, err
	}
	var markets []Market
	gjson.ParseBytes(raw).ForEach(func(_, row gjson.Result) bool {
		pair := symbol.Parse(row.Get("symbol").String())
		if pair.Base == "" {
			return true
		}
		markets = append(markets, Market{
			Symbol: pair.Internal(),
			Base:   pair.Base,
			Quote:  pair.Quote,
			Active: true,
		})
		return true
	})
	return markets, nil
}

func (a *PaperAdapter) FetchTicker(ctx context.Context, sym string) (Ticker, error) {
	raw, err := a.backend.Get(ctx, "/tickers/"+sym, nil)
	if err != nil {
		return Ticker{}, err
	}
	return parseTicker(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) FetchTickers(ctx context.Context) (map[string]Ticker, error) {
	raw, err := a.backend.Get(ctx, "/tickers", nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Ticker)
	gjson.ParseBytes(raw).ForEach(func(_, row gjson.Result) bool {
		t := parseTicker(row)
		out[t.Symbol] = t
		return true
	})
	return out, nil
}

func (a *PaperAdapter) FetchBalance(ctx context.Context) (Balance, error) {
	raw, err := a.backend.Get(ctx, "/balance", nil)
	if err != nil {
		return Balance{}, err
	}
	doc := gjson.ParseBytes(raw)
	bal := Balance{
		Timestamp: doc.Get("timestamp").Int(),
		Assets:    make(map[string]BalanceTotals),
	}
	doc.Get("assets").ForEach(func(_, row gjson.Result) bool {
		bal.Assets[row.Get("asset").String()] = BalanceTotals{
			Free:  row.Get("free").Float(),
			Used:  row.Get("used").Float(),
			Total: row.Get("total").Float(),
		}
		return true
	})
	return bal, nil
}

func (a *PaperAdapter) Deposit(ctx context.Context, asset string, amount float64) (BalanceTotals, error) {
	raw, err := a.backend.Post(ctx, "/balance/"+asset+"/deposit", BalanceChangeRequest{Amount: amount})
	if err != nil {
		return BalanceTotals{}, err
	}
	return parseBalanceRow(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) Withdraw(ctx context.Context, asset string, amount float64) (BalanceTotals, error) {
	raw, err := a.backend.Post(ctx, "/balance/"+asset+"/withdrawal", BalanceChangeRequest{Amount: amount})
	if err != nil {
		return BalanceTotals{}, err
	}
	return parseBalanceRow(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) CreateOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) (Order, error) {
	body := map[string]any{
		"symbol": sym,
		"type":   orderType,
		"side":   side,
		"amount": amount,
	}
	if price != nil {
		body["price"] = *price
	}
	raw, err := a.backend.Post(ctx, "/orders", body)
	if err != nil {
		return Order{}, err
	}
	return parseOrder(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) CancelOrder(ctx context.Context, id, _ string) (Order, error) {
	raw, err := a.backend.Post(ctx, "/orders/"+id+"/cancel", nil)
	if err != nil {
		return Order{}, err
	}
	return parseOrder(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) FetchOrder(ctx context.Context, id, _ string) (Order, error) {
	raw, err := a.backend.Get(ctx, "/orders/"+id, nil)
	if err != nil {
		return Order{}, err
	}
	return parseOrder(gjson.ParseBytes(raw)), nil
}

func (a *PaperAdapter) FetchOrders(ctx context.Context, filter OrdersFilter) ([]Order, error) {
	params := url.Values{}
	if filter.Symbol != "" {
		params.Set("symbol", filter.Symbol)
	}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.Side != "" {
		params.Set("side", filter.Side)
	}
	if filter.Tail > 0 {
		params.Set("tail", strconv.Itoa(filter.Tail))
	}
	raw, err := a.backend.Get(ctx, "/orders", params)
	if err != nil {
		return nil, err
	}
	var orders []Order
	gjson.ParseBytes(raw).ForEach(func(_, row gjson.Result) bool {
		orders = append(orders, parseOrder(row))
		return true
	})
	return orders, nil
}

func (a *PaperAdapter) CanExecuteOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) (bool, error) {
	body := map[string]any{
		"symbol": sym,
		"type":   orderType,
		"side":   side,
		"amount": amount,
	}
	if price != nil {
		body["price"] = *price
	}
	raw, err := a.backend.Post(ctx, "/orders/can_execute", body)
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(raw, "can_execute").Bool(), nil
}

func (a *PaperAdapter) AdvanceReplay(ctx context.Context, req AdvanceRequest) (int64, error) {
	raw, err := a.backend.Post(ctx, "/replay/advance", req)
	if err != nil {
		return 0, err
	}
	return gjson.GetBytes(raw, "timestamp").Int(), nil
}

func (a *PaperAdapter) Close() error {
	if closer, ok := a.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func parseTicker(row gjson.Result) Ticker {
	t := Ticker{
		Symbol:    row.Get("symbol").String(),
		Timestamp: row.Get("timestamp").Int(),
	}
	t.Last = optFloat(row.Get("last"))
	t.Bid = optFloat(row.Get("bid"))
	t.Ask = optFloat(row.Get("ask"))
	return t
}

func parseOrder(row gjson.Result) Order {
	return Order{
		ID:        row.Get("oid").String(),
		Symbol:    row.Get("symbol").String(),
		Side:      row.Get("side").String(),
		Type:      row.Get("type").String(),
		Status:    row.Get("status").String(),
		Price:     row.Get("price").Float(),
		Amount:    row.Get("amount").Float(),
		Filled:    row.Get("filled").Float(),
		Remaining: row.Get("remaining").Float(),
		Cost:      row.Get("cost").Float(),
		CreatedAt: row.Get("created_at").Int(),
		UpdatedAt: row.Get("updated_at").Int(),
	}
}

func parseBalanceRow(row gjson.Result) BalanceTotals {
	return BalanceTotals{
		Free:  row.Get("free").Float(),
		Used:  row.Get("used").Float(),
		Total: row.Get("total").Float(),
	}
}

func optFloat(v gjson.Result) *float64 {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	f := v.Float()
	return &f
}

var _ Adapter = (*PaperAdapter)(nil)
