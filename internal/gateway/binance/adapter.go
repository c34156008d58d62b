// Package binance is the production adapter: a pass-through over the
// go-binance spot client implementing the gateway's Adapter operations.
// It holds no business logic beyond field mapping; order semantics are
// whatever the live exchange does.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gobinance "github.com/adshao/go-binance/v2"

	"mockx/internal/gateway"
	"mockx/internal/pkg/symbol"
)

type Config struct {
	APIKey    string
	APISecret string
	// BaseURL overrides the default endpoint, e.g. for the spot testnet.
	BaseURL string
}

type Adapter struct {
	client *gobinance.Client
	mapper *symbol.Mapper
}

func New(cfg Config, mapper *symbol.Mapper) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("binance adapter requires api key and secret")
	}
	if mapper == nil {
		mapper = symbol.NewMapper(nil)
	}
	client := gobinance.NewClient(cfg.APIKey, cfg.APISecret)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.BaseURL = base
	}
	return &Adapter{client: client, mapper: mapper}, nil
}

func (a *Adapter) Mode() string { return gateway.ModeProd }

func (a *Adapter) FetchMarkets(ctx context.Context) ([]gateway.Market, error) {
	info, err := a.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]gateway.Market, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		pair := symbol.Symbol{Base: s.BaseAsset, Quote: s.QuoteAsset}
		out = append(out, gateway.Market{
			Symbol: pair.Internal(),
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Active: s.Status == "TRADING",
		})
	}
	return out, nil
}

func (a *Adapter) FetchTicker(ctx context.Context, sym string) (gateway.Ticker, error) {
	stats, err := a.client.NewListPriceChangeStatsService().Symbol(a.mapper.ToBinance(sym)).Do(ctx)
	if err != nil {
		return gateway.Ticker{}, err
	}
	if len(stats) == 0 {
		return gateway.Ticker{}, fmt.Errorf("%w: ticker %s", gateway.ErrNotFound, sym)
	}
	return a.ticker(sym, stats[0]), nil
}

func (a *Adapter) FetchTickers(ctx context.Context) (map[string]gateway.Ticker, error) {
	stats, err := a.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]gateway.Ticker, len(stats))
	for _, st := range stats {
		sym := symbol.Normalize(st.Symbol)
		if sym == "" {
			continue
		}
		out[sym] = a.ticker(sym, st)
	}
	return out, nil
}

func (a *Adapter) ticker(sym string, st *gobinance.PriceChangeStats) gateway.Ticker {
	return gateway.Ticker{
		Symbol:    a.mapper.Normalize(sym),
		Timestamp: st.CloseTime,
		Last:      optPrice(st.LastPrice),
		Bid:       optPrice(st.BidPrice),
		Ask:       optPrice(st.AskPrice),
	}
}

func (a *Adapter) FetchBalance(ctx context.Context) (gateway.Balance, error) {
	account, err := a.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return gateway.Balance{}, err
	}
	bal := gateway.Balance{Assets: make(map[string]gateway.BalanceTotals, len(account.Balances))}
	for _, b := range account.Balances {
		free := parseFloat(b.Free)
		used := parseFloat(b.Locked)
		if free == 0 && used == 0 {
			continue
		}
		bal.Assets[b.Asset] = gateway.BalanceTotals{Free: free, Used: used, Total: free + used}
	}
	return bal, nil
}

func (a *Adapter) Deposit(ctx context.Context, asset string, amount float64) (gateway.BalanceTotals, error) {
	return gateway.BalanceTotals{}, fmt.Errorf("%w: deposit in prod mode", gateway.ErrNotSupported)
}

func (a *Adapter) Withdraw(ctx context.Context, asset string, amount float64) (gateway.BalanceTotals, error) {
	return gateway.BalanceTotals{}, fmt.Errorf("%w: withdraw in prod mode", gateway.ErrNotSupported)
}

func (a *Adapter) CreateOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) (gateway.Order, error) {
	svc := a.client.NewCreateOrderService().
		Symbol(a.mapper.ToBinance(sym)).
		Quantity(formatFloat(amount))
	switch strings.ToLower(side) {
	case "buy":
		svc = svc.Side(gobinance.SideTypeBuy)
	case "sell":
		svc = svc.Side(gobinance.SideTypeSell)
	default:
		return gateway.Order{}, fmt.Errorf("invalid order side %q", side)
	}
	switch strings.ToLower(orderType) {
	case "market":
		svc = svc.Type(gobinance.OrderTypeMarket)
	case "limit":
		if price == nil {
			return gateway.Order{}, fmt.Errorf("limit order requires a price")
		}
		svc = svc.Type(gobinance.OrderTypeLimit).
			TimeInForce(gobinance.TimeInForceTypeGTC).
			Price(formatFloat(*price))
	default:
		return gateway.Order{}, fmt.Errorf("invalid order type %q", orderType)
	}
	resp, err := svc.Do(ctx)
	if err != nil {
		return gateway.Order{}, err
	}
	filled := parseFloat(resp.ExecutedQuantity)
	return gateway.Order{
		ID:        strconv.FormatInt(resp.OrderID, 10),
		Symbol:    a.mapper.Normalize(sym),
		Side:      strings.ToLower(side),
		Type:      strings.ToLower(orderType),
		Status:    mapStatus(resp.Status),
		Price:     parseFloat(resp.Price),
		Amount:    parseFloat(resp.OrigQuantity),
		Filled:    filled,
		Remaining: parseFloat(resp.OrigQuantity) - filled,
		Cost:      parseFloat(resp.CummulativeQuoteQuantity),
		CreatedAt: resp.TransactTime,
		UpdatedAt: resp.TransactTime,
	}, nil
}

func (a *Adapter) CancelOrder(ctx context.Context, id, sym string) (gateway.Order, error) {
	orderID, err := parseOrderID(id)
	if err != nil {
		return gateway.Order{}, err
	}
	if sym == "" {
		return gateway.Order{}, fmt.Errorf("binance cancel requires the order's symbol")
	}
	resp, err := a.client.NewCancelOrderService().
		Symbol(a.mapper.ToBinance(sym)).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return gateway.Order{}, err
	}
	filled := parseFloat(resp.ExecutedQuantity)
	amount := parseFloat(resp.OrigQuantity)
	return gateway.Order{
		ID:        strconv.FormatInt(resp.OrderID, 10),
		Symbol:    a.mapper.Normalize(sym),
		Side:      strings.ToLower(string(resp.Side)),
		Type:      strings.ToLower(string(resp.Type)),
		Status:    mapStatus(resp.Status),
		Price:     parseFloat(resp.Price),
		Amount:    amount,
		Filled:    filled,
		Remaining: amount - filled,
		Cost:      parseFloat(resp.CummulativeQuoteQuantity),
	}, nil
}

func (a *Adapter) FetchOrder(ctx context.Context, id, sym string) (gateway.Order, error) {
	orderID, err := parseOrderID(id)
	if err != nil {
		return gateway.Order{}, err
	}
	if sym == "" {
		return gateway.Order{}, fmt.Errorf("binance order lookup requires the order's symbol")
	}
	o, err := a.client.NewGetOrderService().
		Symbol(a.mapper.ToBinance(sym)).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return gateway.Order{}, err
	}
	return a.mapOrder(sym, o), nil
}

func (a *Adapter) FetchOrders(ctx context.Context, filter gateway.OrdersFilter) ([]gateway.Order, error) {
	if filter.Symbol == "" {
		return nil, fmt.Errorf("binance order listing requires a symbol filter")
	}
	var (
		raw []*gobinance.Order
		err error
	)
	if filter.Status == "open" {
		raw, err = a.client.NewListOpenOrdersService().Symbol(a.mapper.ToBinance(filter.Symbol)).Do(ctx)
	} else {
		raw, err = a.client.NewListOrdersService().Symbol(a.mapper.ToBinance(filter.Symbol)).Do(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]gateway.Order, 0, len(raw))
	for _, o := range raw {
		mapped := a.mapOrder(filter.Symbol, o)
		if filter.Status != "" && filter.Status != "open" && mapped.Status != filter.Status {
			continue
		}
		if filter.Side != "" && mapped.Side != filter.Side {
			continue
		}
		out = append(out, mapped)
	}
	if filter.Tail > 0 && len(out) > filter.Tail {
		out = out[len(out)-filter.Tail:]
	}
	return out, nil
}

func (a *Adapter) mapOrder(sym string, o *gobinance.Order) gateway.Order {
	filled := parseFloat(o.ExecutedQuantity)
	amount := parseFloat(o.OrigQuantity)
	return gateway.Order{
		ID:        strconv.FormatInt(o.OrderID, 10),
		Symbol:    a.mapper.Normalize(sym),
		Side:      strings.ToLower(string(o.Side)),
		Type:      strings.ToLower(string(o.Type)),
		Status:    mapStatus(o.Status),
		Price:     parseFloat(o.Price),
		Amount:    amount,
		Filled:    filled,
		Remaining: amount - filled,
		Cost:      parseFloat(o.CummulativeQuoteQuantity),
		CreatedAt: o.Time,
		UpdatedAt: o.UpdateTime,
	}
}

func (a *Adapter) CanExecuteOrder(ctx context.Context, sym, orderType, side string, amount float64, price *float64) (bool, error) {
	return false, fmt.Errorf("%w: canExecuteOrder in prod mode", gateway.ErrNotSupported)
}

func (a *Adapter) AdvanceReplay(ctx context.Context, req gateway.AdvanceRequest) (int64, error) {
	return 0, fmt.Errorf("%w: advanceReplay in prod mode", gateway.ErrNotSupported)
}

func (a *Adapter) Close() error { return nil }

func mapStatus(status gobinance.OrderStatusType) string {
	switch status {
	case gobinance.OrderStatusTypeNew, gobinance.OrderStatusTypePartiallyFilled:
		return "open"
	case gobinance.OrderStatusTypeFilled:
		return "filled"
	case gobinance.OrderStatusTypeCanceled, gobinance.OrderStatusTypeRejected, gobinance.OrderStatusTypeExpired:
		return "canceled"
	default:
		return strings.ToLower(string(status))
	}
}

func parseOrderID(id string) (int64, error) {
	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: order id %q", gateway.ErrNotFound, id)
	}
	return orderID, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optPrice(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	f := parseFloat(s)
	return &f
}

var _ gateway.Adapter = (*Adapter)(nil)
