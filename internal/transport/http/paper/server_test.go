package paperhttp

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockx/internal/gateway"
	"mockx/internal/gateway/rest"
	"mockx/internal/replay"
)

func fptr(f float64) *float64 { return &f }

func newTestEngine() *replay.Engine {
	ds := replay.Dataset{
		Tickers: []replay.Ticker{
			{Symbol: "BTC/USDT", Timestamp: 1000, Last: fptr(50000)},
			{Symbol: "BTC/USDT", Timestamp: 2000, Last: fptr(50010)},
			{Symbol: "BTC/USDT", Timestamp: 3000, Last: fptr(50025)},
		},
		InitialBalances: map[string]replay.BalanceAmounts{
			"USDT": {Free: 10000},
		},
	}
	return replay.NewEngine(ds, replay.Options{})
}

func newTestGateway(t *testing.T, apiKey, clientKey string) (*gateway.Gateway, *replay.Engine) {
	t.Helper()
	engine := newTestEngine()
	srv, err := NewServer(Config{Engine: engine, APIKey: apiKey})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := rest.New(rest.Config{BaseURL: ts.URL, APIKey: clientKey})
	require.NoError(t, err)
	return gateway.New(gateway.NewPaperAdapter(client), nil), engine
}

func TestServerRoundTrip(t *testing.T) {
	gw, engine := newTestGateway(t, "", "")
	ctx := context.Background()

	ts, err := gw.Advance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), ts)

	tk, err := gw.FetchTicker(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", tk.Symbol)
	require.NotNil(t, tk.Last)
	assert.Equal(t, 50025.0, *tk.Last)

	o, err := gw.CreateMarketOrder(ctx, "BTC/USDT", "buy", 0.01)
	require.NoError(t, err)
	assert.Equal(t, "filled", o.Status)
	assert.InDelta(t, 500.25, o.Cost, 1e-9)

	bal, err := gw.FetchBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 9499.75, bal.Assets["USDT"].Free, 1e-9)

	got, err := gw.FetchOrder(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	canceled, err := gw.CancelOrder(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "canceled", canceled.Status)

	// HTTP 和本地引擎看到的是同一份状态。
	assert.InDelta(t, 0.01, engine.BalanceFor("BTC").Free, 1e-9)
}

func TestServerMapsBusinessErrors(t *testing.T) {
	gw, _ := newTestGateway(t, "", "")
	ctx := context.Background()

	_, err := gw.CreateMarketOrder(ctx, "BTC/USDT", "buy", 100)
	assert.ErrorIs(t, err, gateway.ErrInsufficientFunds)

	_, err = gw.FetchOrder(ctx, "999", "")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestServerAdvanceZeroStepsIsNoOp(t *testing.T) {
	gw, engine := newTestGateway(t, "", "")

	ts, err := gw.Advance(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ts)
	assert.Equal(t, int64(1000), engine.CurrentTimestamp())
}

func TestServerDepositAndWithdrawal(t *testing.T) {
	gw, engine := newTestGateway(t, "", "")
	ctx := context.Background()

	row, err := gw.Deposit(ctx, "BTC", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, row.Free)
	assert.Equal(t, 0.5, engine.BalanceFor("BTC").Free)

	row, err = gw.Withdraw(ctx, "BTC", 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, row.Free, 1e-9)

	_, err = gw.Withdraw(ctx, "BTC", 5)
	assert.ErrorIs(t, err, gateway.ErrInsufficientFunds)
}

func TestServerFiltersOrders(t *testing.T) {
	gw, _ := newTestGateway(t, "", "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := gw.CreateMarketOrder(ctx, "BTC/USDT", "buy", 0.001)
		require.NoError(t, err)
	}

	orders, err := gw.FetchOrders(ctx, gateway.OrdersFilter{Symbol: "BTC/USDT", Tail: 2})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	sells, err := gw.FetchOrders(ctx, gateway.OrdersFilter{Side: "sell"})
	require.NoError(t, err)
	assert.Empty(t, sells)
}

func TestServerCanExecute(t *testing.T) {
	gw, _ := newTestGateway(t, "", "")
	ctx := context.Background()

	assert.NoError(t, gw.CanExecuteOrder(ctx, "BTC/USDT", "market", "buy", 0.1, nil))
	assert.ErrorIs(t, gw.CanExecuteOrder(ctx, "BTC/USDT", "market", "buy", 100, nil), gateway.ErrInsufficientFunds)
}

func TestServerRejectsBadAPIKey(t *testing.T) {
	gw, _ := newTestGateway(t, "secret", "wrong")

	_, err := gw.FetchBalance(context.Background())
	require.Error(t, err)
	var authErr *gateway.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestServerAcceptsAPIKey(t *testing.T) {
	gw, _ := newTestGateway(t, "secret", "secret")

	bal, err := gw.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, bal.Assets["USDT"].Free)
}
