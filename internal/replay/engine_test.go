package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func seedDataset() Dataset {
	return Dataset{
		Tickers: []Ticker{
			{Symbol: "BTC/USDT", Timestamp: 1000, Last: fptr(50000)},
			{Symbol: "BTC/USDT", Timestamp: 2000, Last: fptr(50010)},
			{Symbol: "BTC/USDT", Timestamp: 3000, Last: fptr(50025)},
			{Symbol: "ETH/USDT", Timestamp: 1500, Last: fptr(3000)},
			{Symbol: "ETH/USDT", Timestamp: 2500, Last: fptr(3010)},
		},
		InitialBalances: map[string]BalanceAmounts{
			"USDT": {Free: 10000},
		},
	}
}

func TestAdvanceClampsAtTimelineEnd(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	assert.Equal(t, int64(1500), e.CurrentTimestamp())

	ts := e.Advance(1)
	assert.Equal(t, int64(2500), ts)

	// 超出末尾后停在最后一条。
	ts = e.Advance(100)
	assert.Equal(t, int64(3000), ts)
	ts = e.Advance(1)
	assert.Equal(t, int64(3000), ts)
}

func TestAdvanceZeroStepsIsNoOp(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	// 零步和负步都不挪游标，只回报当前时间。
	assert.Equal(t, int64(1500), e.Advance(0))
	assert.Equal(t, int64(1500), e.Advance(-3))

	btc, err := e.Ticker("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), btc.Timestamp)
}

func TestCurrentTimestampIsMaxAcrossSymbols(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	// BTC 在 1000，ETH 在 1500，逻辑时钟取最大者。
	assert.Equal(t, int64(1500), e.CurrentTimestamp())

	e.Advance(2)
	// BTC 在 3000，ETH 已停在 2500。
	assert.Equal(t, int64(3000), e.CurrentTimestamp())
}

func TestAdvanceToSeeksRightmostSnapshot(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	ts := e.AdvanceTo(2600)
	assert.Equal(t, int64(2500), ts)

	btc, err := e.Ticker("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), btc.Timestamp)

	// 时间戳早于首条快照时游标不动。
	e.AdvanceTo(10)
	btc, err = e.Ticker("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), btc.Timestamp)
}

func TestTickersSortedBySymbol(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	ticks := e.Tickers()
	require.Len(t, ticks, 2)
	assert.Equal(t, "BTC/USDT", ticks[0].Symbol)
	assert.Equal(t, "ETH/USDT", ticks[1].Symbol)
}

func TestTickersAutoAdvance(t *testing.T) {
	e := NewEngine(seedDataset(), Options{AutoAdvance: true})

	ticks := e.Tickers()
	require.Len(t, ticks, 2)
	assert.Equal(t, int64(2000), ticks[0].Timestamp)

	ticks = e.Tickers()
	assert.Equal(t, int64(3000), ticks[0].Timestamp)
}

func TestTickerUnknownSymbol(t *testing.T) {
	strict := NewEngine(seedDataset(), Options{Strict: true})
	_, err := strict.Ticker("DOGE/USDT")
	assert.ErrorIs(t, err, ErrNotFound)

	loose := NewEngine(seedDataset(), Options{})
	tk, err := loose.Ticker("DOGE/USDT")
	require.NoError(t, err)
	assert.Equal(t, "DOGE/USDT", tk.Symbol)
	assert.Nil(t, tk.Last)
}

func TestPriceResolutionPriority(t *testing.T) {
	ds := Dataset{
		Tickers: []Ticker{
			{Symbol: "BTC/USDT", Timestamp: 1000, Last: fptr(50000), Bid: fptr(49990), Ask: fptr(50010)},
			{Symbol: "ETH/USDT", Timestamp: 1000, Bid: fptr(2990), Ask: fptr(3010)},
			{Symbol: "SOL/USDT", Timestamp: 1000},
		},
		InitialBalances: map[string]BalanceAmounts{"USDT": {Free: 100000}},
	}
	e := NewEngine(ds, Options{})

	// 显式价格优先于行情。
	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeLimit, Amount: 1, Price: fptr(42000)})
	require.NoError(t, err)
	assert.Equal(t, 42000.0, o.Price)

	// 其次取 last。
	o, err = e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, o.Price)

	// 没有 last 时取买卖中间价。
	o, err = e.CreateOrder(OrderRequest{Symbol: "ETH/USDT", Side: SideBuy, Type: TypeMarket, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, o.Price)

	// 什么都没有则回落到 0。
	o, err = e.CreateOrder(OrderRequest{Symbol: "SOL/USDT", Side: SideBuy, Type: TypeMarket, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.Price)
	assert.Equal(t, 0.0, o.Cost)
}

func TestCreateOrderBuyMovesBothLegs(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, o.Status)
	assert.Equal(t, 0.1, o.Filled)
	assert.Equal(t, 0.0, o.Remaining)
	assert.InDelta(t, 5000.0, o.Cost, 1e-9)

	usdt := e.BalanceFor("USDT")
	btc := e.BalanceFor("BTC")
	assert.InDelta(t, 5000.0, usdt.Free, 1e-9)
	assert.InDelta(t, 0.1, btc.Free, 1e-9)
	assert.InDelta(t, 0.1, btc.Total, 1e-9)
}

func TestCreateOrderSellIsSymmetric(t *testing.T) {
	ds := seedDataset()
	ds.InitialBalances["BTC"] = BalanceAmounts{Free: 1}
	e := NewEngine(ds, Options{})

	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideSell, Type: TypeMarket, Amount: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 25000.0, o.Cost, 1e-9)

	assert.InDelta(t, 0.5, e.BalanceFor("BTC").Free, 1e-9)
	assert.InDelta(t, 35000.0, e.BalanceFor("USDT").Free, 1e-9)
}

func TestCreateOrderInsufficientFunds(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	_, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 1})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// 拒绝不能留下半条腿。
	assert.Equal(t, 10000.0, e.BalanceFor("USDT").Free)
	assert.Equal(t, 0.0, e.BalanceFor("BTC").Free)
	assert.Empty(t, e.Orders(OrderFilter{}))
}

func TestCreateOrderRejectsUnparseableSymbol(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	_, err := e.CreateOrder(OrderRequest{Symbol: "NONSENSE", Side: SideBuy, Type: TypeMarket, Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderStrictUnknownSymbol(t *testing.T) {
	e := NewEngine(seedDataset(), Options{Strict: true})
	_, err := e.CreateOrder(OrderRequest{Symbol: "DOGE/USDT", Side: SideBuy, Type: TypeMarket, Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderIDsAreMonotonic(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	var prev string
	for i := 0; i < 5; i++ {
		o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.001})
		require.NoError(t, err)
		assert.Greater(t, o.OID, prev)
		prev = o.OID
	}
	assert.Equal(t, "5", prev)
}

func TestCancelOrderKeepsFillByDefault(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)

	e.Advance(1)
	canceled, err := e.CancelOrder(o.OID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)
	assert.Equal(t, int64(2500), canceled.UpdatedAt)

	// 撤单只是状态翻转，余额保持成交后的样子。
	assert.InDelta(t, 5000.0, e.BalanceFor("USDT").Free, 1e-9)
	assert.InDelta(t, 0.1, e.BalanceFor("BTC").Free, 1e-9)
}

func TestCancelOrderReversesWhenConfigured(t *testing.T) {
	e := NewEngine(seedDataset(), Options{ReverseOnCancel: true})
	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)

	canceled, err := e.CancelOrder(o.OID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)
	assert.InDelta(t, 10000.0, e.BalanceFor("USDT").Free, 1e-9)
	assert.InDelta(t, 0.0, e.BalanceFor("BTC").Free, 1e-9)

	// 已取消的订单不会二次回滚。
	again, err := e.CancelOrder(o.OID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, again.Status)
	assert.InDelta(t, 10000.0, e.BalanceFor("USDT").Free, 1e-9)
}

func TestCancelOrderReversalNeedsFunds(t *testing.T) {
	e := NewEngine(seedDataset(), Options{ReverseOnCancel: true})
	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)

	// 买到的 BTC 已经花掉，回滚腿不够付。
	_, err = e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideSell, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)

	_, err = e.CancelOrder(o.OID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := e.Order(o.OID)
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, got.Status)
}

func TestCancelOrderUnknown(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	_, err := e.CancelOrder("999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanExecuteHasNoSideEffects(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	ok, err := e.CanExecute(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.1})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.CanExecute(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 10})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 10000.0, e.BalanceFor("USDT").Free)
	assert.Empty(t, e.Orders(OrderFilter{}))
}

func TestOrdersFilterAndTail(t *testing.T) {
	ds := seedDataset()
	ds.InitialBalances["ETH"] = BalanceAmounts{Free: 10}
	e := NewEngine(ds, Options{})

	mustOrder := func(sym, side string, amount float64) Order {
		o, err := e.CreateOrder(OrderRequest{Symbol: sym, Side: side, Type: TypeMarket, Amount: amount})
		require.NoError(t, err)
		return o
	}
	first := mustOrder("BTC/USDT", SideBuy, 0.01)
	mustOrder("ETH/USDT", SideSell, 1)
	third := mustOrder("BTC/USDT", SideBuy, 0.01)

	btcOrders := e.Orders(OrderFilter{Symbol: "BTC/USDT"})
	require.Len(t, btcOrders, 2)
	assert.Equal(t, first.OID, btcOrders[0].OID)
	assert.Equal(t, third.OID, btcOrders[1].OID)

	sells := e.Orders(OrderFilter{Side: SideSell})
	require.Len(t, sells, 1)
	assert.Equal(t, "ETH/USDT", sells[0].Symbol)

	tail := e.Orders(OrderFilter{Tail: 2})
	require.Len(t, tail, 2)
	assert.Equal(t, third.OID, tail[1].OID)

	_, err := e.CancelOrder(first.OID)
	require.NoError(t, err)
	canceled := e.Orders(OrderFilter{Status: StatusCanceled})
	require.Len(t, canceled, 1)
	assert.Equal(t, first.OID, canceled[0].OID)
}

func TestDepositCreditsFreeBalance(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	row, err := e.Deposit("eth", 2.5)
	require.NoError(t, err)
	assert.Equal(t, "ETH", row.Asset)
	assert.Equal(t, 2.5, row.Free)

	row, err = e.Deposit("ETH", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, row.Free)

	_, err = e.Deposit("ETH", 0)
	assert.Error(t, err)
	_, err = e.Deposit("ETH", -1)
	assert.Error(t, err)
	_, err = e.Deposit("  ", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithdrawDebitsFreeBalance(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	row, err := e.Withdraw("USDT", 400)
	require.NoError(t, err)
	assert.Equal(t, 9600.0, row.Free)

	// 余额不够提不出来，账本保持不变。
	_, err = e.Withdraw("USDT", 20000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 9600.0, e.BalanceFor("USDT").Free)

	_, err = e.Withdraw("BTC", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = e.Withdraw("USDT", 0)
	assert.Error(t, err)
}

func TestDepositFundsSubsequentOrder(t *testing.T) {
	ds := seedDataset()
	ds.InitialBalances = nil
	e := NewEngine(ds, Options{})

	_, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = e.Deposit("USDT", 1000)
	require.NoError(t, err)

	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, o.Cost, 1e-9)
	assert.InDelta(t, 500.0, e.BalanceFor("USDT").Free, 1e-9)
}

func TestFillPriceDeterministicAtFixedCursor(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})
	e.Advance(1)

	// 游标不动时，同样的请求反复解析出同一个价格。
	for i := 0; i < 5; i++ {
		ok, err := e.CanExecute(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	var prices []float64
	for i := 0; i < 5; i++ {
		o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
		require.NoError(t, err)
		prices = append(prices, o.Price)
		assert.Equal(t, int64(2500), o.CreatedAt)
	}
	for _, p := range prices {
		assert.Equal(t, 50010.0, p)
	}
}

func TestSameSeedReplaysIdentically(t *testing.T) {
	run := func() []Order {
		e := NewEngine(seedDataset(), Options{})
		e.Advance(2)
		for i := 0; i < 3; i++ {
			_, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
			require.NoError(t, err)
		}
		return e.Orders(OrderFilter{})
	}
	assert.Equal(t, run(), run())
}

func TestBalanceSnapshotSortedWithTimestamp(t *testing.T) {
	ds := seedDataset()
	ds.InitialBalances["ETH"] = BalanceAmounts{Free: 2, Used: 1}
	e := NewEngine(ds, Options{})
	e.Advance(1)

	snap := e.Balance()
	assert.Equal(t, int64(2500), snap.Timestamp)
	require.Len(t, snap.Assets, 2)
	assert.Equal(t, "ETH", snap.Assets[0].Asset)
	assert.Equal(t, "USDT", snap.Assets[1].Asset)
	assert.Equal(t, 3.0, snap.Assets[0].Total)
}

func TestReplayScenarioEndToEnd(t *testing.T) {
	e := NewEngine(seedDataset(), Options{})

	ts := e.Advance(1)
	require.Equal(t, int64(2500), ts)
	ts = e.Advance(1)
	require.Equal(t, int64(3000), ts)

	o, err := e.CreateOrder(OrderRequest{Symbol: "BTC/USDT", Side: SideBuy, Type: TypeMarket, Amount: 0.01})
	require.NoError(t, err)
	assert.Equal(t, 50025.0, o.Price)
	assert.InDelta(t, 500.25, o.Cost, 1e-9)
	assert.Equal(t, int64(3000), o.CreatedAt)

	assert.InDelta(t, 9499.75, e.BalanceFor("USDT").Free, 1e-9)
	assert.InDelta(t, 0.01, e.BalanceFor("BTC").Free, 1e-9)

	orders := e.Orders(OrderFilter{Symbol: "BTC/USDT", Status: StatusFilled})
	require.Len(t, orders, 1)
	assert.Equal(t, o.OID, orders[0].OID)
}
