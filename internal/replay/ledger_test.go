package replay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerUnseenAssetReadsAsZero(t *testing.T) {
	l := newLedger(nil)
	row := l.get("BTC")
	assert.Equal(t, "BTC", row.Asset)
	assert.Equal(t, 0.0, row.Free)
	assert.Equal(t, 0.0, row.Total)

	assert.True(t, l.hasFree("BTC", decimal.Zero))
	assert.False(t, l.hasFree("BTC", decimal.NewFromInt(1)))
}

func TestLedgerArithmeticDoesNotDrift(t *testing.T) {
	l := newLedger(map[string]BalanceAmounts{"USDT": {Free: 10000}})

	cost := decimal.NewFromFloat(500.25)
	for i := 0; i < 10; i++ {
		l.debitFree("USDT", cost)
	}
	assert.Equal(t, 4997.5, l.get("USDT").Free)

	for i := 0; i < 10; i++ {
		l.creditFree("USDT", cost)
	}
	assert.Equal(t, 10000.0, l.get("USDT").Free)
}

func TestLedgerSnapshotIsSorted(t *testing.T) {
	l := newLedger(map[string]BalanceAmounts{
		"USDT": {Free: 1},
		"BTC":  {Free: 2},
		"ETH":  {Free: 3, Used: 1},
	})
	snap := l.snapshot()
	assert.Equal(t, []string{"BTC", "ETH", "USDT"}, []string{snap[0].Asset, snap[1].Asset, snap[2].Asset})
	assert.Equal(t, 4.0, snap[1].Total)
}
