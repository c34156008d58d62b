package replay

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ledger tracks per-asset free/used amounts. The API surface is float64
// to match the wire shapes, but every mutation and comparison runs on
// decimals so that repeated debits and credits cannot drift
// (10000 - 500.25 stays exactly 9499.75).
type ledger struct {
	balances map[string]*ledgerRow
}

type ledgerRow struct {
	free decimal.Decimal
	used decimal.Decimal
}

func newLedger(seed map[string]BalanceAmounts) *ledger {
	l := &ledger{balances: make(map[string]*ledgerRow, len(seed))}
	for asset, amounts := range seed {
		l.balances[asset] = &ledgerRow{
			free: decimal.NewFromFloat(amounts.Free),
			used: decimal.NewFromFloat(amounts.Used),
		}
	}
	return l
}

// row returns the asset's entry, creating a zeroed one on first touch.
// Lookups never fail; an unseen asset simply has nothing in it.
func (l *ledger) row(asset string) *ledgerRow {
	if r, ok := l.balances[asset]; ok {
		return r
	}
	r := &ledgerRow{free: decimal.Zero, used: decimal.Zero}
	l.balances[asset] = r
	return r
}

func (l *ledger) get(asset string) AssetBalance {
	r, ok := l.balances[asset]
	if !ok {
		return AssetBalance{Asset: asset}
	}
	free, _ := r.free.Float64()
	used, _ := r.used.Float64()
	total, _ := r.free.Add(r.used).Float64()
	return AssetBalance{Asset: asset, Free: free, Used: used, Total: total}
}

// hasFree reports whether the asset's free amount covers the requested
// quantity. Callers check this before any mutation so a rejected fill
// leaves both sides of the pair untouched.
func (l *ledger) hasFree(asset string, amount decimal.Decimal) bool {
	r, ok := l.balances[asset]
	if !ok {
		return !amount.IsPositive()
	}
	return r.free.GreaterThanOrEqual(amount)
}

func (l *ledger) debitFree(asset string, amount decimal.Decimal) {
	r := l.row(asset)
	r.free = r.free.Sub(amount)
}

func (l *ledger) creditFree(asset string, amount decimal.Decimal) {
	r := l.row(asset)
	r.free = r.free.Add(amount)
}

// snapshot lists all rows sorted by asset code for deterministic output.
func (l *ledger) snapshot() []AssetBalance {
	assets := make([]string, 0, len(l.balances))
	for asset := range l.balances {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	out := make([]AssetBalance, 0, len(assets))
	for _, asset := range assets {
		out = append(out, l.get(asset))
	}
	return out
}
