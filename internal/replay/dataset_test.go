package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset(t *testing.T) {
	raw := []byte(`{
		"tickers": [
			{"symbol": "btc/usdt", "timestamp": 1000, "last": 50000},
			{"symbol": "ETH/USDT", "timestamp": 1500, "bid": 2990, "ask": 3010}
		],
		"initial_balances": {
			"USDT": {"free": 10000}
		}
	}`)
	ds, err := LoadDataset(raw)
	require.NoError(t, err)
	require.Len(t, ds.Tickers, 2)
	// 符号在加载时统一成大写。
	assert.Equal(t, "BTC/USDT", ds.Tickers[0].Symbol)
	require.NotNil(t, ds.Tickers[0].Last)
	assert.Equal(t, 50000.0, *ds.Tickers[0].Last)
	assert.Nil(t, ds.Tickers[1].Last)
	assert.Equal(t, 10000.0, ds.InitialBalances["USDT"].Free)
}

func TestLoadDatasetRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{"tickers": [`},
		{"missing tickers", `{"initial_balances": {}}`},
		{"ticker without symbol", `{"tickers": [{"timestamp": 1000}]}`},
		{"ticker without timestamp", `{"tickers": [{"symbol": "BTC/USDT"}]}`},
		{"negative balance", `{"tickers": [], "initial_balances": {"USDT": {"free": -1}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDataset([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tickers": [{"symbol": "BTC/USDT", "timestamp": 1}]}`), 0o644))

	ds, err := LoadDatasetFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Tickers, 1)

	_, err = LoadDatasetFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
