package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		base  string
		quote string
	}{
		{"BTC/USDT", "BTC", "USDT"},
		{"btc/usdt", "BTC", "USDT"},
		{" eth/usdt ", "ETH", "USDT"},
		{"BTC_USDT", "BTC", "USDT"},
		{"BTC-USDT", "BTC", "USDT"},
		{"BTC/USDT:USDT", "BTC", "USDT"},
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"SOLUSD", "SOL", "USD"},
		{"", "", ""},
		{"USDT", "", ""},
		{"NONSENSE", "", ""},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		assert.Equal(t, tc.base, got.Base, "base of %q", tc.in)
		assert.Equal(t, tc.quote, got.Quote, "quote of %q", tc.in)
	}
}

func TestParseSuffixOrdering(t *testing.T) {
	// BTCUSDT 必须在 USDT 处切，而不是 USD。
	got := Parse("BTCUSDT")
	assert.Equal(t, "BTC", got.Base)
	assert.Equal(t, "USDT", got.Quote)
}

func TestNormalizeAndIsValid(t *testing.T) {
	assert.Equal(t, "BTC/USDT", Normalize("btcusdt"))
	assert.Equal(t, "", Normalize("NONSENSE"))
	assert.True(t, IsValid("BTC/USDT"))
	assert.False(t, IsValid("USDT"))
}

func TestInternal(t *testing.T) {
	assert.Equal(t, "BTC/USDT", Symbol{Base: "BTC", Quote: "USDT"}.Internal())
	assert.Equal(t, "", Symbol{Base: "BTC"}.Internal())
}
