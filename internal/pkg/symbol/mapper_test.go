package symbol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapperNormalize(t *testing.T) {
	m := NewMapper(map[string]string{"XBT/USD": "BTC/USD"})

	assert.Equal(t, "BTC/USD", m.Normalize("xbt/usd"))
	assert.Equal(t, "BTC/USDT", m.Normalize("BTCUSDT"))
	// 解析不了的符号原样大写返回，交由严格模式报错。
	assert.Equal(t, "NONSENSE", m.Normalize(" nonsense "))
	assert.Equal(t, "", m.Normalize(""))
}

func TestMapperToBinance(t *testing.T) {
	m := NewMapper(nil)
	assert.Equal(t, "BTCUSDT", m.ToBinance("BTC/USDT"))
	assert.Equal(t, "ETHUSDT", m.ToBinance("eth_usdt"))
}

func TestNewMapperFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"XBT/USDT": "BTC/USDT"}`), 0o644))

	m, err := NewMapperFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", m.Normalize("XBT/USDT"))

	m, err = NewMapperFromFile("")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", m.Normalize("BTC/USDT"))

	_, err = NewMapperFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
