package symbol

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Mapper normalizes trading symbols to the canonical internal form,
// applying optional user-supplied aliases first (e.g. "XBT/USD" ->
// "BTC/USD"). A Mapper is constructed explicitly and handed to whichever
// component needs it; there is no package-level default instance.
type Mapper struct {
	aliases map[string]string
}

func NewMapper(aliases map[string]string) *Mapper {
	cleaned := make(map[string]string, len(aliases))
	for k, v := range aliases {
		k = strings.ToUpper(strings.TrimSpace(k))
		v = strings.ToUpper(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		cleaned[k] = v
	}
	return &Mapper{aliases: cleaned}
}

// NewMapperFromFile loads aliases from a JSON object file
// ({"BTCUSDT": "BTC/USDT", ...}). An empty path yields a Mapper with no
// aliases.
func NewMapperFromFile(path string) (*Mapper, error) {
	if strings.TrimSpace(path) == "" {
		return NewMapper(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbol mapping file failed: %w", err)
	}
	var aliases map[string]string
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("symbol mapping file must be a JSON object of string mappings: %w", err)
	}
	return NewMapper(aliases), nil
}

// Normalize resolves aliases and returns the canonical "BASE/QUOTE" form.
// Unparseable symbols come back upper-cased and trimmed, unchanged
// otherwise, so strict-mode lookups can still fail on them loudly.
func (m *Mapper) Normalize(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if up == "" {
		return ""
	}
	if mapped, ok := m.aliases[up]; ok {
		up = mapped
	}
	if norm := Normalize(up); norm != "" {
		return norm
	}
	return up
}

// ToBinance converts the canonical form to Binance's separator-free
// format ("BTC/USDT" -> "BTCUSDT").
func (m *Mapper) ToBinance(s string) string {
	return strings.ReplaceAll(m.Normalize(s), "/", "")
}
