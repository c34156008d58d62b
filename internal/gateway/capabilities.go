package gateway

import "fmt"

// Capability tables per mode, CCXT's "has" convention. Callers check
// availability up front and degrade instead of hitting runtime errors.
// The replay and paper tables track what the simulated service actually
// implements; prod reflects the Binance spot adapter.

var replayCapabilities = map[string]bool{
	"loadMarkets":       true,
	"fetchMarkets":      true,
	"fetchTicker":       true,
	"fetchTickers":      true,
	"fetchBalance":      true,
	"deposit":           true,
	"withdraw":          true,
	"createOrder":       true,
	"createMarketOrder": true,
	"createLimitOrder":  true,
	"cancelOrder":       true,
	"fetchOrder":        true,
	"fetchOrders":       true,
	"fetchOpenOrders":   true,
	"canExecuteOrder":   true,
	"advanceReplay":     true,
	"fetchOHLCV":        false,
	"fetchOrderBook":    false,
	"fetchTrades":       false,
	"fetchPositions":    false,
}

var paperCapabilities = map[string]bool{
	"loadMarkets":       true,
	"fetchMarkets":      true,
	"fetchTicker":       true,
	"fetchTickers":      true,
	"fetchBalance":      true,
	"deposit":           true,
	"withdraw":          true,
	"createOrder":       true,
	"createMarketOrder": true,
	"createLimitOrder":  true,
	"cancelOrder":       true,
	"fetchOrder":        true,
	"fetchOrders":       true,
	"fetchOpenOrders":   true,
	"canExecuteOrder":   true,
	"advanceReplay":     true,
	"fetchOHLCV":        false,
	"fetchOrderBook":    false,
	"fetchTrades":       false,
	"fetchPositions":    false,
}

var prodCapabilities = map[string]bool{
	"loadMarkets":       true,
	"fetchMarkets":      true,
	"fetchTicker":       true,
	"fetchTickers":      true,
	"fetchBalance":      true,
	"deposit":           false,
	"withdraw":          false,
	"createOrder":       true,
	"createMarketOrder": true,
	"createLimitOrder":  true,
	"cancelOrder":       true,
	"fetchOrder":        true,
	"fetchOrders":       true,
	"fetchOpenOrders":   true,
	"canExecuteOrder":   false,
	"advanceReplay":     false,
	"fetchOHLCV":        false,
	"fetchOrderBook":    false,
	"fetchTrades":       false,
	"fetchPositions":    false,
}

// capabilitiesFor copies the mode's table so callers cannot mutate the
// shared one.
func capabilitiesFor(mode string) map[string]bool {
	var src map[string]bool
	switch mode {
	case ModeReplay:
		src = replayCapabilities
	case ModePaper:
		src = paperCapabilities
	case ModeProd:
		src = prodCapabilities
	default:
		src = map[string]bool{}
	}
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func requireSupport(feature, mode string) error {
	if capabilitiesFor(mode)[feature] {
		return nil
	}
	return fmt.Errorf("%w: %s in %s mode", ErrNotSupported, feature, mode)
}
