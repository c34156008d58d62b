package config

import "strings"

const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppHTTPAddr    = ":8000"
	defaultGatewayMode    = "replay"
	defaultGatewayBaseURL = "http://localhost:8000"
	defaultGatewayTimeout = 10.0
	defaultBinanceBaseURL = "https://api.binance.com"
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Gateway.applyDefaults()
	c.Binance.applyDefaults()
	c.Replay.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if strings.TrimSpace(a.Env) == "" {
		a.Env = defaultAppEnv
	}
	if strings.TrimSpace(a.LogLevel) == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (g *GatewayConfig) applyDefaults() {
	g.Mode = strings.ToLower(strings.TrimSpace(g.Mode))
	if g.Mode == "" {
		g.Mode = defaultGatewayMode
	}
	if strings.TrimSpace(g.BaseURL) == "" {
		g.BaseURL = defaultGatewayBaseURL
	}
	g.BaseURL = strings.TrimRight(g.BaseURL, "/")
	if g.TimeoutSeconds <= 0 {
		g.TimeoutSeconds = defaultGatewayTimeout
	}
}

func (b *BinanceConfig) applyDefaults() {
	if strings.TrimSpace(b.BaseURL) == "" {
		b.BaseURL = defaultBinanceBaseURL
	}
}

func (r *ReplayConfig) applyDefaults() {
	if r.InitialBalances == nil {
		// Pre-fund the quote asset so a fresh engine can place buys.
		r.InitialBalances = map[string]BalanceSeed{
			"USDT": {Free: 10_000},
		}
	}
}
