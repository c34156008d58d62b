package config

// Config is the top-level configuration carrier for mockx.
type Config struct {
	App     AppConfig     `toml:"app"`
	Gateway GatewayConfig `toml:"gateway"`
	Binance BinanceConfig `toml:"binance"`
	Replay  ReplayConfig  `toml:"replay"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
}

// GatewayConfig selects the backend the CCXT-shaped facade talks to.
// Mode "replay" runs the in-memory deterministic engine, "paper" points
// at a remote paper-trading REST service, "prod" delegates to Binance.
type GatewayConfig struct {
	Mode           string  `toml:"mode"`
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	SymbolMapPath  string  `toml:"symbol_map_path"`
}

type BinanceConfig struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	BaseURL   string `toml:"base_url"`
}

// ReplayConfig seeds the deterministic replay engine.
type ReplayConfig struct {
	DataPath        string                 `toml:"data_path"`
	Strict          bool                   `toml:"strict"`
	AutoAdvance     bool                   `toml:"auto_advance"`
	ReverseOnCancel bool                   `toml:"reverse_on_cancel"`
	InitialBalances map[string]BalanceSeed `toml:"initial_balances"`
}

type BalanceSeed struct {
	Free float64 `toml:"free"`
	Used float64 `toml:"used"`
}
