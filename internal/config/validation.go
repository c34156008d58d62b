package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Gateway.validate(); err != nil {
		return err
	}
	if err := c.Replay.validate(c.Gateway.Mode); err != nil {
		return err
	}
	if c.Gateway.Mode == "prod" {
		if strings.TrimSpace(c.Binance.APIKey) == "" || strings.TrimSpace(c.Binance.APISecret) == "" {
			return fmt.Errorf("binance.api_key and binance.api_secret are required in prod mode")
		}
	}
	return nil
}

func (g *GatewayConfig) validate() error {
	switch g.Mode {
	case "replay", "paper", "prod":
	default:
		return fmt.Errorf("gateway.mode must be one of replay/paper/prod, got %q", g.Mode)
	}
	if g.Mode == "paper" && strings.TrimSpace(g.BaseURL) == "" {
		return fmt.Errorf("gateway.base_url is required in paper mode")
	}
	return nil
}

func (r *ReplayConfig) validate(mode string) error {
	if mode != "replay" {
		return nil
	}
	for asset, seed := range r.InitialBalances {
		if strings.TrimSpace(asset) == "" {
			return fmt.Errorf("replay.initial_balances contains an empty asset code")
		}
		if seed.Free < 0 || seed.Used < 0 {
			return fmt.Errorf("replay.initial_balances.%s must not be negative", asset)
		}
	}
	return nil
}
