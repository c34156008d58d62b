package app

import (
	"fmt"
	"time"

	mxcfg "mockx/internal/config"
	"mockx/internal/gateway"
	"mockx/internal/gateway/binance"
	"mockx/internal/gateway/rest"
	"mockx/internal/pkg/symbol"
	"mockx/internal/replay"
	paperhttp "mockx/internal/transport/http/paper"
)

func buildApp(cfg *mxcfg.Config) (*App, error) {
	mapper, err := buildMapper(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg}
	var adapter gateway.Adapter

	switch cfg.Gateway.Mode {
	case gateway.ModeReplay:
		engine, err := buildEngine(cfg)
		if err != nil {
			return nil, err
		}
		server, err := paperhttp.NewServer(paperhttp.Config{
			Addr:   cfg.App.HTTPAddr,
			APIKey: cfg.Gateway.APIKey,
			Engine: engine,
		})
		if err != nil {
			return nil, fmt.Errorf("构建 paper HTTP 服务失败: %w", err)
		}
		app.engine = engine
		app.server = server
		adapter = gateway.NewReplayAdapter(gateway.NewEngineBackend(engine))
	case gateway.ModePaper:
		client, err := rest.New(rest.Config{
			BaseURL: cfg.Gateway.BaseURL,
			APIKey:  cfg.Gateway.APIKey,
			Timeout: time.Duration(cfg.Gateway.TimeoutSeconds * float64(time.Second)),
		})
		if err != nil {
			return nil, fmt.Errorf("构建 paper REST 客户端失败: %w", err)
		}
		adapter = gateway.NewPaperAdapter(client)
	case gateway.ModeProd:
		adapter, err = binance.New(binance.Config{
			APIKey:    cfg.Binance.APIKey,
			APISecret: cfg.Binance.APISecret,
			BaseURL:   cfg.Binance.BaseURL,
		}, mapper)
		if err != nil {
			return nil, fmt.Errorf("构建 Binance adapter 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("未知 gateway mode: %q", cfg.Gateway.Mode)
	}

	app.gw = gateway.New(adapter, mapper)
	return app, nil
}

func buildMapper(cfg *mxcfg.Config) (*symbol.Mapper, error) {
	if path := cfg.Gateway.SymbolMapPath; path != "" {
		mapper, err := symbol.NewMapperFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("加载符号映射失败: %w", err)
		}
		return mapper, nil
	}
	return symbol.NewMapper(nil), nil
}

func buildEngine(cfg *mxcfg.Config) (*replay.Engine, error) {
	var ds replay.Dataset
	if cfg.Replay.DataPath != "" {
		loaded, err := replay.LoadDatasetFile(cfg.Replay.DataPath)
		if err != nil {
			return nil, fmt.Errorf("加载回放数据失败: %w", err)
		}
		ds = loaded
	}
	// 配置中的初始余额覆盖数据集内的同名资产。
	if len(cfg.Replay.InitialBalances) > 0 {
		if ds.InitialBalances == nil {
			ds.InitialBalances = make(map[string]replay.BalanceAmounts, len(cfg.Replay.InitialBalances))
		}
		for asset, seed := range cfg.Replay.InitialBalances {
			ds.InitialBalances[asset] = replay.BalanceAmounts{Free: seed.Free, Used: seed.Used}
		}
	}
	return replay.NewEngine(ds, replay.Options{
		Strict:          cfg.Replay.Strict,
		AutoAdvance:     cfg.Replay.AutoAdvance,
		ReverseOnCancel: cfg.Replay.ReverseOnCancel,
	}), nil
}
